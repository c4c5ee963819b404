package example

// Kind demonstrates a union: an interface with a closed set of
// implementing variant types in the same package.
//
//go:generate enumid --display-variant
//enumid:derive text, json
type Kind interface {
	isKind()
}

// A wraps a single int value.
type A int

// B carries named fields.
type B struct {
	Value string
}

// C carries no data.
type C struct{}

func (A) isKind() {}
func (B) isKind() {}
func (C) isKind() {}
