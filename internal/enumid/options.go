package enumid

import (
	"fmt"
	"go/token"
	"strings"
)

// Visibility selects the exportedness of the generated ID type.
type Visibility int

const (
	// VisInherit copies the union's exportedness.
	VisInherit Visibility = iota
	// VisPublic exports the ID type regardless of the union.
	VisPublic
	// VisNotPublic unexports the ID type regardless of the union.
	VisNotPublic
)

// DisplayMode selects the generated String implementation.
type DisplayMode int

const (
	// DisplayNone generates no String method.
	DisplayNone DisplayMode = iota
	// DisplayQualified renders "Union::Variant" on the ID type.
	DisplayQualified
	// DisplayVariant renders "Variant" on the ID type.
	DisplayVariant
	// DisplayVariantSnake renders the snake-cased variant name on the ID type.
	DisplayVariantSnake
	// DisplayFromValue renders each variant by forwarding its wrapped value.
	// It is generated on the source variants, not on the ID type.
	DisplayFromValue
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayQualified:
		return "display"
	case DisplayVariant:
		return "display_variant"
	case DisplayVariantSnake:
		return "display_variant_snake"
	case DisplayFromValue:
		return "display_from_value"
	default:
		return "none"
	}
}

// RawOptions carries option values exactly as supplied on the invocation,
// before conflict checks. The boolean *Set fields distinguish "supplied
// empty" from "not supplied".
type RawOptions struct {
	Derive    string
	DeriveSet bool
	NoDerive  bool

	Getter  string
	TagName string

	Public    bool
	NotPublic bool

	Display             bool
	DisplayVariant      bool
	DisplayVariantSnake bool
	DisplayFromValue    bool

	Iterator bool
}

// Options is the validated, resolved configuration of one invocation.
type Options struct {
	// Derive is the explicit derive list. nil means inherit the union's
	// attached derives; an empty non-nil slice means derive nothing.
	Derive []string

	// Getter is the ID getter method name. Empty selects the default,
	// which follows the ID type's exportedness (Id or id).
	Getter string

	// TagName is the ID type name. Empty selects the default, the union
	// name with an Id suffix.
	TagName string

	Visibility Visibility
	Display    DisplayMode
	Iterator   bool
}

// Resolve validates r and produces the effective Options.
//
// Mutually exclusive pairs (derive/no-derive, public/not-public, and any
// two display modes) fail with [ErrConflictingOptions]; getter and name
// values must be legal Go identifiers.
func (r RawOptions) Resolve() (Options, error) {
	var o Options

	if r.DeriveSet && r.NoDerive {
		return o, fmt.Errorf("%w: derive and no-derive", ErrConflictingOptions)
	}
	switch {
	case r.NoDerive:
		o.Derive = []string{}
	case r.DeriveSet:
		o.Derive = splitList(r.Derive)
	}

	if r.Public && r.NotPublic {
		return o, fmt.Errorf("%w: public and not-public", ErrConflictingOptions)
	}
	switch {
	case r.Public:
		o.Visibility = VisPublic
	case r.NotPublic:
		o.Visibility = VisNotPublic
	}

	modes := []struct {
		set  bool
		name string
		mode DisplayMode
	}{
		{r.Display, "display", DisplayQualified},
		{r.DisplayVariant, "display-variant", DisplayVariant},
		{r.DisplayVariantSnake, "display-variant-snake", DisplayVariantSnake},
		{r.DisplayFromValue, "display-from-value", DisplayFromValue},
	}
	chosen := ""
	for _, m := range modes {
		if !m.set {
			continue
		}
		if chosen != "" {
			return o, fmt.Errorf("%w: %s and %s", ErrConflictingOptions, chosen, m.name)
		}
		chosen = m.name
		o.Display = m.mode
	}

	if r.Getter != "" && !token.IsIdentifier(r.Getter) {
		return o, fmt.Errorf("%w: getter %q", ErrInvalidIdentifier, r.Getter)
	}
	o.Getter = r.Getter

	if r.TagName != "" && !token.IsIdentifier(r.TagName) {
		return o, fmt.Errorf("%w: name %q", ErrInvalidIdentifier, r.TagName)
	}
	o.TagName = r.TagName

	o.Iterator = r.Iterator
	return o, nil
}

// splitList splits a comma-separated option value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	ret := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ret = append(ret, p)
		}
	}
	return ret
}
