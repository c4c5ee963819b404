package enumid

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnion() *Union {
	return &Union{
		Name:     "Kind",
		Exported: true,
		Variants: []Variant{
			{Name: "A", Shape: ShapeWrapper, ElemName: "int"},
			{Name: "B", Shape: ShapeStruct},
			{Name: "C", Shape: ShapeUnit},
		},
	}
}

func unitUnion() *Union {
	return &Union{
		Name:     "Kind",
		Exported: true,
		Variants: []Variant{
			{Name: "A", Shape: ShapeUnit},
			{Name: "B", Shape: ShapeUnit},
			{Name: "C", Shape: ShapeUnit},
		},
	}
}

func render(t *testing.T, u *Union, opts Options) string {
	t.Helper()

	f, err := Generate("example", u, opts, "enumid")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	return buf.String()
}

func TestGenerateDefaults(t *testing.T) {
	src := render(t, testUnion(), Options{})

	assert.Contains(t, src, "type KindId int")
	assert.Contains(t, src, "KindIdA KindId = iota")
	assert.Contains(t, src, "KindIdB\n")
	assert.Contains(t, src, "KindIdC\n")

	// one getter per variant, no field ever read
	assert.Contains(t, src, "func (A) Id() KindId")
	assert.Contains(t, src, "func (B) Id() KindId")
	assert.Contains(t, src, "func (C) Id() KindId")

	assert.Contains(t, src, "func KindIdOf(v Kind) KindId")
	assert.Contains(t, src, "func KindIdValues() []KindId")
	assert.Contains(t, src, "func (k KindId) Defined() bool")

	assert.NotContains(t, src, "String()", "no display mode was selected")
	assert.NotContains(t, src, "MarshalText", "no derives were attached or supplied")
	assert.NotContains(t, src, "func KindValues", "iterator was not selected")
}

func TestGenerateConstOrder(t *testing.T) {
	src := render(t, testUnion(), Options{})

	a := strings.Index(src, "KindIdA")
	b := strings.Index(src, "KindIdB")
	c := strings.Index(src, "KindIdC")
	assert.True(t, a >= 0 && a < b && b < c, "constants must keep declaration order")
}

func TestGenerateTagNameDefault(t *testing.T) {
	src := render(t, testUnion(), Options{})
	assert.Contains(t, src, "type KindId int")

	src = render(t, testUnion(), Options{TagName: "KindTag"})
	assert.Contains(t, src, "type KindTag int")
	assert.Contains(t, src, "KindTagA")
	assert.NotContains(t, src, "KindId")
}

func TestGenerateVisibility(t *testing.T) {
	src := render(t, testUnion(), Options{Visibility: VisNotPublic})
	assert.Contains(t, src, "type kindId int")
	assert.Contains(t, src, "kindIdA")
	assert.Contains(t, src, "func (A) id() kindId", "getter default follows the tag's exportedness")
	assert.Contains(t, src, "func kindIdOf(v Kind) kindId")

	unexported := &Union{
		Name:     "kind",
		Exported: false,
		Variants: []Variant{{Name: "a", Shape: ShapeUnit}},
	}
	src = render(t, unexported, Options{Visibility: VisPublic})
	assert.Contains(t, src, "type KindId int")
}

func TestGenerateGetterName(t *testing.T) {
	src := render(t, testUnion(), Options{Getter: "Tag"})
	assert.Contains(t, src, "func (A) Tag() KindId")
	assert.Contains(t, src, "func (B) Tag() KindId")
	assert.NotContains(t, src, ") Id()")
}

func TestGenerateDisplayQualified(t *testing.T) {
	src := render(t, testUnion(), Options{Display: DisplayQualified})
	assert.Contains(t, src, "func (k KindId) String() string")
	assert.Contains(t, src, `return "Kind::A"`)
	assert.Contains(t, src, `return "Kind::C"`)
	assert.Contains(t, src, `fmt.Sprintf("KindId(%d)", int(k))`)
}

func TestGenerateDisplayVariant(t *testing.T) {
	src := render(t, testUnion(), Options{Display: DisplayVariant})
	assert.Contains(t, src, `return "A"`)
	assert.NotContains(t, src, "Kind::")
}

func TestGenerateDisplayVariantSnake(t *testing.T) {
	u := &Union{
		Name:     "Kind",
		Exported: true,
		Variants: []Variant{
			{Name: "FieldA", Shape: ShapeUnit},
			{Name: "ThisIsFieldB", Shape: ShapeUnit},
			{Name: "C", Shape: ShapeUnit},
			{Name: "ABC", Shape: ShapeUnit},
		},
	}

	src := render(t, u, Options{Display: DisplayVariantSnake})
	assert.Contains(t, src, `return "field_a"`)
	assert.Contains(t, src, `return "this_is_field_b"`)
	assert.Contains(t, src, `return "c"`)
	assert.Contains(t, src, `return "abc"`)
}

func TestGenerateDisplayFromValue(t *testing.T) {
	u := &Union{
		Name:     "Kind",
		Exported: true,
		Variants: []Variant{
			{Name: "A", Shape: ShapeWrapper, ElemName: "int"},
			{Name: "B", Shape: ShapeWrapper, ElemName: "string"},
			{Name: "C", Shape: ShapeWrapper, ElemName: "float64"},
			{Name: "D", Shape: ShapeWrapper, ElemName: "Duration", ElemPath: "time"},
		},
	}

	src := render(t, u, Options{Display: DisplayFromValue})
	assert.Contains(t, src, "func (v A) String() string")
	assert.Contains(t, src, "fmt.Sprint(int(v))")
	assert.Contains(t, src, "fmt.Sprint(float64(v))")
	assert.Contains(t, src, "fmt.Sprint(time.Duration(v))")
	assert.Contains(t, src, `"time"`)
}

func TestGenerateDisplayFromValueRejectsShapes(t *testing.T) {
	_, err := Generate("example", testUnion(), Options{Display: DisplayFromValue}, "enumid")
	require.ErrorIs(t, err, ErrUnsupportedShape)
	assert.Contains(t, err.Error(), "B", "error must name the offending variant")
}

func TestGenerateDisplayFromValueRejectsUnnamedElem(t *testing.T) {
	// type A []byte: a wrapper over an unnamed type. Forwarding it
	// unconverted would make the generated String call itself through
	// fmt.Sprint, so generation must refuse.
	u := &Union{
		Name:     "Kind",
		Exported: true,
		Variants: []Variant{{Name: "A", Shape: ShapeWrapper}},
	}

	_, err := Generate("example", u, Options{Display: DisplayFromValue}, "enumid")
	require.ErrorIs(t, err, ErrUnsupportedShape)
	assert.Contains(t, err.Error(), "A", "error must name the offending variant")
}

func TestGenerateIterator(t *testing.T) {
	src := render(t, unitUnion(), Options{Iterator: true})
	assert.Contains(t, src, "func KindValues() []Kind")
	assert.Contains(t, src, "[]Kind{A{}, B{}, C{}}")
}

func TestGenerateIteratorRejectsShapes(t *testing.T) {
	_, err := Generate("example", testUnion(), Options{Iterator: true}, "enumid")
	require.ErrorIs(t, err, ErrUnsupportedShape)
	assert.Contains(t, err.Error(), "A", "error must name the offending variant")
}

func TestGenerateDeriveText(t *testing.T) {
	src := render(t, testUnion(), Options{Derive: []string{"text"}})
	assert.Contains(t, src, "func (k KindId) MarshalText() ([]byte, error)")
	assert.Contains(t, src, "func (k *KindId) UnmarshalText(b []byte) error")
	assert.Contains(t, src, `return []byte("A"), nil`)
	assert.Contains(t, src, "encoding.TextMarshaler")
}

func TestGenerateDeriveJSON(t *testing.T) {
	src := render(t, testUnion(), Options{Derive: []string{"json"}})
	assert.Contains(t, src, "func (k KindId) MarshalJSON() ([]byte, error)")
	assert.Contains(t, src, "json.Unmarshal(b, &s)")
	assert.Contains(t, src, "json.Marshaler")
}

func TestGenerateDeriveYAML(t *testing.T) {
	src := render(t, testUnion(), Options{Derive: []string{"yaml"}})
	assert.Contains(t, src, "func (k KindId) MarshalYAML() (any, error)")
	assert.Contains(t, src, "func (k *KindId) UnmarshalYAML(unmarshal func(any) error) error")
}

func TestGenerateDeriveSQL(t *testing.T) {
	src := render(t, testUnion(), Options{Derive: []string{"sql"}})
	assert.Contains(t, src, "func (k KindId) Value() (driver.Value, error)")
	assert.Contains(t, src, "func (k *KindId) Scan(src any) error")
	assert.Contains(t, src, "sql.Scanner")
}

func TestGenerateDeriveInheritance(t *testing.T) {
	u := testUnion()
	u.Derives = []string{"text"}

	src := render(t, u, Options{})
	assert.Contains(t, src, "MarshalText", "attached derives are inherited by default")

	src = render(t, u, Options{Derive: []string{"json"}})
	assert.Contains(t, src, "MarshalJSON")
	assert.NotContains(t, src, "MarshalText", "an explicit derive list disables inheritance")

	src = render(t, u, Options{Derive: []string{}})
	assert.NotContains(t, src, "MarshalText", "no-derive suppresses inherited derives")
}

func TestGenerateDeriveNormalization(t *testing.T) {
	src := render(t, testUnion(), Options{Derive: []string{"Text", "JSON", "text"}})
	assert.Contains(t, src, "MarshalText")
	assert.Contains(t, src, "MarshalJSON")
	assert.Equal(t, 1, strings.Count(src, "func (k KindId) MarshalText"), "duplicate derives must emit once")
}

func TestGenerateUnknownDerive(t *testing.T) {
	_, err := Generate("example", testUnion(), Options{Derive: []string{"protobuf"}}, "enumid")
	require.ErrorIs(t, err, ErrUnrecognizedDerive)
	assert.Contains(t, err.Error(), "protobuf")

	u := testUnion()
	u.Derives = []string{"gob"}
	_, err = Generate("example", u, Options{}, "enumid")
	require.ErrorIs(t, err, ErrUnrecognizedDerive)
	assert.Contains(t, err.Error(), "gob")
}

func TestGeneratePointerVariant(t *testing.T) {
	u := &Union{
		Name:     "Kind",
		Exported: true,
		Variants: []Variant{
			{Name: "A", Shape: ShapeUnit},
			{Name: "B", Shape: ShapeUnit, Ptr: true},
		},
	}

	src := render(t, u, Options{Iterator: true})
	assert.Contains(t, src, "case *B:")
	assert.Contains(t, src, "[]Kind{A{}, &B{}}")
}

func TestGenerateHeader(t *testing.T) {
	src := render(t, testUnion(), Options{})
	assert.True(t, strings.HasPrefix(src, "// Code generated by enumid; DO NOT EDIT."), "header must carry the generated-code marker")
	assert.Contains(t, src, "// Command: enumid")
}
