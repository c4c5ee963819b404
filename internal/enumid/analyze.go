package enumid

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Package is the slice of a loaded package the analyzer needs. The command
// fills it from golang.org/x/tools/go/packages; tests fill it from
// go/parser and go/types directly.
type Package struct {
	Fset   *token.FileSet
	Info   *types.Info
	Syntax []*ast.File
}

// Shape describes how much data a variant carries.
type Shape int

const (
	// ShapeUnit is an empty struct variant.
	ShapeUnit Shape = iota
	// ShapeStruct is a struct variant with one or more fields.
	ShapeStruct
	// ShapeWrapper is a defined type over a non-struct type; it wraps
	// exactly one value.
	ShapeWrapper
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapeStruct:
		return "struct"
	default:
		return "wrapper"
	}
}

// Variant is one implementing type of a union, in declaration order.
type Variant struct {
	Name  string
	Shape Shape

	// Ptr is set when only the pointer type implements the union.
	Ptr bool

	// ElemName and ElemPath describe the declared element type of a
	// wrapper variant when it is a named type ("float64", or "Duration"
	// with ElemPath "time"). Both are empty for unnamed element types
	// such as slices and maps.
	ElemName string
	ElemPath string
}

// Union is the analyzed source enum: an interface plus the named types in
// the same package that implement it.
type Union struct {
	Name     string
	Exported bool

	// Derives are the derive names attached to the union declaration via
	// //enumid:derive directives, in order. They are read verbatim here
	// and validated at emission.
	Derives []string

	Variants []Variant
}

// Analyze locates the union named typeName (or, when typeName is empty,
// the first type declared at or after line in inputFile) and resolves its
// variants. The annotated type must be an interface with at least one
// implementing named type in the same package.
func Analyze(pkg *Package, typeName, inputFile string, line int) (*Union, error) {
	tn, err := findTypeDecl(pkg, typeName, inputFile, line)
	if err != nil {
		return nil, err
	}

	iface, ok := tn.Type().Underlying().(*types.Interface)
	if !ok {
		return nil, fmt.Errorf("%w: type %q is not an interface", ErrNotAnEnum, tn.Name())
	}

	u := &Union{
		Name:     tn.Name(),
		Exported: tn.Exported(),
	}

	specs := typeSpecIndex(pkg.Syntax)
	if ts, ok := specs[tn.Pos()]; ok {
		u.Derives = directiveDerives(ts)
	}

	vs := findVariants(pkg, tn, iface, specs)
	if len(vs) == 0 {
		return nil, fmt.Errorf("%w: no types implementing %q found", ErrNotAnEnum, tn.Name())
	}
	u.Variants = vs

	return u, nil
}

// findTypeDecl finds the relevant *types.TypeName in pkg.
// If name is passed, a type with that name is searched for. Otherwise, the
// first type declared at or after line in inputFile is returned.
func findTypeDecl(pkg *Package, name, inputFile string, line int) (*types.TypeName, error) {
	if name != "" {
		for _, object := range pkg.Info.Defs {
			if tn, ok := object.(*types.TypeName); ok && tn.Name() == name {
				return tn, nil
			}
		}
		return nil, fmt.Errorf("%w: type %q not found", ErrNotAnEnum, name)
	}

	var ret *types.TypeName
	var closestObject types.Object
	closest := math.MaxInt32
	for _, object := range pkg.Info.Defs {
		if object == nil {
			continue
		}

		p := pkg.Fset.Position(object.Pos())
		if !sameFile(p.Filename, inputFile) {
			continue
		}

		if p.Line < line || closest < p.Line {
			continue
		}

		ret = nil // something closer than the current closest
		closestObject = object

		tn, ok := object.(*types.TypeName)
		if !ok {
			continue
		}

		ret = tn
		closest = p.Line
	}

	if ret == nil {
		if closestObject != nil {
			return nil, fmt.Errorf("%w: closest declaration is not a named type: %v", ErrNotAnEnum, closestObject)
		}
		return nil, fmt.Errorf("%w: no type declaration found", ErrNotAnEnum)
	}

	return ret, nil
}

// findVariants collects the named non-interface types of the package whose
// value or pointer type implements iface, ordered by source position.
func findVariants(pkg *Package, union *types.TypeName, iface *types.Interface, specs map[token.Pos]*ast.TypeSpec) []Variant {
	type variantPos struct {
		v   Variant
		pos token.Position
	}
	var found []variantPos

	for _, object := range pkg.Info.Defs {
		tn, ok := object.(*types.TypeName)
		if !ok || tn == union || tn.IsAlias() {
			continue
		}

		t := tn.Type()
		if _, ok := t.Underlying().(*types.Interface); ok {
			continue
		}

		var ptr bool
		switch {
		case types.Implements(t, iface):
		case types.Implements(types.NewPointer(t), iface):
			ptr = true
		default:
			continue
		}

		v := Variant{Name: tn.Name(), Ptr: ptr}
		classifyShape(pkg, &v, specs[tn.Pos()])
		found = append(found, variantPos{v: v, pos: pkg.Fset.Position(tn.Pos())})
	}

	// Declaration order defines the generated constant and listing order,
	// so it must be stable across runs.
	sort.Slice(found, func(i, j int) bool {
		ip, jp := found[i].pos, found[j].pos
		return ip.Filename < jp.Filename ||
			ip.Filename == jp.Filename && ip.Offset < jp.Offset
	})

	ret := make([]Variant, len(found))
	for i, f := range found {
		ret[i] = f.v
	}
	return ret
}

// classifyShape fills v.Shape (and the element type of a wrapper) from the
// variant's declared type expression.
func classifyShape(pkg *Package, v *Variant, spec *ast.TypeSpec) {
	if spec == nil {
		v.Shape = ShapeWrapper
		return
	}

	switch t := spec.Type.(type) {
	case *ast.StructType:
		if t.Fields.NumFields() == 0 {
			v.Shape = ShapeUnit
		} else {
			v.Shape = ShapeStruct
		}
	case *ast.Ident:
		v.Shape = ShapeWrapper
		v.ElemName = t.Name
	case *ast.SelectorExpr:
		v.Shape = ShapeWrapper
		if x, ok := t.X.(*ast.Ident); ok {
			if pn, ok := pkg.Info.Uses[x].(*types.PkgName); ok {
				v.ElemName = t.Sel.Name
				v.ElemPath = pn.Imported().Path()
			}
		}
	default:
		v.Shape = ShapeWrapper
	}
}

// typeSpecIndex maps each type name's position to its *ast.TypeSpec, with
// the enclosing GenDecl's doc comment pulled down onto specs that have
// none of their own.
func typeSpecIndex(syntax []*ast.File) map[token.Pos]*ast.TypeSpec {
	ret := make(map[token.Pos]*ast.TypeSpec)
	for _, file := range syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if ts.Doc == nil {
					ts.Doc = gd.Doc
				}
				ret[ts.Name.Pos()] = ts
			}
		}
	}
	return ret
}

// directiveDerives extracts derive names from //enumid:derive directives in
// the declaration's doc comment. CommentGroup.Text strips directive lines,
// so the raw comment list is scanned instead.
func directiveDerives(spec *ast.TypeSpec) []string {
	if spec.Doc == nil {
		return nil
	}

	var ret []string
	for _, c := range spec.Doc.List {
		text := strings.TrimPrefix(c.Text, "//")
		rest, ok := strings.CutPrefix(text, "enumid:derive")
		if !ok {
			continue
		}
		ret = append(ret, splitList(rest)...)
	}
	return ret
}

// sameFile determines whether a and b point to the same file. It falls
// back to a lexical comparison when either path cannot be stat'd.
func sameFile(a, b string) bool {
	as, errA := os.Stat(a)
	bs, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return os.SameFile(as, bs)
}
