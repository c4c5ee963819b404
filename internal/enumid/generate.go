package enumid

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"
	"github.com/stoewer/go-strcase"
)

// deriveEmitters maps each supported derive name to the function emitting
// its method set on the ID type.
var deriveEmitters = map[string]func(f *jen.File, g *generator){
	"text": emitTextDerive,
	"json": emitJSONDerive,
	"yaml": emitYAMLDerive,
	"sql":  emitSQLDerive,
}

// generator carries the resolved names of one emission.
type generator struct {
	union   *Union
	opts    Options
	tag     string
	getter  string
	recv    string
	derives []string
}

// Generate builds the output file for union u under opts. pkgName is the
// package the file is generated into and reproCmd the command line recorded
// in the file header.
//
// Shape constraints and derive names are validated before any emission;
// Generate returns either a complete file or an error, never a partial
// rendering.
func Generate(pkgName string, u *Union, opts Options, reproCmd string) (*jen.File, error) {
	if err := validateShapes(u, opts); err != nil {
		return nil, err
	}

	g := &generator{union: u, opts: opts}
	g.tag = resolveTagName(u, opts)
	g.recv = defaultReceiverName(g.tag)

	g.getter = opts.Getter
	if g.getter == "" {
		if ast.IsExported(g.tag) {
			g.getter = "Id"
		} else {
			g.getter = "id"
		}
	}

	derives, err := resolveDerives(u, opts)
	if err != nil {
		return nil, err
	}
	g.derives = derives

	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by enumid; DO NOT EDIT.")
	f.HeaderComment("Command: " + reproCmd)

	f.Line()
	emitTagDecl(f, g)

	f.Line()
	emitGetters(f, g)

	f.Line()
	emitDispatch(f, g)

	f.Line()
	emitDefinedMethod(f, g)

	switch opts.Display {
	case DisplayQualified, DisplayVariant, DisplayVariantSnake:
		f.Line()
		emitTagStringMethod(f, g)
	case DisplayFromValue:
		f.Line()
		emitValueStringMethods(f, g)
	}

	f.Line()
	emitTagValues(f, g)

	if opts.Iterator {
		f.Line()
		emitUnionValues(f, g)
	}

	for _, d := range g.derives {
		f.Line()
		deriveEmitters[d](f, g)
	}

	f.Line()
	emitAssertions(f, g)

	f.Line()
	return f, nil
}

// validateShapes checks option/shape constraints before synthesis begins.
func validateShapes(u *Union, opts Options) error {
	if opts.Display == DisplayFromValue {
		for _, v := range u.Variants {
			if v.Shape != ShapeWrapper {
				return fmt.Errorf("%w: display-from-value requires single-value variants, but %s is a %s variant",
					ErrUnsupportedShape, v.Name, v.Shape)
			}
			if v.ElemName == "" {
				return fmt.Errorf("%w: display-from-value requires a named element type, but %s wraps an unnamed type",
					ErrUnsupportedShape, v.Name)
			}
		}
	}

	if opts.Iterator {
		for _, v := range u.Variants {
			if v.Shape != ShapeUnit {
				return fmt.Errorf("%w: iterator requires fieldless variants, but %s is a %s variant",
					ErrUnsupportedShape, v.Name, v.Shape)
			}
		}
	}

	return nil
}

// resolveTagName applies the name and visibility options. An explicit name
// is used verbatim unless a visibility override adjusts its case; the
// default name is the union name with an Id suffix, following the union's
// exportedness.
func resolveTagName(u *Union, opts Options) string {
	name := u.Name + "Id"
	explicit := opts.TagName != ""
	if explicit {
		name = opts.TagName
	}

	switch opts.Visibility {
	case VisPublic:
		return exportedName(name)
	case VisNotPublic:
		return unexportedName(name)
	}

	if explicit {
		return name
	}
	if u.Exported {
		return exportedName(name)
	}
	return unexportedName(name)
}

// resolveDerives picks the effective derive list: the explicit override if
// one was supplied, the union's attached derives otherwise. Names are
// folded to lower case and deduplicated; a name without an emitter fails.
func resolveDerives(u *Union, opts Options) ([]string, error) {
	list := u.Derives
	if opts.Derive != nil {
		list = opts.Derive
	}

	seen := make(map[string]bool, len(list))
	ret := make([]string, 0, len(list))
	for _, d := range list {
		name := strings.ToLower(strings.TrimSpace(d))
		if _, ok := deriveEmitters[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnrecognizedDerive, d)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		ret = append(ret, name)
	}
	return ret, nil
}

// displayText renders the String value of one variant under mode.
func displayText(mode DisplayMode, unionName, variantName string) string {
	switch mode {
	case DisplayQualified:
		return unionName + "::" + variantName
	case DisplayVariantSnake:
		return strcase.SnakeCase(variantName)
	default:
		return variantName
	}
}

// emitTagDecl generates the ID type and its constant block, one constant
// per variant in declaration order.
func emitTagDecl(f *jen.File, g *generator) {
	f.Commentf("%s identifies a %s variant without carrying its data.", g.tag, g.union.Name)
	f.Type().Id(g.tag).Int()

	f.Const().DefsFunc(func(grp *jen.Group) {
		for i, v := range g.union.Variants {
			if i == 0 {
				grp.Id(g.tag + v.Name).Id(g.tag).Op("=").Iota()
			} else {
				grp.Id(g.tag + v.Name)
			}
		}
	})
}

// emitGetters generates the ID getter on every variant type. Variant data,
// if any, is never read.
func emitGetters(f *jen.File, g *generator) {
	for _, v := range g.union.Variants {
		f.Commentf("%s returns the %s identifying %s.", g.getter, g.tag, v.Name)
		f.Func().Params(jen.Id(v.Name)).Id(g.getter).Params().Id(g.tag).Block(
			jen.Return(jen.Id(g.tag + v.Name)),
		)
	}
}

// emitDispatch generates the exhaustive type switch mapping an interface
// value to its ID.
func emitDispatch(f *jen.File, g *generator) {
	name := g.tag + "Of"
	vVar := safeIdent("v", g.recv)
	f.Commentf("%s returns the %s of %s's dynamic variant.", name, g.tag, vVar)
	f.Func().Id(name).Params(jen.Id(vVar).Id(g.union.Name)).Id(g.tag).Block(
		jen.Switch(jen.Id(vVar).Assert(jen.Type())).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(variantType(v)).Block(jen.Return(jen.Id(g.tag + v.Name)))
			}
		}),
		jen.Panic(jen.Qual("fmt", "Sprintf").Call(
			jen.Lit("unexpected "+g.union.Name+": %T"), jen.Id(vVar),
		)),
	)
}

// emitDefinedMethod generates the Defined() method for the ID type.
func emitDefinedMethod(f *jen.File, g *generator) {
	f.Commentf("Defined returns true if %s holds a defined value.", g.recv)
	f.Func().Params(jen.Id(g.recv).Id(g.tag)).Id("Defined").Params().Bool().Block(
		jen.Switch(jen.Id(g.recv)).Block(
			jen.CaseFunc(func(grp *jen.Group) {
				for _, v := range g.union.Variants {
					grp.Id(g.tag + v.Name)
				}
			}).Block(jen.Return(jen.True())),
			jen.Default().Block(jen.Return(jen.False())),
		),
	)
}

// emitTagStringMethod generates String() on the ID type for the qualified,
// variant, and snake display modes.
func emitTagStringMethod(f *jen.File, g *generator) {
	f.Commentf("String implements [fmt.Stringer]. If !%s.Defined(), a generated string is returned based on %s's value.", g.recv, g.recv)
	f.Func().Params(jen.Id(g.recv).Id(g.tag)).Id("String").Params().String().Block(
		jen.Switch(jen.Id(g.recv)).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(jen.Id(g.tag + v.Name)).Block(
					jen.Return(jen.Lit(displayText(g.opts.Display, g.union.Name, v.Name))),
				)
			}
		}),
		jen.Return(jen.Qual("fmt", "Sprintf").Call(
			jen.Lit(fmt.Sprintf("%s(%%d)", g.tag)), jen.Int().Parens(jen.Id(g.recv)),
		)),
	)
}

// emitValueStringMethods generates String() on every variant, forwarding
// the wrapped value's own rendering. Only reached when every variant
// wraps a named element type.
func emitValueStringMethods(f *jen.File, g *generator) {
	for _, v := range g.union.Variants {
		vVar := safeIdent("v", g.recv)
		f.Commentf("String implements [fmt.Stringer] by rendering the value wrapped in %s.", v.Name)
		f.Func().Params(jen.Id(vVar).Id(v.Name)).Id("String").Params().String().Block(
			jen.Return(jen.Qual("fmt", "Sprint").Call(wrappedValue(v, vVar))),
		)
	}
}

// wrappedValue converts vVar back to the variant's declared element type
// so the element's own formatting applies. The conversion is load-bearing:
// passing vVar as-is would have fmt.Sprint dispatch to the String method
// whose body this is.
func wrappedValue(v Variant, vVar string) *jen.Statement {
	if v.ElemPath != "" {
		return jen.Qual(v.ElemPath, v.ElemName).Parens(jen.Id(vVar))
	}
	return jen.Id(v.ElemName).Parens(jen.Id(vVar))
}

// emitTagValues generates the exhaustive listing of ID values. It is
// always emitted: ID values are fieldless by construction.
func emitTagValues(f *jen.File, g *generator) {
	f.Commentf("%sValues returns all defined %s values in declaration order.", g.tag, g.tag)
	f.Func().Id(g.tag+"Values").Params().Index().Id(g.tag).Block(
		jen.Return(jen.Index().Id(g.tag).ValuesFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Id(g.tag + v.Name)
			}
		})),
	)
}

// emitUnionValues generates the exhaustive listing of union values, one
// instance per variant. Only reached when every variant is fieldless.
func emitUnionValues(f *jen.File, g *generator) {
	f.Commentf("%sValues returns one %s value per variant, in declaration order.", g.union.Name, g.union.Name)
	f.Func().Id(g.union.Name+"Values").Params().Index().Id(g.union.Name).Block(
		jen.Return(jen.Index().Id(g.union.Name).ValuesFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				if v.Ptr {
					grp.Op("&").Id(v.Name).Values()
				} else {
					grp.Id(v.Name).Values()
				}
			}
		})),
	)
}

// emitTextDerive generates MarshalText/UnmarshalText on the ID type. The
// canonical text of an ID is its bare variant name, independent of the
// display mode.
func emitTextDerive(f *jen.File, g *generator) {
	bVar := safeIdent("b", g.recv)

	f.Comment("MarshalText implements [encoding.TextMarshaler].")
	f.Func().Params(jen.Id(g.recv).Id(g.tag)).Id("MarshalText").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Switch(jen.Id(g.recv)).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(jen.Id(g.tag + v.Name)).Block(
					jen.Return(jen.Index().Byte().Parens(jen.Lit(v.Name)), jen.Nil()),
				)
			}
		}),
		jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(
			jen.Lit(fmt.Sprintf("undefined %s: %%d", g.tag)), jen.Int().Parens(jen.Id(g.recv)),
		)),
	)

	f.Line()
	f.Comment("UnmarshalText implements [encoding.TextUnmarshaler].")
	f.Func().Params(jen.Id(g.recv).Op("*").Id(g.tag)).Id("UnmarshalText").Params(jen.Id(bVar).Index().Byte()).Error().Block(
		jen.Switch(jen.String().Parens(jen.Id(bVar))).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(jen.Lit(v.Name)).Block(
					jen.Op("*").Id(g.recv).Op("=").Id(g.tag+v.Name),
					jen.Return(jen.Nil()),
				)
			}
		}),
		jen.Return(jen.Qual("fmt", "Errorf").Call(
			jen.Lit("failed to parse value %q into %T"), jen.Id(bVar), jen.Op("*").Id(g.recv),
		)),
	)
}

// emitJSONDerive generates MarshalJSON/UnmarshalJSON on the ID type.
func emitJSONDerive(f *jen.File, g *generator) {
	bVar := safeIdent("b", g.recv)
	sVar := safeIdent("s", g.recv, bVar)

	f.Comment("MarshalJSON implements [json.Marshaler].")
	f.Func().Params(jen.Id(g.recv).Id(g.tag)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Switch(jen.Id(g.recv)).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(jen.Id(g.tag + v.Name)).Block(
					jen.Return(jen.Index().Byte().Parens(jen.Lit(strconv.Quote(v.Name))), jen.Nil()),
				)
			}
		}),
		jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(
			jen.Lit(fmt.Sprintf("undefined %s: %%d", g.tag)), jen.Int().Parens(jen.Id(g.recv)),
		)),
	)

	f.Line()
	f.Comment("UnmarshalJSON implements [json.Unmarshaler].")
	f.Func().Params(jen.Id(g.recv).Op("*").Id(g.tag)).Id("UnmarshalJSON").Params(jen.Id(bVar).Index().Byte()).Error().Block(
		jen.Var().Id(sVar).String(),
		jen.If(
			jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id(bVar), jen.Op("&").Id(sVar)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err())),
		unmarshalStringSwitch(g, sVar),
		jen.Return(jen.Qual("fmt", "Errorf").Call(
			jen.Lit("failed to parse value %q into %T"), jen.Id(sVar), jen.Op("*").Id(g.recv),
		)),
	)
}

// emitYAMLDerive generates the interface-style YAML methods on the ID
// type. The signatures match goccy/go-yaml's InterfaceMarshaler and
// InterfaceUnmarshaler, so the generated file itself stays stdlib-only.
func emitYAMLDerive(f *jen.File, g *generator) {
	uVar := safeIdent("unmarshal", g.recv)
	sVar := safeIdent("s", g.recv)

	f.Comment("MarshalYAML implements yaml.InterfaceMarshaler.")
	f.Func().Params(jen.Id(g.recv).Id(g.tag)).Id("MarshalYAML").Params().Params(jen.Any(), jen.Error()).Block(
		jen.Switch(jen.Id(g.recv)).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(jen.Id(g.tag + v.Name)).Block(
					jen.Return(jen.Lit(v.Name), jen.Nil()),
				)
			}
		}),
		jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(
			jen.Lit(fmt.Sprintf("undefined %s: %%d", g.tag)), jen.Int().Parens(jen.Id(g.recv)),
		)),
	)

	f.Line()
	f.Comment("UnmarshalYAML implements yaml.InterfaceUnmarshaler.")
	f.Func().Params(jen.Id(g.recv).Op("*").Id(g.tag)).Id("UnmarshalYAML").Params(
		jen.Id(uVar).Func().Params(jen.Any()).Error(),
	).Error().Block(
		jen.Var().Id(sVar).String(),
		jen.If(
			jen.Err().Op(":=").Id(uVar).Call(jen.Op("&").Id(sVar)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err())),
		unmarshalStringSwitch(g, sVar),
		jen.Return(jen.Qual("fmt", "Errorf").Call(
			jen.Lit("failed to parse value %q into %T"), jen.Id(sVar), jen.Op("*").Id(g.recv),
		)),
	)
}

// emitSQLDerive generates driver.Valuer and sql.Scanner on the ID type.
func emitSQLDerive(f *jen.File, g *generator) {
	srcVar := safeIdent("src", g.recv)
	sVar := safeIdent("s", g.recv, srcVar)

	f.Comment("Value implements [driver.Valuer].")
	f.Func().Params(jen.Id(g.recv).Id(g.tag)).Id("Value").Params().Params(jen.Qual("database/sql/driver", "Value"), jen.Error()).Block(
		jen.Switch(jen.Id(g.recv)).BlockFunc(func(grp *jen.Group) {
			for _, v := range g.union.Variants {
				grp.Case(jen.Id(g.tag + v.Name)).Block(
					jen.Return(jen.Lit(v.Name), jen.Nil()),
				)
			}
		}),
		jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(
			jen.Lit(fmt.Sprintf("undefined %s: %%d", g.tag)), jen.Int().Parens(jen.Id(g.recv)),
		)),
	)

	f.Line()
	f.Comment("Scan implements [sql.Scanner].")
	f.Func().Params(jen.Id(g.recv).Op("*").Id(g.tag)).Id("Scan").Params(jen.Id(srcVar).Any()).Error().Block(
		jen.Var().Id(sVar).String(),
		jen.Switch(jen.Id(srcVar).Op(":=").Id(srcVar).Assert(jen.Type())).Block(
			jen.Case(jen.String()).Block(jen.Id(sVar).Op("=").Id(srcVar)),
			jen.Case(jen.Index().Byte()).Block(jen.Id(sVar).Op("=").String().Parens(jen.Id(srcVar))),
			jen.Default().Block(jen.Return(jen.Qual("fmt", "Errorf").Call(
				jen.Lit(fmt.Sprintf("cannot scan %%T into %s", g.tag)), jen.Id(srcVar),
			))),
		),
		unmarshalStringSwitch(g, sVar),
		jen.Return(jen.Qual("fmt", "Errorf").Call(
			jen.Lit("failed to parse value %q into %T"), jen.Id(sVar), jen.Op("*").Id(g.recv),
		)),
	)
}

// unmarshalStringSwitch builds the switch assigning *recv from a variant
// name held in sVar, returning nil on a match.
func unmarshalStringSwitch(g *generator, sVar string) *jen.Statement {
	return jen.Switch(jen.Id(sVar)).BlockFunc(func(grp *jen.Group) {
		for _, v := range g.union.Variants {
			grp.Case(jen.Lit(v.Name)).Block(
				jen.Op("*").Id(g.recv).Op("=").Id(g.tag+v.Name),
				jen.Return(jen.Nil()),
			)
		}
	})
}

// emitAssertions generates the compile-time interface checks for the
// produced surface.
func emitAssertions(f *jen.File, g *generator) {
	f.Var().DefsFunc(func(grp *jen.Group) {
		for _, v := range g.union.Variants {
			grp.Id("_").Interface(jen.Id(g.getter).Params().Id(g.tag)).Op("=").Add(zeroValue(v))
		}

		switch g.opts.Display {
		case DisplayQualified, DisplayVariant, DisplayVariantSnake:
			grp.Id("_").Qual("fmt", "Stringer").Op("=").Id(g.tag).Parens(jen.Lit(0))
		case DisplayFromValue:
			for _, v := range g.union.Variants {
				grp.Id("_").Qual("fmt", "Stringer").Op("=").Add(zeroValue(v))
			}
		}

		for _, d := range g.derives {
			switch d {
			case "text":
				grp.Id("_").Qual("encoding", "TextMarshaler").Op("=").Id(g.tag).Parens(jen.Lit(0))
				grp.Id("_").Qual("encoding", "TextUnmarshaler").Op("=").New(jen.Id(g.tag))
			case "json":
				grp.Id("_").Qual("encoding/json", "Marshaler").Op("=").Id(g.tag).Parens(jen.Lit(0))
				grp.Id("_").Qual("encoding/json", "Unmarshaler").Op("=").New(jen.Id(g.tag))
			case "sql":
				grp.Id("_").Qual("database/sql/driver", "Valuer").Op("=").Id(g.tag).Parens(jen.Lit(0))
				grp.Id("_").Qual("database/sql", "Scanner").Op("=").New(jen.Id(g.tag))
			}
		}
	})
}

// variantType renders the type expression a variant appears as inside the
// union interface.
func variantType(v Variant) *jen.Statement {
	if v.Ptr {
		return jen.Op("*").Id(v.Name)
	}
	return jen.Id(v.Name)
}

// zeroValue renders a zero value of the variant that satisfies the union.
func zeroValue(v Variant) *jen.Statement {
	if v.Ptr {
		return jen.New(jen.Id(v.Name))
	}
	return jen.Op("*").New(jen.Id(v.Name))
}

// DefaultFileName returns the output file name used when none is given.
func DefaultFileName(typeName string) string {
	return unexportedName(typeName) + "_enumid.go"
}

// defaultReceiverName returns the receiver name for methods on typeName.
func defaultReceiverName(typeName string) string {
	s, _ := utf8.DecodeRuneInString(typeName)
	return unexportedName(string(s))
}

// safeIdent returns an identifier that is safe to use (not a keyword, and
// not already used). want is the requested identifier; not is a list of
// identifiers that are already used.
func safeIdent(want string, not ...string) string {
	if token.IsKeyword(want) {
		return safeIdent("_"+want, not...)
	}

	for _, s := range not {
		if want == s {
			return safeIdent("_"+want, not...)
		}
	}

	return want
}

// unexportedName returns s with the first character replaced with its
// lower case version if it is upper case.
func unexportedName(s string) string {
	start, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(start)) + s[size:]
}

// exportedName returns s with the first character replaced with its upper
// case version if it is lower case.
func exportedName(s string) string {
	start, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(start)) + s[size:]
}

