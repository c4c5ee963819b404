package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/tools/go/packages"

	"gitlab.com/slatebit/enumid/internal/enumid"
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "enumid",
	Short: "Generate a fieldless companion ID enum for a Go union type",
	Long: `Generate a fieldless companion ID enum for a Go union type.

enumid is designed to be called by go generate on an interface whose
implementing types in the same package form a closed set of variants. It
emits an ID constant per variant, an ID getter on every variant, and
optional String, value-listing, and marshaling surfaces.`,
	RunE:    run,
	Example: `enumid --input kind.go --pkg example --type Kind --display-variant --derive "text, json"`,
}

func init() {
	fs := rootCmd.Flags()
	fs.StringVarP(&flagInput, "input", "i", "", "input file to scan. If not specified, input defaults to the value of $GOFILE, which is set by go generate")
	fs.StringVarP(&flagOutput, "output", "o", "", "output file to create. If not specified, output defaults to <type>_enumid.go. As special cases, you can specify <STDOUT> or <STDERR> to output to standard output or standard error")
	fs.StringVarP(&flagPkg, "pkg", "p", "", "package name for the generated file. If not specified, pkg defaults to the value of $GOPACKAGE which is set by go generate")
	fs.StringVarP(&flagType, "type", "t", "", "union type to generate an ID enum for. If not specified, it attempts to find the type using $GOLINE and $GOFILE")
	fs.IntVarP(&flagLine, "line", "l", 0, "Specify the line to search for types from if a type name is not specified. If not specified, line defaults to the value of $GOLINE which is set by go generate.")
	_ = fs.MarkHidden("line")

	fs.StringVar(&flagDerive, "derive", "", "comma-separated derive list for the ID enum (text, json, yaml, sql). Disables inheriting //enumid:derive directives from the union declaration")
	fs.BoolVar(&flagNoDerive, "no-derive", false, "derive nothing on the ID enum, ignoring //enumid:derive directives. Conflicts with --derive")
	fs.StringVarP(&flagGetter, "getter", "g", "", "name of the ID getter method generated on every variant. Defaults to Id (or id on an unexported ID enum)")
	fs.StringVarP(&flagName, "name", "n", "", "name of the generated ID enum. Defaults to the union name with an Id suffix")
	fs.BoolVar(&flagPublic, "public", false, "export the ID enum regardless of the union's exportedness. Conflicts with --not-public")
	fs.BoolVar(&flagNotPublic, "not-public", false, "unexport the ID enum regardless of the union's exportedness. Conflicts with --public")
	fs.BoolVar(&flagDisplay, "display", false, `generate String() on the ID enum rendering "Union::Variant"`)
	fs.BoolVar(&flagDisplayVariant, "display-variant", false, `generate String() on the ID enum rendering "Variant"`)
	fs.BoolVar(&flagDisplayVariantSnake, "display-variant-snake", false, "generate String() on the ID enum rendering the snake-cased variant name")
	fs.BoolVar(&flagDisplayFromValue, "display-from-value", false, "generate String() on every variant forwarding the wrapped value. Requires every variant to wrap exactly one value")
	fs.BoolVar(&flagIterator, "iterator", false, "generate a <Union>Values() listing on the union. Requires every variant to be fieldless")

	fs.StringVarP(&flagConfig, "config", "c", "", "defaults file to load (YAML). If not specified, .enumid.yaml is used when present")
	fs.StringVar(&flagLogLevel, "log-level", "warn", "log level for diagnostics on stderr (debug, info, warn, error)")
}

var (
	flagInput    string
	flagOutput   string
	flagPkg      string
	flagType     string
	flagLine     int
	flagConfig   string
	flagLogLevel string

	flagDerive              string
	flagNoDerive            bool
	flagGetter              string
	flagName                string
	flagPublic              bool
	flagNotPublic           bool
	flagDisplay             bool
	flagDisplayVariant      bool
	flagDisplayVariantSnake bool
	flagDisplayFromValue    bool
	flagIterator            bool
)

func run(cmd *cobra.Command, _ []string) error {
	setupLogging(flagLogLevel)

	inputFileName, ok := resolveParameterValue(cmd.Flag("input"), "GOFILE")
	if !ok {
		return errors.New("failed to determine input file")
	}

	pkgName, ok := resolveParameterValue(cmd.Flag("pkg"), "GOPACKAGE")
	if !ok {
		return errors.New("failed to determine package name")
	}

	typeName, _ := resolveParameterValue(cmd.Flag("type"), "")

	var line int
	lineStr, _ := resolveParameterValue(cmd.Flag("line"), "GOLINE")
	if lineStr != "" {
		if _, err := fmt.Sscan(lineStr, &line); err != nil {
			return fmt.Errorf("failed to determine source line: %w", err)
		}
	}

	raw, err := resolveRawOptions(cmd)
	if err != nil {
		return err
	}

	opts, err := raw.Resolve()
	if err != nil {
		return err
	}

	pkg, err := loadPackage(pkgName, inputFileName)
	if err != nil {
		return err
	}
	log.Debug("loaded package", "package", pkg.Name, "files", len(pkg.Syntax))

	u, err := enumid.Analyze(&enumid.Package{
		Fset:   pkg.Fset,
		Info:   pkg.TypesInfo,
		Syntax: pkg.Syntax,
	}, typeName, inputFileName, line)
	if err != nil {
		return err
	}
	log.Debug("analyzed union", "union", u.Name, "variants", len(u.Variants))

	// update typeName if it was not specified by the caller, but we found
	// it in the source code
	if typeName == "" {
		typeName = u.Name
	}

	reproCmd := reproCommand(os.Args[0], cmd.Flags(), inputFileName, pkgName, typeName)

	f, err := enumid.Generate(pkgName, u, opts, reproCmd)
	if err != nil {
		return err
	}

	outputFileName, ok := resolveParameterValue(cmd.Flag("output"), "")
	if !ok {
		outputFileName = enumid.DefaultFileName(typeName)
	}

	out, cleanup, err := openOutputFile(outputFileName)
	if err != nil {
		return err
	}
	defer cleanup()

	return f.Render(out)
}

// reproCommand renders the invocation recorded in the generated file
// header. The resolved input, package, and type are always recorded, even
// when they came from the go generate environment; output-shaping option
// flags are appended as supplied, so rerunning the recorded command
// reproduces the file.
func reproCommand(name string, fs *pflag.FlagSet, inputFileName, pkgName, typeName string) string {
	ret := name
	if inputFileName != "" {
		ret = fmt.Sprintf("%s --input=%q", ret, inputFileName)
	}
	if pkgName != "" {
		ret = fmt.Sprintf("%s --pkg=%q", ret, pkgName)
	}
	if typeName != "" {
		ret = fmt.Sprintf("%s --type=%q", ret, typeName)
	}

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "input", "pkg", "type", "line", "output", "log-level":
			// recorded above, or without effect on the file's content
			return
		}
		if f.Value.Type() == "bool" {
			ret = fmt.Sprintf("%s --%s", ret, f.Name)
			return
		}
		ret = fmt.Sprintf("%s --%s=%q", ret, f.Name, f.Value.String())
	})

	return ret
}

func setupLogging(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
	log.SetOutput(os.Stderr)
}

// resolveRawOptions combines the flag values with the defaults file. Flags
// win; the file only fills in options that were not supplied.
func resolveRawOptions(cmd *cobra.Command) (enumid.RawOptions, error) {
	raw := enumid.RawOptions{
		Derive:              flagDerive,
		DeriveSet:           cmd.Flags().Changed("derive"),
		NoDerive:            flagNoDerive,
		Getter:              flagGetter,
		TagName:             flagName,
		Public:              flagPublic,
		NotPublic:           flagNotPublic,
		Display:             flagDisplay,
		DisplayVariant:      flagDisplayVariant,
		DisplayVariantSnake: flagDisplayVariantSnake,
		DisplayFromValue:    flagDisplayFromValue,
		Iterator:            flagIterator,
	}

	cfg, err := loadConfig(flagConfig, cmd.Flags().Changed("config"))
	if err != nil {
		return raw, err
	}
	if cfg == nil {
		return raw, nil
	}
	log.Debug("loaded defaults file", "path", cfg.path)

	return mergeConfig(raw, cfg, cmd.Flags())
}

func mergeConfig(raw enumid.RawOptions, cfg *fileConfig, fs *pflag.FlagSet) (enumid.RawOptions, error) {
	if cfg.Getter != "" && !fs.Changed("getter") {
		raw.Getter = cfg.Getter
	}
	if cfg.TagName != "" && !fs.Changed("name") {
		raw.TagName = cfg.TagName
	}
	if cfg.DeriveSet && !fs.Changed("derive") && !fs.Changed("no-derive") {
		raw.Derive = strings.Join(cfg.Derive, ", ")
		raw.DeriveSet = true
	}
	if cfg.Iterator && !fs.Changed("iterator") {
		raw.Iterator = true
	}

	anyDisplayFlag := fs.Changed("display") || fs.Changed("display-variant") ||
		fs.Changed("display-variant-snake") || fs.Changed("display-from-value")
	if cfg.Display != "" && !anyDisplayFlag {
		switch cfg.Display {
		case "display":
			raw.Display = true
		case "display_variant":
			raw.DisplayVariant = true
		case "display_variant_snake":
			raw.DisplayVariantSnake = true
		case "display_from_value":
			raw.DisplayFromValue = true
		case "none":
		default:
			return raw, fmt.Errorf("%w: display mode %q in %s", enumid.ErrUnrecognizedOption, cfg.Display, cfg.path)
		}
	}

	return raw, nil
}

// loadPackage loads the package of file inputFileName.
func loadPackage(pkgName, inputFileName string) (*packages.Package, error) {
	pkgs, err := packages.Load(&packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedDeps |
			packages.NeedSyntax |
			packages.NeedImports},
		fmt.Sprintf("file=%s", inputFileName))
	if err != nil {
		return nil, err
	}

	var ret *packages.Package
	for _, pkg := range pkgs {
		if pkg.Name != pkgName {
			continue
		}

		if ret != nil {
			return nil, fmt.Errorf("multiple packages found with name %s", pkgName)
		}

		ret = pkg
	}

	if ret == nil {
		return nil, fmt.Errorf("no packages found with name %s", pkgName)
	}

	return ret, nil
}

// resolveParameterValue returns the parameter value from f if it was
// specified by the user. Otherwise, if env is not empty, it looks up the
// value from the environment variable named env.
func resolveParameterValue(f *pflag.Flag, env string) (string, bool) {
	if f.Changed {
		return f.Value.String(), true
	}

	if env != "" {
		return os.LookupEnv(env)
	}

	return f.DefValue, false
}

// openOutputFile opens/creates the file to write the output to.
// The returned func is the function to use to "close" the file.
func openOutputFile(name string) (*os.File, func(), error) {
	switch name {
	case "<STDOUT>":
		return os.Stdout, func() { _ = os.Stdout.Sync() }, nil
	case "<STDERR>":
		return os.Stderr, func() { _ = os.Stderr.Sync() }, nil
	default:
		ret, err := os.Create(name)
		if err != nil {
			return nil, nil, err
		}
		return ret, func() { _ = ret.Close() }, nil
	}
}
