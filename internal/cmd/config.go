package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"gitlab.com/slatebit/enumid/internal/enumid"
)

// defaultConfigName is the defaults file picked up from the working
// directory when --config is not given.
const defaultConfigName = ".enumid.yaml"

// fileConfig holds per-project option defaults. Flags always win over the
// file; the file only applies to options left unset on the command line.
type fileConfig struct {
	path string

	Getter    string
	TagName   string
	Derive    []string
	DeriveSet bool
	Display   string
	Iterator  bool
}

// loadConfig reads the defaults file. A missing file is only an error when
// the path was supplied explicitly; the implicit .enumid.yaml is optional.
func loadConfig(path string, explicit bool) (*fileConfig, error) {
	if path == "" {
		path = defaultConfigName
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return parseConfig(path, data)
}

// parseConfig decodes data key by key so an unknown key fails with
// [enumid.ErrUnrecognizedOption] naming it, matching the contract of
// unknown flags.
func parseConfig(path string, data []byte) (*fileConfig, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c := &fileConfig{path: path}
	for key, val := range raw {
		var err error
		switch key {
		case "getter":
			c.Getter, err = stringValue(path, key, val)
		case "name":
			c.TagName, err = stringValue(path, key, val)
		case "derive":
			c.Derive, err = listValue(path, key, val)
			c.DeriveSet = err == nil
		case "display":
			c.Display, err = stringValue(path, key, val)
		case "iterator":
			b, ok := val.(bool)
			if !ok {
				err = fmt.Errorf("%s: %s must be a boolean, got %T", path, key, val)
			}
			c.Iterator = b
		default:
			err = fmt.Errorf("%w: %q in %s", enumid.ErrUnrecognizedOption, key, path)
		}
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func stringValue(path, key string, val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s: %s must be a string, got %T", path, key, val)
	}
	return s, nil
}

// listValue accepts either a comma-separated string or a YAML sequence of
// strings.
func listValue(path, key string, val any) ([]string, error) {
	switch v := val.(type) {
	case string:
		var ret []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				ret = append(ret, s)
			}
		}
		return ret, nil
	case []any:
		ret := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%s: %s entries must be strings, got %T", path, key, e)
			}
			ret = append(ret, s)
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("%s: %s must be a string or a list of strings, got %T", path, key, val)
	}
}
