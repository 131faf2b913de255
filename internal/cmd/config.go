package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Alia5/kb2pad/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a config file holding the defaults of a command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"run,curve"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to kb2pad.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// templates maps a command name to the struct kong parses its flags into.
var templates = map[string]reflect.Type{
	"run":   reflect.TypeOf(Run{}),
	"curve": reflect.TypeOf(CurveCommand{}),
}

func (c *ConfigInit) Run() error {
	var format string
	switch strings.ToLower(c.Format) {
	case "json":
		format = "json"
	case "yaml", "yml":
		format = "yaml"
	case "toml":
		format = "toml"
	default:
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	root, err := Template(c.Command)
	if err != nil {
		return err
	}
	data, err := encodeTemplate(root, format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = "kb2pad." + format
	}
	if _, err := os.Stat(dest); err == nil && !c.Force {
		return fmt.Errorf("%s exists; use --force to overwrite", dest)
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// Template returns the defaults of command keyed the way the config loaders read them:
// lowerCamel field names, prefixed groups as nested maps.
func Template(command string) (map[string]any, error) {
	t, ok := templates[command]
	if !ok {
		return nil, errors.New("unknown command; expected 'run' or 'curve'")
	}
	return structDefaults(t), nil
}

func encodeTemplate(root map[string]any, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(root, "", "  ")
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

func structDefaults(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || len(f.Index) > 1 || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, embedded := f.Tag.Lookup("embed"); embedded {
			group := strings.TrimSuffix(f.Tag.Get("prefix"), ".")
			sub := structDefaults(f.Type)
			if group != "" {
				out[group] = sub
				continue
			}
			for k, v := range sub {
				out[k] = v
			}
			continue
		}
		if v := fieldDefault(f.Type, f.Tag.Get("default")); v != nil {
			out[lowerCamel(f.Name)] = v
		}
	}
	return out
}

var durationType = reflect.TypeOf(time.Duration(0))

// fieldDefault converts a kong default tag into a value of t's kind. Unparsable
// defaults yield the zero value; unsupported kinds yield nil and are left out.
func fieldDefault(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == durationType {
		if def == "" {
			return "0s"
		}
		return def
	}

	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		n, _ := strconv.ParseFloat(def, 64)
		return n
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return nil
		}
		items := []string{}
		for _, v := range strings.Split(def, ",") {
			if v = strings.TrimSpace(v); v != "" {
				items = append(items, v)
			}
		}
		return items
	case reflect.Struct:
		return structDefaults(t)
	}
	return nil
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
