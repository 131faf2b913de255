// Package store reads and writes the profile file: the persisted tunables, bindings,
// macros and layouts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/kb2pad/internal/configpaths"
	"github.com/Alia5/kb2pad/record"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Profile is the on-disk profile. Settings and Layouts hold the key/value pairs of their
// owners; Macros holds macro interchange records in order.
type Profile struct {
	Settings map[string]string `json:"settings" yaml:"settings" toml:"settings"`
	Layouts  map[string]string `json:"layouts" yaml:"layouts" toml:"layouts"`
	Macros   []string          `json:"macros" yaml:"macros" toml:"macros"`
}

// SettingsPairs returns the settings section as sorted pairs.
func (p Profile) SettingsPairs() record.Pairs { return record.FromMap(p.Settings) }

// LayoutPairs returns the layouts section as sorted pairs.
func (p Profile) LayoutPairs() record.Pairs { return record.FromMap(p.Layouts) }

// Format is a profile file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported profile extension %q", filepath.Ext(path))
}

// Marshal encodes p in format f.
func Marshal(p Profile, f Format) ([]byte, error) {
	p = p.filled()
	switch f {
	case FormatYAML:
		return yaml.Marshal(p)
	case FormatTOML:
		return toml.Marshal(p)
	case FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	}
	return nil, fmt.Errorf("unsupported profile format %q", f)
}

// Unmarshal decodes data in format f.
func Unmarshal(data []byte, f Format) (Profile, error) {
	var p Profile
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	case FormatTOML:
		err = toml.Unmarshal(data, &p)
	case FormatJSON:
		err = json.Unmarshal(data, &p)
	default:
		err = fmt.Errorf("unsupported profile format %q", f)
	}
	if err != nil {
		return Profile{}, err
	}
	return p.filled(), nil
}

func (p Profile) filled() Profile {
	if p.Settings == nil {
		p.Settings = map[string]string{}
	}
	if p.Layouts == nil {
		p.Layouts = map[string]string{}
	}
	if p.Macros == nil {
		p.Macros = []string{}
	}
	return p
}

// Load reads the profile at path. A missing file yields an empty profile and an error
// wrapping os.ErrNotExist.
func Load(path string) (Profile, error) {
	f, err := FormatFor(path)
	if err != nil {
		return Profile{}.filled(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}.filled(), fmt.Errorf("read profile: %w", err)
	}
	p, err := Unmarshal(data, f)
	if err != nil {
		return Profile{}.filled(), fmt.Errorf("decode profile %s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path atomically: the data goes to a temp file in the same directory
// which is synced and renamed over path. The temp file is removed on any failure.
func Save(path string, p Profile) (err error) {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(p, f)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := configpaths.EnsureDir(path); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp profile: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp profile: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp profile: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp profile: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp profile: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

// IsNotExist reports whether err came from loading a missing profile.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
