// Package configpaths locates kb2pad's CLI config files and the default profile.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "kb2pad"

// baseNames are the config file names probed in every directory, highest priority first.
var baseNames = []string{appName, "config", "run"}

// extensions per loader. The first entry is the canonical one.
var extensions = map[string][]string{
	"json": {".json"},
	"yaml": {".yaml", ".yml"},
	"toml": {".toml"},
}

// formatOf maps a file extension to its loader, defaulting to json.
func formatOf(ext string) string {
	for format, exts := range extensions {
		for _, e := range exts {
			if e == ext {
				return format
			}
		}
	}
	return "json"
}

// DefaultConfigDir is $XDG_CONFIG_HOME/kb2pad (or ~/.config/kb2pad), %AppData%\kb2pad on windows.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appdata := os.Getenv("AppData")
		if appdata == "" {
			return "", errors.New("AppData not set")
		}
		return filepath.Join(appdata, appName), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", errors.New("HOME not set")
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultNamedConfigPath joins the config dir with baseName and the canonical
// extension for format ("yml" is treated as yaml).
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	if format == "yml" {
		format = "yaml"
	}
	exts, ok := extensions[format]
	if !ok {
		exts = extensions["json"]
	}
	return filepath.Join(dir, baseName+exts[0]), nil
}

// DefaultProfilePath is used when no --profile is given.
func DefaultProfilePath() (string, error) {
	return DefaultNamedConfigPath("profile", "yaml")
}

// EnsureDir creates the parent directory of filePath.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// ConfigCandidatePaths lists the files each kong loader should try, in priority order:
// userPath (routed by extension), the working directory, the config dir and /etc/kb2pad.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	byFormat := map[string]*[]string{"json": &jsonPaths, "yaml": &yamlPaths, "toml": &tomlPaths}

	if userPath != "" {
		p := byFormat[formatOf(filepath.Ext(userPath))]
		*p = append(*p, userPath)
	}

	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	if runtime.GOOS != "windows" {
		dirs = append(dirs, filepath.Join("/etc", appName))
	}

	for _, dir := range dirs {
		for _, base := range baseNames {
			for _, format := range []string{"json", "yaml", "toml"} {
				for _, ext := range extensions[format] {
					p := byFormat[format]
					*p = append(*p, filepath.Join(dir, base+ext))
				}
			}
		}
	}
	return
}
