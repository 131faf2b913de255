// Package config holds the root command line of kb2pad.
package config

import "github.com/Alia5/kb2pad/internal/cmd"

// Log configures the process logger.
type Log struct {
	Level   string `help:"Log level" default:"info" enum:"trace,debug,info,warn,error" env:"KB2PAD_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" type:"path" env:"KB2PAD_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every submitted report to this file" type:"path" env:"KB2PAD_LOG_RAW_FILE"`
}

// CLI is the kong root. Flags and environment override configuration files.
type CLI struct {
	ConfigFile string `name:"config" help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"KB2PAD_CONFIG"`
	Log        Log    `embed:"" prefix:"log."`

	Run    cmd.Run           `cmd:"" help:"Capture keyboard and mouse input and drive the virtual controller" default:"withargs"`
	Curve  cmd.CurveCommand  `cmd:"" help:"Print the sampled response curve"`
	Macro  cmd.MacroCommand  `cmd:"" help:"Manage macros and combos"`
	Layout cmd.LayoutCommand `cmd:"" help:"Manage on-screen layout presets"`
	Config cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
