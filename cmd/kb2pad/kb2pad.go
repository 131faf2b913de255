package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Alia5/kb2pad/internal/config"
	"github.com/Alia5/kb2pad/internal/configpaths"
	"github.com/Alia5/kb2pad/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userConfig(os.Args[1:]))

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("kb2pad"),
		kong.Description("Analog keyboard to virtual gamepad mapper"),
		kong.UsageOnError(),
		// Flags and env override file values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closers, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	rawLogger, rawFile := rawLoggerFor(cli.Log, logger)
	if rawFile != nil {
		closers = append(closers, rawFile)
	}

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))
	err = ctx.Run()

	for _, c := range closers {
		_ = c.Close()
	}
	ctx.FatalIfErrorf(err)
}

// rawLoggerFor picks the report dump target: --log.raw-file, stdout at trace level,
// otherwise nowhere.
func rawLoggerFor(opts config.Log, logger *slog.Logger) (log.RawLogger, io.Closer) {
	if opts.RawFile != "" {
		f, err := os.OpenFile(opts.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err == nil {
			return log.NewRaw(f), f
		}
		logger.Error("failed to open raw log file", "file", opts.RawFile, "error", err)
	}
	if opts.Level == "trace" {
		return log.NewRaw(os.Stdout), nil
	}
	return log.NewRaw(nil), nil
}

// userConfig finds --config before kong parses, since it decides which files kong loads.
func userConfig(args []string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("KB2PAD_CONFIG")
}
