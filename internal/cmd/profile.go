package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/internal/configpaths"
	"github.com/Alia5/kb2pad/layout"
	"github.com/Alia5/kb2pad/macro"
	"github.com/Alia5/kb2pad/settings"
	"github.com/Alia5/kb2pad/store"
)

// ProfileOption selects the profile file shared by every command.
type ProfileOption struct {
	Profile string `help:"Profile file holding tunables, bindings, macros and layouts (.yaml, .toml or .json)" type:"path" env:"KB2PAD_PROFILE"`
}

func (o ProfileOption) path() (string, error) {
	if o.Profile != "" {
		return o.Profile, nil
	}
	p, err := configpaths.DefaultProfilePath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve profile path: %w", err)
	}
	return p, nil
}

// workspace is everything a profile populates.
type workspace struct {
	settings *settings.Settings
	layouts  *layout.Store
	engine   *macro.Engine
}

// newWorkspace returns defaults with an engine that edits macros but never plays them.
func newWorkspace(logger *slog.Logger) *workspace {
	return &workspace{
		settings: settings.New(),
		layouts:  layout.NewStore(),
		engine:   macro.NewEngine(nil, nopEmitter{}, logger, macro.Options{}),
	}
}

// load reads path into w. A missing file leaves the defaults in place.
func (w *workspace) load(path string, now int64, logger *slog.Logger) error {
	p, err := store.Load(path)
	if store.IsNotExist(err) {
		logger.Info("no profile yet, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return err
	}
	w.apply(p, now, logger)
	logger.Debug("profile loaded", "path", path, "settings", len(p.Settings), "macros", len(p.Macros))
	return nil
}

func (w *workspace) apply(p store.Profile, now int64, logger *slog.Logger) {
	w.settings.Deserialize(p.SettingsPairs(), logger)
	w.layouts.Deserialize(p.LayoutPairs(), logger)
	w.engine.Clear(now)
	for _, err := range w.engine.Import(p.Macros) {
		logger.Warn("skipping macro record", "error", err)
	}
}

func (w *workspace) snapshot() store.Profile {
	return store.Profile{
		Settings: w.settings.Serialize().Map(),
		Layouts:  w.layouts.Serialize().Map(),
		Macros:   w.engine.Export(),
	}
}

func (w *workspace) save(path string) error {
	if err := store.Save(path, w.snapshot()); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

type nopEmitter struct{}

func (nopEmitter) EmitKey(hid.Code, bool, int64) error            { return nil }
func (nopEmitter) EmitMouse(input.MouseButton, bool, int64) error { return nil }
func (nopEmitter) EmitWheel(int, int64) error                     { return nil }
