package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kb2pad/curve"
	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/layout"
	"github.com/Alia5/kb2pad/macro"
	"github.com/Alia5/kb2pad/settings"
	"github.com/Alia5/kb2pad/store"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// seedProfile writes a profile with one macro, one combo and a second layout.
func seedProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	ws := newWorkspace(quietLogger())
	ws.settings.SetPollingRateMs(8)
	ws.settings.Keys.Set(hid.KeyW, settings.KeyDeadzone{UseUnique: true, Params: curve.Params{
		Low: 0.1, High: 0.9, AntiDeadzone: 0, OutputCap: 0.5, Mode: curve.ModeLinear,
	}})
	ws.engine.Add(macro.Macro{Name: "jump", Looping: true, Actions: []macro.Action{
		{Kind: macro.ActionKeyDown, Key: hid.KeySpace},
		{Kind: macro.ActionKeyUp, Key: hid.KeySpace, DelayMs: 50},
	}})
	ws.engine.AddCombo(macro.Combo{Name: "copy", Enabled: true,
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 2},
		Actions: []macro.ComboAction{{Kind: macro.ComboTap, Key: hid.KeyC}}})
	require.True(t, ws.layouts.Add(layout.Preset{Name: "Compact"}))
	require.NoError(t, ws.save(path))
	return path
}

func TestWorkspaceRoundTrip(t *testing.T) {
	path := seedProfile(t)

	ws, _, err := loadWorkspace(ProfileOption{Profile: path}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 8, ws.settings.PollingRateMs())
	kd, ok := ws.settings.Keys.Get(hid.KeyW)
	require.True(t, ok)
	assert.InDelta(t, 0.5, kd.OutputCap(), 0.001)
	require.Len(t, ws.engine.List(), 1)
	assert.Equal(t, "jump", ws.engine.List()[0].Name)
	require.Len(t, ws.engine.Combos(), 1)
	_, ok = ws.layouts.Get("Compact")
	assert.True(t, ok)
}

func TestLoadMissingProfileKeepsDefaults(t *testing.T) {
	ws, _, err := loadWorkspace(ProfileOption{Profile: filepath.Join(t.TempDir(), "none.toml")}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultPollingRateMs, ws.settings.PollingRateMs())
	assert.Empty(t, ws.engine.List())
}

func TestLoadCorruptProfileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings: [unterminated"), 0o644))
	_, _, err := loadWorkspace(ProfileOption{Profile: path}, quietLogger())
	assert.Error(t, err)
}

func TestCurveCommand(t *testing.T) {
	path := seedProfile(t)
	var buf bytes.Buffer
	c := &CurveCommand{ProfileOption: ProfileOption{Profile: path}, Key: "W", Points: 4, stdout: &buf}
	require.NoError(t, c.Run(quietLogger()))

	out := buf.String()
	assert.Contains(t, out, "curve W: mode=linear deadzone=0.100-0.900 output=0.000-0.500")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[6], "1.000"))
	assert.Contains(t, lines[6], "0.500")

	c = &CurveCommand{ProfileOption: ProfileOption{Profile: path}, Key: "bogus", stdout: &buf}
	assert.Error(t, c.Run(quietLogger()))
}

func TestMacroCommands(t *testing.T) {
	path := seedProfile(t)
	opt := ProfileOption{Profile: path}

	var list bytes.Buffer
	require.NoError(t, (&MacroList{ProfileOption: opt, stdout: &list}).Run(quietLogger()))
	assert.Contains(t, list.String(), "jump")
	assert.Contains(t, list.String(), "loop")
	assert.Contains(t, list.String(), "copy")

	exported := filepath.Join(t.TempDir(), "macros.txt")
	require.NoError(t, (&MacroExport{ProfileOption: opt, Output: exported}).Run(quietLogger()))
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "MACRO|jump|"))

	require.NoError(t, (&MacroImport{ProfileOption: opt, File: exported}).Run(quietLogger()))
	p, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.Join(p.Macros, "\n"), "MACRO|jump|"))

	require.NoError(t, (&MacroDelete{ProfileOption: opt, Target: "jump"}).Run(quietLogger()))
	ws, _, err := loadWorkspace(opt, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, ws.engine.List())
	assert.Len(t, ws.engine.Combos(), 2)

	assert.Error(t, (&MacroDelete{ProfileOption: opt, Target: "nothing"}).Run(quietLogger()))
}

func TestLayoutCommands(t *testing.T) {
	path := seedProfile(t)
	opt := ProfileOption{Profile: path}
	log := quietLogger()

	require.NoError(t, (&LayoutAdd{ProfileOption: opt, Name: "Wide", Activate: true}).Run(log))
	assert.Error(t, (&LayoutAdd{ProfileOption: opt, Name: "Wide"}).Run(log))
	require.NoError(t, (&LayoutRename{ProfileOption: opt, From: "Compact", To: "Tiny"}).Run(log))

	var buf bytes.Buffer
	require.NoError(t, (&LayoutList{ProfileOption: opt, stdout: &buf}).Run(log))
	out := buf.String()
	assert.Contains(t, out, "Tiny")
	assert.Regexp(t, `\*\s+Wide`, out)

	require.NoError(t, (&LayoutActivate{ProfileOption: opt, Name: "Tiny"}).Run(log))
	require.NoError(t, (&LayoutDelete{ProfileOption: opt, Name: "Wide"}).Run(log))
	require.NoError(t, (&LayoutDelete{ProfileOption: opt, Name: "Default"}).Run(log))
	assert.Error(t, (&LayoutDelete{ProfileOption: opt, Name: "Tiny"}).Run(log), "last preset")
	assert.Error(t, (&LayoutActivate{ProfileOption: opt, Name: "Gone"}).Run(log))
}

func TestConfigTemplate(t *testing.T) {
	root, err := Template("run")
	require.NoError(t, err)
	assert.Equal(t, []string{"viiper"}, root["output"])
	viiper, ok := root["viiper"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "localhost:3242", viiper["addr"])
	assert.Equal(t, uint64(1), viiper["bus"])
	assert.Equal(t, "3s", viiper["dialTimeout"])
	assert.Contains(t, root, "profile")

	_, err = Template("nope")
	assert.Error(t, err)

	for _, f := range []string{"json", "yaml", "toml"} {
		data, err := encodeTemplate(root, f)
		require.NoError(t, err, f)
		assert.Contains(t, string(data), "localhost:3242", f)
	}
}

func TestConfigInitWritesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "sub", "kb2pad.yaml")
	c := &ConfigInit{Command: "run", Format: "yml", Output: dest}
	require.NoError(t, c.Run())
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "viiper:")
	assert.Error(t, c.Run(), "refuses to overwrite")
	c.Force = true
	assert.NoError(t, c.Run())
}
