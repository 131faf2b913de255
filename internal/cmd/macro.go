package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Alia5/kb2pad/macro"
)

// MacroCommand groups macro and combo maintenance subcommands.
type MacroCommand struct {
	List   MacroList   `cmd:"" help:"List macros and combos"`
	Export MacroExport `cmd:"" help:"Write macros and combos as interchange records"`
	Import MacroImport `cmd:"" help:"Add macros and combos from an interchange file"`
	Delete MacroDelete `cmd:"" help:"Delete a macro or combo by id or name"`
}

type MacroList struct {
	ProfileOption `embed:""`

	stdout io.Writer
}

func (c *MacroList) Run(logger *slog.Logger) error {
	ws, _, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(writerOr(c.stdout), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tID\tNAME\tSTEPS\tDETAILS")
	for _, m := range ws.engine.List() {
		_, _ = fmt.Fprintf(tw, "macro\t%d\t%s\t%d\t%s\n", m.ID, m.Name, len(m.Actions), macroFlags(m))
	}
	for _, cb := range ws.engine.Combos() {
		state := "enabled"
		if !cb.Enabled {
			state = "disabled"
		}
		_, _ = fmt.Fprintf(tw, "combo\t%d\t%s\t%d\t%s %s\n", cb.ID, cb.Name, len(cb.Actions), cb.Trigger.Kind, state)
	}
	return tw.Flush()
}

func macroFlags(m macro.Macro) string {
	var f []string
	if m.DirectBinding {
		f = append(f, fmt.Sprintf("triggers=%d", len(m.Triggers)))
	}
	if m.Looping {
		f = append(f, "loop")
	}
	if m.BlockKeys {
		f = append(f, "block")
	}
	if m.Speed != 0 && m.Speed != 1 {
		f = append(f, "speed="+strconv.FormatFloat(m.Speed, 'g', 3, 64))
	}
	f = append(f, fmt.Sprintf("played=%d", m.ExecutionCount))
	return strings.Join(f, " ")
}

type MacroExport struct {
	ProfileOption `embed:""`
	Output        string `help:"Destination file (defaults to stdout)" short:"o" type:"path"`

	stdout io.Writer
}

func (c *MacroExport) Run(logger *slog.Logger) error {
	ws, _, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	data := strings.Join(ws.engine.Export(), "\n") + "\n"
	if c.Output == "" {
		_, err := io.WriteString(writerOr(c.stdout), data)
		return err
	}
	return os.WriteFile(c.Output, []byte(data), 0o644)
}

type MacroImport struct {
	ProfileOption `embed:""`
	File          string `arg:"" help:"Interchange file to import" type:"existingfile"`
	Replace       bool   `help:"Remove existing macros and combos first"`
}

func (c *MacroImport) Run(logger *slog.Logger) error {
	ws, path, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	if c.Replace {
		ws.engine.Clear(0)
	}
	before := len(ws.engine.List()) + len(ws.engine.Combos())
	skipped := ws.engine.Import(lines)
	added := len(ws.engine.List()) + len(ws.engine.Combos()) - before
	logger.Info("imported macros", "added", added, "skipped", len(skipped))
	return ws.save(path)
}

type MacroDelete struct {
	ProfileOption `embed:""`
	Target        string `arg:"" help:"Macro or combo id or name"`
}

func (c *MacroDelete) Run(logger *slog.Logger) error {
	ws, path, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	id, byID := parseID(c.Target)
	deleted := 0
	for _, m := range ws.engine.List() {
		if (byID && m.ID == id) || m.Name == c.Target {
			if ws.engine.Delete(m.ID, 0) {
				deleted++
			}
		}
	}
	for _, cb := range ws.engine.Combos() {
		if (byID && cb.ID == id) || cb.Name == c.Target {
			if ws.engine.DeleteCombo(cb.ID) {
				deleted++
			}
		}
	}
	if deleted == 0 {
		return fmt.Errorf("no macro or combo matches %q", c.Target)
	}
	logger.Info("deleted", "target", c.Target, "count", deleted)
	return ws.save(path)
}

func parseID(s string) (macro.ID, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return macro.ID(n), true
}

func loadWorkspace(o ProfileOption, logger *slog.Logger) (*workspace, string, error) {
	path, err := o.path()
	if err != nil {
		return nil, "", err
	}
	ws := newWorkspace(logger)
	if err := ws.load(path, 0, logger); err != nil {
		return nil, "", err
	}
	return ws, path, nil
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
