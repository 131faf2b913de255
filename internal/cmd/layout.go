package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
)

// LayoutCommand groups on-screen layout preset subcommands.
type LayoutCommand struct {
	List     LayoutList     `cmd:"" help:"List layout presets"`
	Add      LayoutAdd      `cmd:"" help:"Add a preset, copied from an existing one"`
	Delete   LayoutDelete   `cmd:"" help:"Delete a preset"`
	Rename   LayoutRename   `cmd:"" help:"Rename a preset"`
	Activate LayoutActivate `cmd:"" help:"Make a preset the active one"`
}

type LayoutList struct {
	ProfileOption `embed:""`

	stdout io.Writer
}

func (c *LayoutList) Run(logger *slog.Logger) error {
	ws, _, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	active := ws.layouts.Active().Name
	tw := tabwriter.NewWriter(writerOr(c.stdout), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ACTIVE\tNAME\tKEYS\tSPACING")
	for _, p := range ws.layouts.Presets() {
		mark := ""
		if p.Name == active {
			mark = "*"
		}
		spacing := "free"
		if p.UniformSpacing {
			spacing = fmt.Sprintf("uniform gap=%d", p.UniformGap)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", mark, p.Name, len(p.Keys), spacing)
	}
	return tw.Flush()
}

type LayoutAdd struct {
	ProfileOption `embed:""`
	Name          string `arg:"" help:"Name of the new preset"`
	From          string `help:"Preset to copy; defaults to the active one"`
	Activate      bool   `help:"Activate the new preset"`
}

func (c *LayoutAdd) Run(logger *slog.Logger) error {
	ws, path, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	src := ws.layouts.Active()
	if c.From != "" {
		p, ok := ws.layouts.Get(c.From)
		if !ok {
			return fmt.Errorf("no layout named %q", c.From)
		}
		src = p
	}
	p := src.Clone()
	p.Name = c.Name
	if !ws.layouts.Add(p) {
		return fmt.Errorf("cannot add layout %q: name empty or taken", c.Name)
	}
	if c.Activate {
		ws.layouts.Activate(c.Name)
	}
	return ws.save(path)
}

type LayoutDelete struct {
	ProfileOption `embed:""`
	Name          string `arg:"" help:"Preset to delete"`
}

func (c *LayoutDelete) Run(logger *slog.Logger) error {
	ws, path, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	if !ws.layouts.Delete(c.Name) {
		return fmt.Errorf("cannot delete layout %q: unknown or the last one", c.Name)
	}
	return ws.save(path)
}

type LayoutRename struct {
	ProfileOption `embed:""`
	From          string `arg:"" help:"Current name"`
	To            string `arg:"" help:"New name"`
}

func (c *LayoutRename) Run(logger *slog.Logger) error {
	ws, path, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	if !ws.layouts.Rename(c.From, c.To) {
		return fmt.Errorf("cannot rename layout %q to %q", c.From, c.To)
	}
	return ws.save(path)
}

type LayoutActivate struct {
	ProfileOption `embed:""`
	Name          string `arg:"" help:"Preset to activate"`
}

func (c *LayoutActivate) Run(logger *slog.Logger) error {
	ws, path, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}
	if !ws.layouts.Activate(c.Name) {
		return fmt.Errorf("no layout named %q", c.Name)
	}
	return ws.save(path)
}
