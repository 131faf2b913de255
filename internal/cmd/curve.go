package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Alia5/kb2pad/curve"
	"github.com/Alia5/kb2pad/hid"
)

const barWidth = 40

// CurveCommand prints the response curve as a table.
type CurveCommand struct {
	ProfileOption `embed:""`
	Key           string `help:"Show the curve this key uses (name or HID code) instead of the global one"`
	Points        int    `help:"Number of sample intervals" default:"20"`

	stdout io.Writer
}

func (c *CurveCommand) Run(logger *slog.Logger) error {
	ws, _, err := loadWorkspace(c.ProfileOption, logger)
	if err != nil {
		return err
	}

	label := "global"
	params := ws.settings.Global.Params()
	if c.Key != "" {
		k, err := hid.ParseCode(c.Key)
		if err != nil {
			return err
		}
		label = k.String()
		params = ws.settings.Keys.Effective(k, ws.settings.Global)
	}

	return printCurve(writerOr(c.stdout), label, params, c.Points)
}

func printCurve(w io.Writer, label string, p curve.Params, n int) error {
	_, _ = fmt.Fprintf(w, "curve %s: mode=%s deadzone=%.3f-%.3f output=%.3f-%.3f invert=%t\n",
		label, p.Mode, p.Low, p.High, p.AntiDeadzone, p.OutputCap, p.Invert)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "input\toutput\t")
	for _, pt := range curve.Sample(p, n) {
		bar := strings.Repeat("#", int(pt.Y*barWidth+0.5))
		_, _ = fmt.Fprintf(tw, "%.3f\t%.3f\t%s\n", pt.X, pt.Y, bar)
	}
	return tw.Flush()
}
