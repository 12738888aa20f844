package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/srlehn/cellmatrix/device"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/matrix"
	"github.com/srlehn/cellmatrix/mirror"
)

func init() {
	replayCmd.Flags().Uint16Var(&linesFlag, `lines`, 24, `screen lines`)
	replayCmd.Flags().Uint16Var(&spanFlag, `span`, 80, `screen cells per line`)
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   replayCmdStr + ` <recording>`,
	Short: `print the final screen of a recorded display stream`,
	Long:  `apply a recorded display stream to a screen and print the resulting cell matrix as colored text`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(replayFunc(args[0]))
	},
}

var (
	replayCmdStr = `replay`
	linesFlag    uint16
	spanFlag     uint16
)

func replayFunc(path string) func(*env) error {
	return func(e *env) error {
		f, err := os.Open(path)
		if err != nil {
			return errors.New(err)
		}
		defer f.Close()
		d, err := replay(f, linesFlag, spanFlag, e)
		if err != nil {
			return err
		}
		printScreen(termenv.NewOutput(os.Stdout), d)
		return nil
	}
}

// screenDevice only keeps the cell matrix.
type screenDevice struct {
	*device.Session
	handoff   *device.Handoff
	resources []string
}

var _ device.Device = (*screenDevice)(nil)

func newScreenDevice(lines, span uint16, e *env) *screenDevice {
	ins := matrix.Inscription{StrokeWidth: 1, CellWidth: 1, CellHeight: 1}
	return &screenDevice{
		Session: device.NewSession(matrix.NewParameters(ins, 1, float64(span), float64(lines)), e.logger),
		handoff: device.NewHandoff(),
	}
}

func (d *screenDevice) Post(ctx context.Context, ev device.Event) error {
	return d.handoff.Post(ctx, ev)
}

func (d *screenDevice) TransferEvent() uint16 {
	d.Apply(d.handoff.Take())
	return 1
}

func (d *screenDevice) Integrate(resource string, lines, span uint16) int32 {
	d.resources = append(d.resources, resource)
	return int32(len(d.resources) - 1)
}

func (d *screenDevice) InvalidateCells(matrix.Area)         {}
func (d *screenDevice) ReplicateCells(dst, src matrix.Area) {}
func (d *screenDevice) RenderPixels()                       {}
func (d *screenDevice) DispatchFrame()                      {}
func (d *screenDevice) Synchronize()                        {}
func (d *screenDevice) SynchronizeIO()                      {}
func (d *screenDevice) FrameStatus(current, last uint16)    { d.SetFrameStatus(current, last) }
func (d *screenDevice) FrameList(titles ...string)          { d.SetFrameList(titles...) }

// replay applies the display stream r to a screen of lines x span cells.
func replay(r io.Reader, lines, span uint16, e *env) (*screenDevice, error) {
	if lines == 0 || span == 0 {
		return nil, errors.Errorf(`invalid screen size %dx%d`, lines, span)
	}
	d := newScreenDevice(lines, span, e)
	rl := mirror.NewRelay(r, io.Discard, mirror.WithLogger(e.logger))
	if err := rl.Run(d); err != nil {
		return nil, err
	}
	return d, nil
}

func hexColor(c matrix.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B())
}

// printScreen writes the screen line by line. Zero colors are left to the
// terminal defaults, image tiles are shown as shaded fill.
func printScreen(out *termenv.Output, d *screenDevice) {
	scr := d.Screen()
	area := scr.Area()
	for y := area.TopOffset; int(y) < area.YLimit(); y++ {
		var b strings.Builder
		for x := area.LeftOffset; int(x) < area.XLimit(); x++ {
			b.WriteString(cellString(out, d, scr.Cell(y, x)))
		}
		fmt.Fprintln(out, b.String())
	}
	if title := d.Title(); title != `` {
		fmt.Fprintln(out, out.String(title).Faint().String())
	}
}

func cellString(out *termenv.Output, d *screenDevice, c matrix.Cell) string {
	if t, ok := c.ImageTile(); ok {
		st := out.String("\u2592")
		if t.Fill != 0 {
			st = st.Foreground(out.Color(hexColor(t.Fill)))
		}
		return st.String()
	}
	g, _ := c.Glyph()
	if g.Window > 0 {
		// continuation of a wide glyph
		return ``
	}
	text := ` `
	switch {
	case g.Codepoint >= 0:
		text = string(rune(g.Codepoint))
	case g.Codepoint != device.NoExpression:
		if expr, ok := d.Expressions().Lookup(g.Codepoint); ok {
			text = expr
		}
	}
	if g.Traits.Caps {
		text = strings.Map(unicode.ToUpper, text)
	}
	st := out.String(text)
	if g.Stroke != 0 {
		st = st.Foreground(out.Color(hexColor(g.Stroke)))
	}
	if g.Fill != 0 {
		st = st.Background(out.Color(hexColor(g.Fill)))
	}
	if g.Traits.Bold {
		st = st.Bold()
	}
	if g.Traits.Italic {
		st = st.Italic()
	}
	if g.Traits.Underline != matrix.LineVoid {
		st = st.Underline()
	}
	if g.Traits.Strikethrough != matrix.LineVoid {
		st = st.CrossOut()
	}
	return st.String()
}
