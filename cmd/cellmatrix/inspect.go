package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/mirror"
)

func init() {
	inspectCmd.Flags().BoolVarP(&verboseFlag, `verbose`, `v`, false, `list the messages of every frame`)
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   inspectCmdStr + ` <recording>`,
	Short: `summarize a recorded display stream`,
	Long:  `summarize a display stream recorded with "run --record" frame by frame`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(inspectFunc(args[0]))
	},
}

var (
	inspectCmdStr = `inspect`
	verboseFlag   bool
)

// frame collects the messages up to and including a dispatch.
type frame struct {
	messages   []mirror.Message
	dispatched bool
}

func (f frame) count(k mirror.Kind) int {
	var n int
	for _, m := range f.messages {
		if m.Kind == k {
			n++
		}
	}
	return n
}

// cells is the number of transmitted cells.
func (f frame) cells() int {
	var n int
	for _, m := range f.messages {
		if m.Kind == mirror.KindCells {
			n += len(m.Cells)
		}
	}
	return n
}

// title is the last reported frame title.
func (f frame) title() string {
	var t string
	for _, m := range f.messages {
		if m.Kind == mirror.KindFrameList && len(m.Titles) > 0 {
			t = strings.Join(m.Titles, ` | `)
		}
	}
	return t
}

func inspectFunc(path string) func(*env) error {
	return func(e *env) error {
		f, err := os.Open(path)
		if err != nil {
			return errors.New(err)
		}
		defer f.Close()
		frames, err := readFrames(f)
		if err != nil {
			return err
		}
		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
		renderFrames(os.Stdout, frames, width, verboseFlag)
		return nil
	}
}

func readFrames(r io.Reader) ([]frame, error) {
	dec := mirror.NewDecoder(r)
	var frames []frame
	var cur frame
	for {
		m, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frames, errors.WrapPrefix(err, `frame `+strconv.Itoa(len(frames)+1), 0)
		}
		cur.messages = append(cur.messages, m)
		if m.Kind == mirror.KindDispatch {
			cur.dispatched = true
			frames = append(frames, cur)
			cur = frame{}
		}
	}
	if len(cur.messages) > 0 {
		frames = append(frames, cur)
	}
	return frames, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true).PaddingRight(2)
	numberStyle = lipgloss.NewStyle().Align(lipgloss.Right).PaddingRight(2)
	textStyle   = lipgloss.NewStyle().PaddingRight(2)
	detailStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
)

func renderFrames(w io.Writer, frames []frame, width int, verbose bool) {
	headers := []string{`frame`, `msgs`, `cells`, `repl`, `def`, `img`, `sync`, `title`}
	rows := make([][]string, 0, len(frames))
	for i, f := range frames {
		index := strconv.Itoa(i + 1)
		if !f.dispatched {
			index += `*`
		}
		rows = append(rows, []string{
			index,
			strconv.Itoa(len(f.messages)),
			strconv.Itoa(f.cells()),
			strconv.Itoa(f.count(mirror.KindReplicate)),
			strconv.Itoa(f.count(mirror.KindDefine)),
			strconv.Itoa(f.count(mirror.KindIntegrate)),
			strconv.Itoa(f.count(mirror.KindSynchronize)),
			f.title(),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
		for _, r := range rows {
			widths[i] = max(widths[i], lipgloss.Width(r[i]))
		}
	}
	// the title takes what is left of the line
	used := 0
	for _, wd := range widths[:len(widths)-1] {
		used += wd + 2
	}
	titleWidth := max(width-used, len(headers[len(headers)-1]))
	widths[len(widths)-1] = titleWidth

	line := func(cells []string, header bool) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			st := numberStyle
			switch {
			case header:
				st = headerStyle
			case i == len(cells)-1:
				st = textStyle
				c = truncate.StringWithTail(c, uint(titleWidth), `...`)
			}
			parts[i] = st.Width(widths[i] + 2).Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	fmt.Fprintln(w, line(headers, true))
	for i, r := range rows {
		fmt.Fprintln(w, line(r, false))
		if !verbose {
			continue
		}
		msgs := make([]string, 0, len(frames[i].messages))
		for _, m := range frames[i].messages {
			msgs = append(msgs, m.String())
		}
		fmt.Fprintln(w, detailStyle.Render(wordwrap.String(strings.Join(msgs, `; `), max(width-4, 20))))
	}
	fmt.Fprintf(w, "%d frames\n", len(frames))
}
