package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"

	"github.com/srlehn/cellmatrix/control"
)

func init() {
	rootCmd.AddCommand(keysCmd)
}

var keysCmd = &cobra.Command{
	Use:   keysCmdStr,
	Short: `list key identifiers and instructions`,
	Long:  `list key identifiers, function keys, screen cursor buttons and application instructions with their dispatch codes`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(func(*env) error { return listKeys(os.Stdout) })
	},
}

var keysCmdStr = `keys`

func listKeys(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tDISPATCH\tDESCRIPTION")
	for _, k := range control.KeyIdentifiers() {
		st := control.Status{Dispatch: int32(k)}
		fmt.Fprintf(tw, "key\t%s\t%#x\t%s\n", strcase.ToKebab(k.Name()), int32(k), control.Describe(st, ``))
	}
	for n := 1; n <= 12; n++ {
		st := control.Status{Dispatch: control.FunctionKey(n)}
		fmt.Fprintf(tw, "function\tf%d\t%d\t%s\n", n, st.Dispatch, control.Describe(st, ``))
	}
	for n := 1; n <= 3; n++ {
		st := control.Status{Dispatch: control.CursorKey(n)}
		fmt.Fprintf(tw, "cursor\tbutton-%d\t%d\t%s\n", n, st.Dispatch, control.Describe(st, ``))
	}
	for _, i := range control.Instructions() {
		st := control.Status{Dispatch: control.InstructionKey(i)}
		fmt.Fprintf(tw, "instruction\t%s\t%d\t%s\n", strcase.ToKebab(i.Name()), st.Dispatch, control.Describe(st, ``))
	}
	return tw.Flush()
}
