package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
	"github.com/srlehn/cellmatrix/mirror"
)

func init() {
	addHostFlags(runCmd)
	runCmd.Flags().StringVar(&recordFlag, `record`, ``, `copy the display stream to a file`)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   runCmdStr + ` [flags] -- <command line>`,
	Short: `run a mirror application on a local host`,
	Long:  `run a mirror application as child process and relay its display onto a local host`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(runFunc(args))
	},
}

var (
	runCmdStr  = `run`
	recordFlag string
)

func runFunc(args []string) func(*env) error {
	return func(e *env) error {
		cmdline := args[0]
		if len(args) > 1 {
			cmdline = quoteArgs(args)
		}
		h, err := openHost(e)
		if err != nil {
			return err
		}
		defer h.Close()

		var opts []mirror.RelayOption
		opts = append(opts, mirror.WithLogger(e.logger))
		if len(recordFlag) > 0 {
			rec, err := os.Create(recordFlag)
			if err != nil {
				return errors.New(err)
			}
			defer rec.Close()
			opts = append(opts, mirror.WithRecorder(rec))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		// the child must not write into a terminal owned by the host
		proc, err := mirror.Command(ctx, cmdline, nil)
		if err != nil {
			return err
		}
		logx.Info(`mirror application started`, e, `args`, proc.Args())
		errRun := h.Run(proc.Relay(opts...).Run)
		return errors.Join(errRun, proc.Wait())
	}
}

// quoteArgs joins args into a command line that splits back into args.
func quoteArgs(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		if a != `` && !strings.ContainsAny(a, " \t\n'\"\\$`|&;<>()*?[]{}~#!") {
			quoted = append(quoted, a)
			continue
		}
		quoted = append(quoted, `'`+strings.ReplaceAll(a, `'`, `'\''`)+`'`)
	}
	return strings.Join(quoted, ` `)
}
