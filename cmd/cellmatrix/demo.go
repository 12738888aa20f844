package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/srlehn/cellmatrix/demo"
	"github.com/srlehn/cellmatrix/mirror"
)

func init() {
	addHostFlags(demoCmd)
	demoCmd.Flags().BoolVar(&mirrorFlag, `mirror`, false, `speak the mirror protocol on stdin and stdout`)
	demoCmd.Flags().StringVar(&imageFlag, `image`, ``, `image shown in the header`)
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   demoCmdStr,
	Short: `run the demo application`,
	Long:  `run the demo application on a local host or as mirror application`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(demoFunc)
	},
}

var (
	demoCmdStr = `demo`
	mirrorFlag bool
	imageFlag  string
)

func demoFunc(e *env) error {
	app := demo.New(demo.WithLogger(e.logger), demo.WithImage(imageFlag))
	if mirrorFlag {
		return mirror.Serve(os.Stdin, os.Stdout, app.Run, e.logger)
	}
	h, err := openHost(e)
	if err != nil {
		return err
	}
	return h.Run(app.Run)
}
