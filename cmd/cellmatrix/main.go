package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/srlehn/cellmatrix/internal/config"
	"github.com/srlehn/cellmatrix/internal/errors"
	"github.com/srlehn/cellmatrix/internal/logx"
)

var rootCmd = &cobra.Command{
	Use:              filepath.Base(os.Args[0]),
	Short:            "cellmatrix cell matrix terminal display",
	Long:             "cellmatrix runs terminal applications on a cell matrix display and inspects recorded display streams",
	SilenceUsage:     true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&debugFlag, `debug`, `d`, false, `debug errors`)
	pf.BoolVarP(&silentFlag, `silent`, `s`, false, `silence errors`)
	pf.StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
	pf.StringVarP(&configFlag, `config`, `c`, ``, `configuration file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	debugFlag   bool
	silentFlag  bool
	logFileFlag string
	configFlag  string
)

// env is what every subcommand starts with.
type env struct {
	logger *slog.Logger
	cfg    config.Config
	// cfgPath is the loaded configuration file, empty for defaults only
	cfgPath string
}

func (e *env) Logger() *slog.Logger { return e.logger }

func newEnv() (*env, io.Closer, error) {
	e := &env{logger: logx.Discard()}
	var closer io.Closer
	if len(logFileFlag) > 0 {
		lvl := slog.LevelInfo
		if debugFlag {
			lvl = slog.LevelDebug
		}
		h, c, err := logx.FileHandler(logFileFlag, lvl)
		if err != nil {
			return nil, nil, err
		}
		e.logger = slog.New(h)
		closer = c
	}
	e.cfgPath = configFlag
	if e.cfgPath == `` {
		e.cfgPath, _ = config.Locate()
	}
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, err
	}
	e.cfg = cfg
	logx.Debug(`configuration loaded`, e, `path`, e.cfgPath)
	return e, closer, nil
}

// run executes fn and exits. Panics are recovered so that hosts restore
// the terminal on their way out.
func run(fn func(e *env) error) {
	var exitCode int
	var logCloser io.Closer
	defer func() {
		if r := recover(); r != nil {
			exitCode = 1
			if !silentFlag {
				if stackFramer, ok := r.(interface{ ErrorStack() string }); ok {
					fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
				} else {
					fmt.Fprintln(os.Stderr, r)
					debug.PrintStack()
				}
			}
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
		os.Exit(exitCode)
	}()
	var e *env
	var err error
	if fn == nil {
		err = errors.NilParam()
	} else if e, logCloser, err = newEnv(); err == nil {
		err = fn(e)
	}
	if err != nil {
		if e != nil {
			logx.IsErr(err, e, slog.LevelError)
		}
		exitCode = 1
		if !silentFlag {
			if stackFramer, ok := err.(interface{ ErrorStack() string }); debugFlag && ok {
				fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
			} else {
				fmt.Fprintln(os.Stderr, "\n"+err.Error())
			}
		}
	}
}
