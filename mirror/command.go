package mirror

import (
	"context"
	"io"
	"os"
	"os/exec"

	"mvdan.cc/sh/shell"

	"github.com/srlehn/cellmatrix/internal/errors"
)

// Process is a mirror application running as child process. Its stdin
// carries events, its stdout the display stream.
type Process struct {
	cmd     *exec.Cmd
	Events  io.WriteCloser
	Display io.ReadCloser
}

// Command splits cmdline with shell quoting rules, expanding environment
// variables, and starts the process. Stderr of the child goes to stderr; a
// nil stderr discards it.
func Command(ctx context.Context, cmdline string, stderr io.Writer) (*Process, error) {
	args, err := shell.Fields(cmdline, os.Getenv)
	if err != nil {
		return nil, errors.WrapPrefix(err, `command line`, 0)
	}
	if len(args) == 0 {
		return nil, errors.New(`empty command line`)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = stderr
	events, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.New(err)
	}
	display, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.New(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.New(err)
	}
	return &Process{cmd: cmd, Events: events, Display: display}, nil
}

// Relay returns a relay between the process and a local device.
func (p *Process) Relay(opts ...RelayOption) *Relay {
	return NewRelay(p.Display, p.Events, opts...)
}

// Args is the split command line.
func (p *Process) Args() []string { return p.cmd.Args }

// Wait closes the event stream and waits for the process to exit.
func (p *Process) Wait() error {
	_ = p.Events.Close()
	if err := p.cmd.Wait(); err != nil {
		return errors.New(err)
	}
	return nil
}
