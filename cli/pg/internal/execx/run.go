package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/maahl/pg-venv/cli/pg/internal/ui"
)

// FatalCode is the status the whole tool exits with when an exit-on-fail
// command fails.
const FatalCode = 255

// Cmd describes one shell command line and how to report it.
type Cmd struct {
	Line        string
	Description string
	// Quiet captures the command output instead of streaming it. Captured
	// stderr is still printed when the command fails, unless NoErrorOutput.
	Quiet         bool
	NoErrorOutput bool
	// Silent suppresses the "description... OK" progress line.
	Silent     bool
	ExitOnFail bool
}

type Result struct {
	Code   int
	Err    error
	Stderr string
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool { return r.Code == 0 }

// AsError returns nil on success and a *CommandError otherwise.
func (r Result) AsError(line string) error {
	if r.OK() {
		return nil
	}
	return &CommandError{Line: line, Code: r.Code, Err: r.Err}
}

// CommandError reports a command that exited non-zero.
type CommandError struct {
	Line string
	Code int
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s", e.Code, e.Line)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes shell command lines. Shell is the real implementation;
// tests and --dry-run substitute their own.
type Runner interface {
	Run(ctx context.Context, c Cmd) Result
	// Output runs line without any reporting and returns its stdout.
	Output(ctx context.Context, line string) (string, Result)
}

// Shell runs command lines through /bin/sh.
type Shell struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	UI     *ui.Printer
	// Verbose prints each command line before it runs.
	Verbose bool
	// Exit terminates the process; it defaults to os.Exit.
	Exit func(code int)
}

// NewShell returns a Shell bound to the process standard streams.
func NewShell(p *ui.Printer, verbose bool) *Shell {
	return &Shell{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		UI:      p,
		Verbose: verbose,
		Exit:    os.Exit,
	}
}

func (s *Shell) Run(ctx context.Context, c Cmd) Result {
	if s.Verbose {
		s.UI.Log("executing `" + c.Line + "`")
	}
	if !c.Silent {
		s.UI.Progress(c.Description)
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", c.Line)
	var stderr bytes.Buffer
	if c.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = &stderr
	} else {
		cmd.Stdin = s.Stdin
		cmd.Stdout = s.Stdout
		cmd.Stderr = s.Stderr
	}
	res := result(ctx, cmd.Run())
	res.Stderr = stderr.String()
	log.WithFields(log.Fields{"cmd": c.Line, "code": res.Code}).Debug("command finished")

	if !res.OK() && c.Quiet && !c.NoErrorOutput {
		if !c.Silent {
			fmt.Fprintln(s.UI.Writer())
		}
		fmt.Fprintln(s.Stderr, strings.TrimRight(res.Stderr, "\n"))
	}
	if !c.Silent {
		s.UI.Done(res.OK(), c.Line)
	}
	if c.ExitOnFail && !res.OK() {
		s.exit(FatalCode)
	}
	return res
}

func (s *Shell) Output(ctx context.Context, line string) (string, Result) {
	if s.Verbose {
		s.UI.Log("executing `" + line + "`")
	}
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", line)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	res := result(ctx, err)
	res.Stderr = stderr.String()
	log.WithFields(log.Fields{"cmd": line, "code": res.Code}).Debug("command finished")
	return string(out), res
}

func (s *Shell) exit(code int) {
	if s.Exit != nil {
		s.Exit(code)
		return
	}
	os.Exit(code)
}

func result(ctx context.Context, err error) Result {
	code := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			code = ee.ExitCode()
			if code < 0 {
				// killed by a signal
				code = 1
			}
		} else if ctx.Err() == context.DeadlineExceeded {
			code = 124
		} else {
			code = 1
		}
	}
	return Result{Code: code, Err: err}
}
