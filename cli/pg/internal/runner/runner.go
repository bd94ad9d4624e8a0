package runner

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/maahl/pg-venv/cli/pg/internal/execx"
)

// DryRun prints command lines instead of running them.
type DryRun struct {
	W io.Writer
}

// NewDryRun returns a DryRun printing to stderr.
func NewDryRun() *DryRun {
	return &DryRun{W: os.Stderr}
}

func (d *DryRun) Run(_ context.Context, c execx.Cmd) execx.Result {
	fmt.Fprintln(d.W, "+ "+c.Line)
	return execx.Result{}
}

func (d *DryRun) Output(_ context.Context, line string) (string, execx.Result) {
	fmt.Fprintln(d.W, "+ "+line)
	return "", execx.Result{}
}
