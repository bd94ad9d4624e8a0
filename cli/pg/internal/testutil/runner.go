package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/maahl/pg-venv/cli/pg/internal/execx"
)

type scripted struct {
	substr string
	out    string
	res    execx.Result
}

// FakeRunner records command lines instead of running them. Results are
// scripted by substring; the first matching rule wins and unmatched lines
// succeed with no output.
type FakeRunner struct {
	mu    sync.Mutex
	Cmds  []execx.Cmd
	Lines []string
	rules []scripted
}

// On makes every line containing substr return res.
func (f *FakeRunner) On(substr string, res execx.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, scripted{substr: substr, res: res})
	return f
}

// OnOutput makes Output return out for lines containing substr.
func (f *FakeRunner) OnOutput(substr, out string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, scripted{substr: substr, out: out})
	return f
}

// Fail makes every line containing substr exit with code.
func (f *FakeRunner) Fail(substr string, code int) *FakeRunner {
	return f.On(substr, execx.Result{Code: code})
}

func (f *FakeRunner) Run(_ context.Context, c execx.Cmd) execx.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cmds = append(f.Cmds, c)
	f.Lines = append(f.Lines, c.Line)
	_, res := f.match(c.Line)
	return res
}

func (f *FakeRunner) Output(_ context.Context, line string) (string, execx.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lines = append(f.Lines, line)
	return f.match(line)
}

func (f *FakeRunner) match(line string) (string, execx.Result) {
	for _, r := range f.rules {
		if strings.Contains(line, r.substr) {
			return r.out, r.res
		}
	}
	return "", execx.Result{}
}

// Index returns the position of the first recorded line containing substr,
// or -1.
func (f *FakeRunner) Index(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.Lines {
		if strings.Contains(l, substr) {
			return i
		}
	}
	return -1
}

// Ran reports whether any recorded line contains substr.
func (f *FakeRunner) Ran(substr string) bool { return f.Index(substr) >= 0 }

// Joined returns the recorded lines separated by newlines, for failure output.
func (f *FakeRunner) Joined() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.Lines, "\n")
}
