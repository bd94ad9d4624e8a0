package cmdregistry

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/ui"
	"github.com/maahl/pg-venv/cli/pg/internal/venv"
)

// Context carries the parsed invocation and the handles a handler needs.
type Context struct {
	Ctx    context.Context
	Action Action
	// Args holds everything after the action token, flags included.
	Args    []string
	Config  config.Config
	Manager *venv.Manager
	UI      *ui.Printer
	// Stdout receives machine-consumed output (workon, get_shell_function).
	Stdout io.Writer
	// Env is the calling shell's environment.
	Env    map[string]string
	Exe    string
	DryRun bool
}

// Flags returns a flag set for the action that reports errors instead of
// printing them.
func (c *Context) Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(c.Action.String(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// Positional parses Args with fs and checks the remaining arguments against
// the action's arity. A nil fs takes Args verbatim.
func (c *Context) Positional(fs *pflag.FlagSet) ([]string, error) {
	args := c.Args
	if fs != nil {
		if err := fs.Parse(c.Args); err != nil {
			return nil, &UsageError{Action: c.Action.String(), Err: err}
		}
		args = fs.Args()
	}
	if err := c.Action.Spec().CheckArgs(len(args)); err != nil {
		return nil, err
	}
	return args, nil
}

// Venv returns the pg_venv named by the optional first argument, defaulting
// to PG_VENV.
func (c *Context) Venv(args []string) (string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	return c.Config.OrCurrent(name)
}

// ExistingVenv is Venv restricted to pg_venvs present on disk.
func (c *Context) ExistingVenv(args []string) (string, error) {
	name, err := c.Venv(args)
	if err != nil {
		return "", err
	}
	if !c.Manager.Layout.Exists(name) {
		return "", fmt.Errorf("pg_venv %s does not exist", name)
	}
	return name, nil
}

// Handler executes an action given the shared context.
type Handler func(*Context) error

// Registry maps actions to handlers.
type Registry struct {
	handlers map[Action]Handler
}

func New() *Registry {
	return &Registry{handlers: make(map[Action]Handler)}
}

// Register sets the handler for a. It panics if a already has one.
func (r *Registry) Register(a Action, h Handler) {
	if _, exists := r.handlers[a]; exists {
		panic(fmt.Sprintf("action %s already registered", a))
	}
	r.handlers[a] = h
}

// Lookup returns the handler and whether it exists.
func (r *Registry) Lookup(a Action) (Handler, bool) {
	h, ok := r.handlers[a]
	return h, ok
}

// Missing lists the actions without a handler.
func (r *Registry) Missing() []Action {
	var out []Action
	for _, a := range Actions() {
		if _, ok := r.handlers[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}
