package venv

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/maahl/pg-venv/cli/pg/internal/execx"
	"github.com/maahl/pg-venv/cli/pg/internal/paths"
)

// FetchSource replaces the source tree of name with a copy of PG_DIR's head.
// Every step is fatal on failure.
func (m *Manager) FetchSource(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	if _, err := m.Config.RequireSourceDir(); err != nil {
		return err
	}
	return m.source().Fetch(ctx, m.Layout.Src(name), name)
}

// HasPrefixOption reports whether configure options already carry --prefix.
func HasPrefixOption(opts string) bool {
	for _, f := range strings.Fields(opts) {
		if f == "--prefix" || strings.HasPrefix(f, "--prefix=") {
			return true
		}
	}
	return false
}

// Configure runs the configure script of name's source tree, installing into
// the pg_venv root unless PG_CONFIGURE_OPTIONS chose a prefix itself. extra
// is appended verbatim.
func (m *Manager) Configure(ctx context.Context, name string, extra []string, exitOnFail bool) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	opts := strings.TrimSpace(m.Config.ConfigureOptions)
	parts := []string{"./configure", "--quiet"}
	if opts != "" {
		parts = append(parts, opts)
	}
	userPrefix := HasPrefixOption(opts)
	if !userPrefix {
		parts = append(parts, "--prefix", q(m.Layout.Root(name)))
	}
	parts = append(parts, extra...)
	line := "cd " + q(m.Layout.Src(name)) + " && " + strings.Join(parts, " ")
	err := m.run(ctx, execx.Cmd{Line: line, Description: "Running configure script", ExitOnFail: exitOnFail})
	if userPrefix {
		m.UI.Warning("PG_CONFIGURE_OPTIONS contains option --prefix, so " + name + " will not be installed in " + m.Layout.Root(name) + ".")
	}
	return err
}

func (m *Manager) srcMake(name, target string, args []string) string {
	parts := []string{"make", "-s"}
	if target != "" {
		parts = append(parts, target)
	}
	mk := strings.Join(append(parts, args...), " ")
	return "cd " + q(m.Layout.Src(name)) + " && " + mk + " && cd contrib && " + mk
}

// Make compiles the server and contrib with PG_MAKE_OPTIONS followed by extra.
func (m *Manager) Make(ctx context.Context, name string, extra []string, exitOnFail bool) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	args := append(strings.Fields(m.Config.MakeOptions), extra...)
	line := m.srcMake(name, "", args)
	return m.run(ctx, execx.Cmd{Line: line, Description: "Compiling PostgreSQL", Quiet: true, ExitOnFail: exitOnFail})
}

func (m *Manager) Install(ctx context.Context, name string, exitOnFail bool) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	line := m.srcMake(name, "install", nil)
	return m.run(ctx, execx.Cmd{Line: line, Description: "Installing PostgreSQL", Quiet: true, ExitOnFail: exitOnFail})
}

func (m *Manager) MakeCheck(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	line := "cd " + q(m.Layout.Src(name)) + " && make -s check"
	return m.run(ctx, execx.Cmd{Line: line, Description: "Running make check", Quiet: true})
}

func (m *Manager) MakeClean(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	line := "cd " + q(m.Layout.Src(name)) + " && make -s clean"
	return m.run(ctx, execx.Cmd{Line: line, Description: "Running make clean"})
}

func (m *Manager) InitDB(ctx context.Context, name string, exitOnFail bool) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	line := q(m.Layout.Tool(name, "initdb")) + " -D " + q(m.Layout.Data(name))
	return m.run(ctx, execx.Cmd{Line: line, Description: "Initializing database", Quiet: true, ExitOnFail: exitOnFail})
}

// CreateDB creates the default database (named after the OS user) on the
// running server. It is always fatal on failure.
func (m *Manager) CreateDB(ctx context.Context, name string) error {
	port, err := paths.Port(name)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s -p %d", q(m.Layout.Tool(name, "createdb")), port)
	return m.run(ctx, execx.Cmd{Line: line, Description: "Creating a database", ExitOnFail: true})
}

// CreateOptions tunes Create. Zero Jobs means one make job per CPU.
type CreateOptions struct {
	Jobs int
}

// Create builds a new pg_venv from scratch and leaves its server running.
// Steps are fatal on failure and nothing is rolled back.
func (m *Manager) Create(ctx context.Context, name string, opts CreateOptions) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	steps := []func() error{
		func() error { return m.FetchSource(ctx, name) },
		func() error { return m.Configure(ctx, name, nil, true) },
		func() error { return m.Make(ctx, name, []string{fmt.Sprintf("-j %d", jobs)}, true) },
		func() error { return m.Install(ctx, name, true) },
		func() error { return m.InitDB(ctx, name, true) },
		func() error { return m.Start(ctx, name, true) },
		func() error { return m.CreateDB(ctx, name) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	m.UI.Success(fmt.Sprintf("pg_virtualenv %s created. Run `pg workon %s` to use it.", name, name))
	return nil
}
