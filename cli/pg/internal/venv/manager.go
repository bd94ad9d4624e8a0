// Package venv implements the lifecycle of a pg_venv: fetching and building
// the source, initialising and running the server, listing and removing.
//
// Every external program is reached through an execx.Runner with a
// /bin/sh command line, so a dry run prints exactly what a real run does.
package venv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/execx"
	"github.com/maahl/pg-venv/cli/pg/internal/netutil"
	"github.com/maahl/pg-venv/cli/pg/internal/paths"
	"github.com/maahl/pg-venv/cli/pg/internal/pgclient"
	"github.com/maahl/pg-venv/cli/pg/internal/ui"
	"github.com/maahl/pg-venv/cli/pg/internal/worktrees"
)

var (
	// ErrNotConfirmed is returned when the typed confirmation does not match
	// the pg_venv name. Nothing was deleted.
	ErrNotConfirmed = errors.New("deletion not confirmed")
	ErrNotExist     = errors.New("This virtualenv does not exist.")
)

type Manager struct {
	Layout paths.Layout
	Config config.Config
	Runner execx.Runner
	UI     *ui.Printer
	// In provides confirmation answers.
	In  io.Reader
	Out io.Writer
	// DryRun skips filesystem changes made from Go; the Runner is expected
	// to be a dry-run one as well.
	DryRun bool

	// PortInUse and Ping default to netutil.PortInUse and pgclient.Ping.
	PortInUse func(port int) bool
	Ping      func(ctx context.Context, port int) (pgclient.Info, error)

	in *bufio.Reader
}

// New returns a Manager reading confirmations from stdin.
func New(cfg config.Config, r execx.Runner, p *ui.Printer) *Manager {
	return &Manager{
		Layout: paths.Layout{Home: cfg.Home},
		Config: cfg,
		Runner: r,
		UI:     p,
		In:     os.Stdin,
		Out:    p.Writer(),
	}
}

func q(s string) string { return execx.Quote(s) }

func (m *Manager) source() worktrees.Source {
	return worktrees.Source{Repo: m.Config.SourceDir, Mode: m.Config.SourceMode, Runner: m.Runner}
}

func (m *Manager) portInUse(port int) bool {
	if m.PortInUse != nil {
		return m.PortInUse(port)
	}
	return netutil.PortInUse(port)
}

func (m *Manager) ping(ctx context.Context, port int) (pgclient.Info, error) {
	if m.Ping != nil {
		return m.Ping(ctx, port)
	}
	return pgclient.Ping(ctx, port)
}

// run executes one reported step and converts its result to an error.
func (m *Manager) run(ctx context.Context, c execx.Cmd) error {
	res := m.Runner.Run(ctx, c)
	if err := res.AsError(c.Line); err != nil {
		log.WithFields(log.Fields{"step": c.Description, "code": res.Code}).Debug("step failed")
		return err
	}
	return nil
}

// fsStep performs a filesystem change from Go, reported like a command.
// In dry-run mode the equivalent shell line goes to the Runner instead.
func (m *Manager) fsStep(ctx context.Context, desc, line string, fn func() error) error {
	if m.DryRun {
		return m.Runner.Run(ctx, execx.Cmd{Line: line, Description: desc, Silent: true}).AsError(line)
	}
	m.UI.Progress(desc)
	err := fn()
	m.UI.Done(err == nil, line)
	if err != nil {
		return fmt.Errorf("%s: %w", desc, err)
	}
	return nil
}

// confirm asks the user to type name and reports whether they did.
func (m *Manager) confirm(prompt, name string) bool {
	m.UI.Warning(prompt)
	if m.in == nil {
		in := m.In
		if in == nil {
			in = os.Stdin
		}
		m.in = bufio.NewReader(in)
	}
	answer, err := m.in.ReadString('\n')
	if err != nil && err != io.EOF {
		log.WithError(err).Warn("reading confirmation")
	}
	answer = strings.TrimRight(answer, "\r\n")
	if answer != name {
		m.UI.Error("The data won't be deleted.")
		return false
	}
	return true
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
