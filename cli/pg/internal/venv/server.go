package venv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	log "github.com/sirupsen/logrus"

	"github.com/maahl/pg-venv/cli/pg/internal/execx"
	"github.com/maahl/pg-venv/cli/pg/internal/logtail"
	"github.com/maahl/pg-venv/cli/pg/internal/paths"
	"github.com/maahl/pg-venv/cli/pg/internal/pgclient"
)

// IsRunning asks pg_ctl whether the server of name is up. A pg_venv without
// an installed pg_ctl is never running.
func (m *Manager) IsRunning(ctx context.Context, name string) bool {
	if paths.ValidateName(name) != nil {
		return false
	}
	pgctl := m.Layout.PgCtl(name)
	if !isFile(pgctl) {
		return false
	}
	line := q(pgctl) + " status -D " + q(m.Layout.Data(name))
	res := m.Runner.Run(ctx, execx.Cmd{Line: line, Quiet: true, NoErrorOutput: true, Silent: true})
	return res.OK()
}

// Start launches the server on the pg_venv's port and waits for it. Starting
// a running server fails like pg_ctl does.
func (m *Manager) Start(ctx context.Context, name string, exitOnFail bool) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	port, err := paths.Port(name)
	if err != nil {
		return err
	}
	if !m.IsRunning(ctx, name) && m.portInUse(port) {
		m.UI.Warning(fmt.Sprintf("port %d is already in use, the server of %s may fail to start", port, name))
	}
	line := fmt.Sprintf(`%s start -D %s -l %s --core-files --wait -o "-p %d"`,
		q(m.Layout.PgCtl(name)), q(m.Layout.Data(name)), q(m.Layout.Log(name)), port)
	return m.run(ctx, execx.Cmd{Line: line, Description: "Starting PostgreSQL", Quiet: true, ExitOnFail: exitOnFail})
}

// Stop shuts the server down. Stopping a stopped server is reported as a
// failure but is never fatal.
func (m *Manager) Stop(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	line := q(m.Layout.PgCtl(name)) + " stop -D " + q(m.Layout.Data(name))
	return m.run(ctx, execx.Cmd{Line: line, Description: "Stopping PostgreSQL", Quiet: true})
}

// Restart stops the server when it runs, then starts it.
func (m *Manager) Restart(ctx context.Context, name string) error {
	if m.IsRunning(ctx, name) {
		if err := m.Stop(ctx, name); err != nil {
			return err
		}
	}
	return m.Start(ctx, name, false)
}

// Status describes a pg_venv's server as seen from pg_ctl and over SQL.
type Status struct {
	Name    string
	Port    int
	Running bool
	// Server is set when the server answered a query.
	Server  *pgclient.Info
	PingErr error
}

func (m *Manager) Status(ctx context.Context, name string) (Status, error) {
	if err := paths.ValidateName(name); err != nil {
		return Status{}, err
	}
	port, err := paths.Port(name)
	if err != nil {
		return Status{}, err
	}
	if !m.Layout.Exists(name) {
		return Status{}, ErrNotExist
	}
	st := Status{Name: name, Port: port, Running: m.IsRunning(ctx, name)}
	if !st.Running || m.DryRun {
		return st, nil
	}
	info, err := m.ping(ctx, port)
	if err != nil {
		log.WithError(err).WithField("port", port).Debug("ping failed")
		st.PingErr = err
		return st, nil
	}
	st.Server = &info
	return st, nil
}

// PrintStatus reports a Status through the UI.
func (m *Manager) PrintStatus(st Status) {
	if !st.Running {
		m.UI.Log(fmt.Sprintf("%s is not running (port %d)", st.Name, st.Port))
		return
	}
	m.UI.Success(fmt.Sprintf("%s is running on port %d", st.Name, st.Port))
	switch {
	case st.Server != nil:
		m.UI.Log(fmt.Sprintf("server_version %s, connected to %s as %s", st.Server.ServerVersion, st.Server.Database, st.Server.User))
	case st.PingErr != nil:
		m.UI.Warning("server did not answer: " + st.PingErr.Error())
	}
}

// Log prints the last lines of the server log and, with follow, everything
// appended to it until ctx is cancelled.
func (m *Manager) Log(ctx context.Context, name string, lines int, follow bool) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	path := m.Layout.Log(name)
	tail, offset, err := logtail.Tail(path, lines)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no server log for %s at %s", name, path)
		}
		return err
	}
	for _, l := range tail {
		fmt.Fprintln(m.Out, l)
	}
	if !follow {
		return nil
	}
	return logtail.Follow(ctx, path, offset, m.Out)
}
