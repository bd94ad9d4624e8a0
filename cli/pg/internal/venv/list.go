package venv

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/maahl/pg-venv/cli/pg/internal/paths"
	"github.com/maahl/pg-venv/cli/pg/internal/pgversion"
	"github.com/maahl/pg-venv/cli/pg/internal/ui"
)

// SortKey orders the rows of List.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByVersion SortKey = "version"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortByName:
		return SortByName, nil
	case SortByVersion:
		return SortByVersion, nil
	}
	return "", fmt.Errorf("invalid sort key %q: want name or version", s)
}

type ListOptions struct {
	Sort SortKey
	// Version keeps only pg_venvs whose version satisfies it.
	Version *pgversion.Constraint
}

// Row is one pg_venv as shown by `pg list`.
type Row struct {
	Name    string
	Current bool
	Port    int
	Version pgversion.Version
	Running bool
	Size    string
}

// List inspects every subdirectory of the home directory. Running state is
// queried at call time.
func (m *Manager) List(ctx context.Context, opts ListOptions) ([]Row, error) {
	home, err := m.Config.RequireHome()
	if err != nil {
		return nil, err
	}
	names, err := paths.Layout{Home: home}.List()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", home, err)
	}
	rows := make([]Row, 0, len(names))
	for _, name := range names {
		port, err := paths.Port(name)
		if err != nil {
			continue
		}
		row := Row{
			Name:    name,
			Current: name == m.Config.Current,
			Port:    port,
			Version: m.version(ctx, name),
			Running: m.IsRunning(ctx, name),
			Size:    m.diskUsage(ctx, name),
		}
		if opts.Version != nil && !opts.Version.Check(row.Version) {
			continue
		}
		rows = append(rows, row)
	}
	if opts.Sort == SortByVersion {
		sort.SliceStable(rows, func(i, j int) bool { return pgversion.Less(rows[i].Version, rows[j].Version) })
	}
	return rows, nil
}

func (m *Manager) version(ctx context.Context, name string) pgversion.Version {
	pgConfig := m.Layout.Tool(name, "pg_config")
	if !isFile(pgConfig) {
		return pgversion.Version{}
	}
	out, res := m.Runner.Output(ctx, q(pgConfig)+" --version")
	if !res.OK() {
		return pgversion.Version{}
	}
	v, _ := pgversion.Parse(out)
	return v
}

func (m *Manager) diskUsage(ctx context.Context, name string) string {
	out, res := m.Runner.Output(ctx, "du -hd 0 "+q(m.Layout.Root(name))+" | cut -f 1")
	if !res.OK() {
		return ""
	}
	return strings.TrimSpace(out)
}

// RenderList lays rows out as a table. The running column is green for
// running servers.
func RenderList(p *ui.Printer, rows []Row) string {
	headers := []string{"PG_VENV", "PORT", "VERSION", "RUNNING", "SIZE"}
	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if r.Current {
			name += " [current]"
		}
		version := r.Version.String()
		if version == "" {
			version = "-"
		}
		running := "No"
		if r.Running {
			running = "Yes"
		}
		body = append(body, []string{name, strconv.Itoa(r.Port), version, running, r.Size})
	}
	return p.Table(headers, body, func(row, col int) ui.Kind {
		if col == 3 && row >= 0 && row < len(rows) && rows[row].Running {
			return ui.KindSuccess
		}
		return ui.KindLog
	})
}
