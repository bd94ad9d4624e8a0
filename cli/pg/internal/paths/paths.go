package paths

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MinPort is the lowest port a pg_venv can be assigned.
	MinPort = 1024
	// MaxPort is the highest port a pg_venv can be assigned.
	MaxPort = 65534

	portModulus = 65535 - MinPort
)

var (
	ErrEmptyName   = errors.New("pg_venv name is empty")
	ErrInvalidName = errors.New("invalid pg_venv name")
)

// Layout resolves the on-disk locations of pg_venvs under Home.
//
//	<home>/<name>/src         source tree (archive snapshot or git worktree)
//	<home>/<name>/bin, lib    install prefix
//	<home>/<name>/data        PGDATA
//	<home>/<name>/<name>.log  server log
type Layout struct {
	Home string
}

func (l Layout) Root(name string) string { return filepath.Join(l.Home, name) }
func (l Layout) Src(name string) string  { return filepath.Join(l.Root(name), "src") }
func (l Layout) Bin(name string) string  { return filepath.Join(l.Root(name), "bin") }
func (l Layout) Lib(name string) string  { return filepath.Join(l.Root(name), "lib") }
func (l Layout) Data(name string) string { return filepath.Join(l.Root(name), "data") }
func (l Layout) Log(name string) string  { return filepath.Join(l.Root(name), name+".log") }

// Tool returns the path of an installed PostgreSQL binary (pg_ctl, initdb...).
func (l Layout) Tool(name, tool string) string { return filepath.Join(l.Bin(name), tool) }

func (l Layout) PgCtl(name string) string { return l.Tool(name, "pg_ctl") }

// Exists reports whether the pg_venv directory exists.
func (l Layout) Exists(name string) bool {
	st, err := os.Stat(l.Root(name))
	return err == nil && st.IsDir()
}

// List returns the names of all subdirectories of Home, sorted.
func (l Layout) List() ([]string, error) {
	entries, err := os.ReadDir(l.Home)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateName checks that name can be used as a single path segment.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Port derives the TCP port of a pg_venv from its name: the binary
// representations of the name's code points are concatenated, read as one
// base-2 number, reduced modulo 65535-1024 and shifted up by 1024.
//
// Distinct names can share a port; nothing here tries to avoid it.
func Port(name string) (int, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	var v uint64
	for _, r := range name {
		cp := uint64(r)
		width := bits.Len64(cp)
		if width == 0 {
			// U+0000 is written as a single "0" digit
			width = 1
		}
		v = ((v << uint(width)) | cp) % portModulus
	}
	return int(v) + MinPort, nil
}

// Env returns the variables describing a pg_venv to the PostgreSQL client tools.
func (l Layout) Env(name string) (map[string]string, error) {
	port, err := Port(name)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"PG_VENV": name,
		"PGDATA":  l.Data(name),
		"PGPORT":  fmt.Sprint(port),
	}, nil
}
