package venv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maahl/pg-venv/cli/pg/internal/paths"
)

// RemoveData deletes everything inside the data directory of name after the
// user typed the name back. The directory itself is kept. A mismatch leaves
// the data untouched and returns ErrNotConfirmed.
func (m *Manager) RemoveData(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	if !m.Layout.Exists(name) {
		return ErrNotExist
	}
	data := m.Layout.Data(name)
	prompt := fmt.Sprintf("You are about to delete all the data in your database, located in %s. Please type its name to confirm:", data)
	if !m.confirm(prompt, name) {
		return ErrNotConfirmed
	}
	if m.IsRunning(ctx, name) {
		if err := m.Stop(ctx, name); err != nil {
			return err
		}
	}
	return m.fsStep(ctx, "Removing all the data", "rm -rf "+q(data)+"/* "+q(data)+"/.[!.]*", func() error {
		return emptyDir(data)
	})
}

// Remove deletes the whole pg_venv directory after confirmation, stopping its
// server first and dropping its git worktree when it has one.
func (m *Manager) Remove(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}
	if !m.Layout.Exists(name) {
		return ErrNotExist
	}
	root := m.Layout.Root(name)
	which := "specified"
	if name == m.Config.Current {
		which = "current"
	}
	prompt := fmt.Sprintf("You are about to delete all the data for the %s pg_venv, located in %s. Please type its name to confirm:", which, root)
	if !m.confirm(prompt, name) {
		return ErrNotConfirmed
	}
	if m.IsRunning(ctx, name) {
		if err := m.Stop(ctx, name); err != nil {
			return err
		}
	}
	m.source().Release(ctx, m.Layout.Src(name), name)
	return m.fsStep(ctx, "Removing virtualenv "+name, "rm -r "+q(root), func() error {
		return os.RemoveAll(root)
	})
}

// emptyDir removes every entry of dir, dotfiles included. A missing dir is
// already empty.
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
