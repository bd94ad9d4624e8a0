// Package worktrees gives a pg_venv its own copy of the PostgreSQL source
// tree, either as an extracted `git archive` snapshot or as a git worktree on
// a branch named after the pg_venv.
//
// Command lines go through an execx.Runner so that --dry-run and the tests
// see exactly what would be executed.
package worktrees

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/execx"
)

// Source copies Repo (PG_DIR) into pg_venv source directories.
type Source struct {
	Repo   string
	Mode   config.SourceMode
	Runner execx.Runner
}

func q(s string) string { return execx.Quote(s) }

func (s Source) git(args ...string) string {
	parts := append([]string{"git", "-C", q(s.Repo)}, args...)
	return strings.Join(parts, " ")
}

// Describe returns `git describe --tags` of the repository head, or
// "unknown" when git cannot name it.
func (s Source) Describe(ctx context.Context) string {
	out, res := s.Runner.Output(ctx, "cd "+q(s.Repo)+" && git describe --tags")
	commit := strings.TrimSpace(out)
	if !res.OK() || commit == "" {
		log.WithField("repo", s.Repo).Debug("git describe failed")
		return "unknown"
	}
	return commit
}

// Fetch replaces the tree at src with a fresh copy of the repository head.
// Every step is fatal on failure.
func (s Source) Fetch(ctx context.Context, src, branch string) error {
	if isDir(src) {
		if err := s.removeTree(ctx, src); err != nil {
			return err
		}
	}
	if s.Mode == config.SourceWorktree {
		return s.addWorktree(ctx, src, branch)
	}
	return s.extractArchive(ctx, src)
}

func (s Source) removeTree(ctx context.Context, src string) error {
	line := "rm -r " + q(src)
	if s.Mode == config.SourceWorktree {
		line += " && " + s.git("worktree", "prune")
	}
	return s.step(ctx, line, "Removing previous source tree")
}

func (s Source) extractArchive(ctx context.Context, src string) error {
	if err := s.step(ctx, "mkdir -p "+q(src), "Creating directories"); err != nil {
		return err
	}
	commit := s.Describe(ctx)
	line := fmt.Sprintf("cd %s && git archive --format=tar HEAD | (cd %s && tar xf -)", q(s.Repo), q(src))
	return s.step(ctx, line, "Copying PostgreSQL's source tree, commit "+commit)
}

func (s Source) addWorktree(ctx context.Context, src, branch string) error {
	if err := s.step(ctx, "mkdir -p "+q(filepath.Dir(src)), "Creating directories"); err != nil {
		return err
	}
	commit := s.Describe(ctx)
	line := s.git("worktree", "add", "-B", q(branch), q(src), "HEAD")
	return s.step(ctx, line, "Adding a worktree of PostgreSQL's source tree, commit "+commit)
}

// IsWorktree reports whether src is a linked git worktree, whose .git is a
// file pointing back to the main repository.
func IsWorktree(src string) bool {
	st, err := os.Stat(filepath.Join(src, ".git"))
	return err == nil && st.Mode().IsRegular()
}

// Release drops the worktree at src and its branch. It does nothing for
// archive snapshots and never fails: a missing worktree or branch is fine.
func (s Source) Release(ctx context.Context, src, branch string) {
	if s.Mode != config.SourceWorktree && !IsWorktree(src) {
		return
	}
	if s.Repo == "" {
		log.WithField("src", src).Warn("PG_DIR not set, git worktree metadata left behind")
		return
	}
	for _, line := range []string{
		s.git("worktree", "remove", "--force", q(src)),
		s.git("branch", "-D", q(branch)),
	} {
		res := s.Runner.Run(ctx, execx.Cmd{Line: line, Quiet: true, NoErrorOutput: true, Silent: true})
		if !res.OK() {
			log.WithFields(log.Fields{"cmd": line, "code": res.Code}).Info("worktree cleanup skipped")
		}
	}
}

func (s Source) step(ctx context.Context, line, desc string) error {
	res := s.Runner.Run(ctx, execx.Cmd{Line: line, Description: desc, Quiet: true, ExitOnFail: true})
	return res.AsError(line)
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
