package worktrees

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/execx"
	"github.com/maahl/pg-venv/cli/pg/internal/testutil"
	"github.com/maahl/pg-venv/cli/pg/internal/ui"
)

func TestArchiveFetchOrder(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dev", "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	fake := (&testutil.FakeRunner{}).OnOutput("git describe --tags", "REL_16_2\n")
	s := Source{Repo: "/src/postgres", Mode: config.SourceArchive, Runner: fake}
	if err := s.Fetch(context.Background(), src, "dev"); err != nil {
		t.Fatal(err)
	}
	rm := fake.Index("rm -r " + src)
	mk := fake.Index("mkdir -p " + src)
	ar := fake.Index("git archive --format=tar HEAD | (cd " + src + " && tar xf -)")
	if rm < 0 || mk < 0 || ar < 0 || !(rm < mk && mk < ar) {
		t.Fatalf("unexpected order rm=%d mkdir=%d archive=%d:\n%s", rm, mk, ar, fake.Joined())
	}
	last := fake.Cmds[len(fake.Cmds)-1]
	if last.Description != "Copying PostgreSQL's source tree, commit REL_16_2" || !last.ExitOnFail {
		t.Fatalf("archive step=%+v", last)
	}
}

func TestArchiveFetchSkipsRemovalWhenAbsent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dev", "src")
	fake := &testutil.FakeRunner{}
	s := Source{Repo: "/src/postgres", Runner: fake}
	if err := s.Fetch(context.Background(), src, "dev"); err != nil {
		t.Fatal(err)
	}
	if fake.Ran("rm -r") {
		t.Fatalf("nothing to remove:\n%s", fake.Joined())
	}
	if !strings.Contains(fake.Cmds[len(fake.Cmds)-1].Description, "commit unknown") {
		t.Fatalf("describe fallback missing: %+v", fake.Cmds)
	}
}

func TestWorktreeReleaseCommands(t *testing.T) {
	fake := &testutil.FakeRunner{}
	s := Source{Repo: "/src/postgres", Mode: config.SourceWorktree, Runner: fake}
	s.Release(context.Background(), "/h/dev/src", "dev")
	if !fake.Ran("git -C /src/postgres worktree remove --force /h/dev/src") || !fake.Ran("git -C /src/postgres branch -D dev") {
		t.Fatalf("unexpected lines:\n%s", fake.Joined())
	}

	fake = &testutil.FakeRunner{}
	Source{Repo: "/src/postgres", Runner: fake}.Release(context.Background(), "/h/dev/src", "dev")
	if len(fake.Lines) != 0 {
		t.Fatalf("archive mode must not touch git:\n%s", fake.Joined())
	}
}

func TestFetchReportsFailure(t *testing.T) {
	fake := (&testutil.FakeRunner{}).Fail("mkdir -p", 1)
	s := Source{Repo: "/src/postgres", Runner: fake}
	err := s.Fetch(context.Background(), filepath.Join(t.TempDir(), "x", "src"), "x")
	if _, ok := err.(*execx.CommandError); !ok {
		t.Fatalf("err=%v", err)
	}
}

func newShell(t *testing.T) *execx.Shell {
	var out bytes.Buffer
	return &execx.Shell{
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &out,
		UI:     ui.New(&out),
		Exit:   func(code int) { t.Fatalf("exit %d:\n%s", code, out.String()) },
	}
}

func TestArchiveFetchIntegration(t *testing.T) {
	testutil.RequireBinary(t, "tar")
	root := t.TempDir()
	repo := filepath.Join(root, "postgres")
	testutil.InitRepo(t, repo)
	src := filepath.Join(root, "home", "dev", "src")

	s := Source{Repo: repo, Mode: config.SourceArchive, Runner: newShell(t)}
	if err := s.Fetch(context.Background(), src, "dev"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(src, "configure")); err != nil {
		t.Fatalf("configure not extracted: %v", err)
	}
	if got := s.Describe(context.Background()); got != "REL_TEST_1" {
		t.Fatalf("describe=%q", got)
	}
	// a second fetch replaces the tree
	if err := os.WriteFile(filepath.Join(src, "stale"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Fetch(context.Background(), src, "dev"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(src, "stale")); !os.IsNotExist(err) {
		t.Fatalf("stale file survived: %v", err)
	}
}

func TestWorktreeIntegration(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "postgres")
	testutil.InitRepo(t, repo)
	src := filepath.Join(root, "home", "dev", "src")

	s := Source{Repo: repo, Mode: config.SourceWorktree, Runner: newShell(t)}
	if err := s.Fetch(context.Background(), src, "dev"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.RunGit(t, "git", "-C", src, "rev-parse", "--abbrev-ref", "HEAD"); got != "dev" {
		t.Fatalf("branch=%q", got)
	}
	s.Release(context.Background(), src, "dev")
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("worktree still present: %v", err)
	}
	if out := testutil.RunGit(t, "git", "-C", repo, "branch", "--list", "dev"); out != "" {
		t.Fatalf("branch dev still present: %q", out)
	}
}

func TestIsWorktree(t *testing.T) {
	dir := t.TempDir()
	if IsWorktree(dir) {
		t.Fatal("plain directory")
	}
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if IsWorktree(dir) {
		t.Fatal("main checkout has a .git directory")
	}
	other := t.TempDir()
	if err := os.WriteFile(filepath.Join(other, ".git"), []byte("gitdir: /repo/.git/worktrees/dev\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsWorktree(other) {
		t.Fatal("linked worktree not detected")
	}
}
