package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// StubPgCtl writes an executable pg_ctl into bin that emulates start, stop
// and status with a marker file next to it. start fails when the marker
// exists, stop fails when it is missing, status exits 3 when it is missing.
// It returns the marker path.
func StubPgCtl(t *testing.T, bin string) string {
	t.Helper()
	marker := filepath.Join(bin, ".running")
	script := `#!/bin/sh
marker='` + marker + `'
case "$1" in
start)
	if [ -e "$marker" ]; then
		echo "pg_ctl: another server might be running" >&2
		exit 1
	fi
	touch "$marker"
	echo "server started"
	;;
stop)
	if [ ! -e "$marker" ]; then
		echo "pg_ctl: PID file does not exist" >&2
		exit 1
	fi
	rm -f "$marker"
	echo "server stopped"
	;;
status)
	if [ ! -e "$marker" ]; then
		echo "pg_ctl: no server running"
		exit 3
	fi
	echo "pg_ctl: server is running"
	;;
*)
	exit 2
	;;
esac
exit 0
`
	StubTool(t, bin, "pg_ctl", script)
	return marker
}

// StubTool writes an executable named name into dir with the given script.
func StubTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if !strings.HasPrefix(script, "#!") {
		script = "#!/bin/sh\n" + script
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

// InitRepo creates a git repository at dir with one commit on main and an
// annotated tag REL_TEST_1.
func InitRepo(t *testing.T, dir string) {
	t.Helper()
	RequireBinary(t, "git")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	RunGit(t, "git", "-C", dir, "init")
	if err := os.WriteFile(filepath.Join(dir, "configure"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write configure: %v", err)
	}
	RunGit(t, "git", "-C", dir, "add", ".")
	RunGit(t, "git", "-C", dir, "-c", "user.email=test@example.com", "-c", "user.name=test", "commit", "-m", "init")
	RunGit(t, "git", "-C", dir, "branch", "-M", "main")
	RunGit(t, "git", "-C", dir, "-c", "user.email=test@example.com", "-c", "user.name=test", "tag", "-a", "REL_TEST_1", "-m", "test")
}

// RunGit runs a git command with the global config disabled.
func RunGit(t *testing.T, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// RequireBinary skips the test when name is not on PATH.
func RequireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}
