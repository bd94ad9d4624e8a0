package activate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maahl/pg-venv/cli/pg/internal/paths"
)

func setupHome(t *testing.T, names ...string) paths.Layout {
	t.Helper()
	home := t.TempDir()
	for _, n := range names {
		if err := os.MkdirAll(filepath.Join(home, n), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return paths.Layout{Home: home}
}

func exportValue(t *testing.T, a Activation, name string) string {
	t.Helper()
	for _, e := range a.Exports {
		if e.Name == name {
			return e.Value
		}
	}
	t.Fatalf("no export %s in %+v", name, a.Exports)
	return ""
}

func TestWorkonSwitchesBetweenVenvs(t *testing.T) {
	l := setupHome(t, "A", "B")
	env := map[string]string{
		"PATH":            "/usr/bin:/bin",
		"LD_LIBRARY_PATH": "",
	}
	a, err := Workon(l, "A", env)
	if err != nil {
		t.Fatal(err)
	}
	env["PATH"] = exportValue(t, a, "PATH")
	env["LD_LIBRARY_PATH"] = exportValue(t, a, "LD_LIBRARY_PATH")
	env["PG_VENV"] = exportValue(t, a, "PG_VENV")

	b, err := Workon(l, "B", env)
	if err != nil {
		t.Fatal(err)
	}
	path := exportValue(t, b, "PATH")
	if want := l.Bin("B") + ":/usr/bin:/bin"; path != want {
		t.Fatalf("PATH=%q want %q", path, want)
	}
	ld := exportValue(t, b, "LD_LIBRARY_PATH")
	if ld != l.Lib("B") {
		t.Fatalf("LD_LIBRARY_PATH=%q want %q", ld, l.Lib("B"))
	}
	if strings.Contains(path, l.Bin("A")) || strings.Contains(ld, l.Lib("A")) {
		t.Fatalf("previous venv left behind: PATH=%q LD=%q", path, ld)
	}
}

func TestWorkonSameVenvTwiceHasNoDuplicates(t *testing.T) {
	l := setupHome(t, "A")
	env := map[string]string{"PATH": "/bin"}
	a, _ := Workon(l, "A", env)
	env["PATH"] = exportValue(t, a, "PATH")
	env["PG_VENV"] = "A"
	a2, err := Workon(l, "A", env)
	if err != nil {
		t.Fatal(err)
	}
	if got := exportValue(t, a2, "PATH"); got != l.Bin("A")+":/bin" {
		t.Fatalf("PATH=%q", got)
	}
}

func TestWorkonExportsOrderAndValues(t *testing.T) {
	l := setupHome(t, "a")
	a, err := Workon(l, "a", map[string]string{"PATH": "/bin"})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range a.Exports {
		names = append(names, e.Name)
	}
	if got := strings.Join(names, ","); got != "PATH,LD_LIBRARY_PATH,PGPORT,PS1,PG_VENV,PGDATA" {
		t.Fatalf("export order %s", got)
	}
	if a.Port != 1121 || exportValue(t, a, "PGPORT") != "1121" {
		t.Fatalf("port %d / %s", a.Port, exportValue(t, a, "PGPORT"))
	}
	if exportValue(t, a, "PGDATA") != l.Data("a") {
		t.Fatalf("PGDATA=%q", exportValue(t, a, "PGDATA"))
	}
	out := a.Render()
	if !strings.Contains(out, `export PS1="[pg:a:1121]${PS1#\[pg:*\]}"`) {
		t.Fatalf("PS1 statement missing:\n%s", out)
	}
	if !strings.Contains(out, "export PG_VENV='a'\n") {
		t.Fatalf("PG_VENV statement missing:\n%s", out)
	}
}

func TestScriptMissingVenvEmitsEchoOnly(t *testing.T) {
	l := setupHome(t)
	out := Script(l, "ghost", map[string]string{"PATH": "/bin", "PG_VENV": "A"})
	if strings.Contains(out, "export") {
		t.Fatalf("missing venv must not export anything:\n%s", out)
	}
	if !strings.HasPrefix(out, "echo -e ") || !strings.Contains(out, "ghost does not exist") {
		t.Fatalf("unexpected script:\n%s", out)
	}
	if !strings.Contains(out, "\\`pg create_virtualenv ghost\\`") {
		t.Fatalf("backticks must be escaped:\n%s", out)
	}
}

func TestScriptInvalidNameEmitsEcho(t *testing.T) {
	l := setupHome(t)
	out := Script(l, "../etc", nil)
	if strings.Contains(out, "export") || !strings.HasPrefix(out, "echo -e ") {
		t.Fatalf("unexpected script:\n%s", out)
	}
}

func TestPrependDropsEmptyEntries(t *testing.T) {
	if got := Prepend("", "/v/lib"); got != "/v/lib" {
		t.Fatalf("got %q", got)
	}
	if got := Prepend("/a::/b:/old", "/new", "/old"); got != "/new:/a:/b" {
		t.Fatalf("got %q", got)
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("it's"); got != `'it'"'"'s'` {
		t.Fatalf("got %s", got)
	}
	if got := Quote(""); got != "''" {
		t.Fatalf("got %s", got)
	}
}

func TestShellFunction(t *testing.T) {
	out := ShellFunction("/opt/pg/pg", ShellBash)
	for _, frag := range []string{
		"# source <(/opt/pg/pg get_shell_function)",
		"if [[ -n $1 && ($1 = w || $1 = workon) ]]; then",
		`cmd_output=$(/opt/pg/pg "$@")`,
		`source <(echo "$cmd_output")`,
		`/opt/pg/pg "$@"`,
		".bashrc",
	} {
		if !strings.Contains(out, frag) {
			t.Fatalf("missing %q in:\n%s", frag, out)
		}
	}
	if strings.Contains(out, "$1 = get_shell_function") {
		t.Fatal("get_shell_function must not be sourced")
	}
	if !strings.Contains(ShellFunction("/x", ShellZsh), ".zshrc") {
		t.Fatal("zsh variant should mention .zshrc")
	}
}

func TestDetectShell(t *testing.T) {
	if DetectShell("/usr/bin/zsh") != ShellZsh || DetectShell("/bin/bash") != ShellBash || DetectShell("") != ShellBash {
		t.Fatal("DetectShell mismatch")
	}
}
