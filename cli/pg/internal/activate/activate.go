package activate

import (
	"fmt"
	"strings"

	"github.com/maahl/pg-venv/cli/pg/internal/paths"
)

// Export is one `export NAME=value` statement. Raw values are written
// as-is so that the shell expands them.
type Export struct {
	Name  string
	Value string
	Raw   bool
}

// Activation is the environment change produced by workon.
type Activation struct {
	Name    string
	Port    int
	Exports []Export
}

// NotExistError is returned when the target pg_venv has no directory.
type NotExistError struct {
	Name string
}

func (e *NotExistError) Error() string {
	return fmt.Sprintf("pg virtualenv %s does not exist. Use `pg create_virtualenv %s` to create it.", e.Name, e.Name)
}

// Workon computes the environment that activates name, given the current
// environment of the calling shell. The previously active pg_venv (PG_VENV)
// loses its bin and lib entries; the target's are put first.
func Workon(l paths.Layout, name string, env map[string]string) (Activation, error) {
	if err := paths.ValidateName(name); err != nil {
		return Activation{}, err
	}
	if !l.Exists(name) {
		return Activation{}, &NotExistError{Name: name}
	}
	vars, err := l.Env(name)
	if err != nil {
		return Activation{}, err
	}
	port, err := paths.Port(name)
	if err != nil {
		return Activation{}, err
	}

	var dropBin, dropLib []string
	if prev := env["PG_VENV"]; prev != "" {
		dropBin = append(dropBin, l.Bin(prev))
		dropLib = append(dropLib, l.Lib(prev))
	}

	a := Activation{Name: name, Port: port}
	a.Exports = []Export{
		{Name: "PATH", Value: Prepend(env["PATH"], l.Bin(name), dropBin...)},
		{Name: "LD_LIBRARY_PATH", Value: Prepend(env["LD_LIBRARY_PATH"], l.Lib(name), dropLib...)},
		{Name: "PGPORT", Value: vars["PGPORT"]},
		{Name: "PS1", Value: Prompt(name, port), Raw: true},
		{Name: "PG_VENV", Value: vars["PG_VENV"]},
		{Name: "PGDATA", Value: vars["PGDATA"]},
	}
	return a, nil
}

// Prepend returns the colon-separated list with entry first. Empty items,
// items listed in drop and older copies of entry are removed.
func Prepend(list, entry string, drop ...string) string {
	out := []string{entry}
	for _, p := range strings.Split(list, ":") {
		if p == "" || p == entry || contains(drop, p) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ":")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Prompt returns the PS1 value showing [pg:<name>:<port>]. The shell pattern
// removal strips the segment a previous workon put at the front.
func Prompt(name string, port int) string {
	return fmt.Sprintf(`"[pg:%s:%d]${PS1#\[pg:*\]}"`, escapeDouble(name), port)
}

// Render writes the exports as shell statements, one per line.
func (a Activation) Render() string {
	var b strings.Builder
	for _, e := range a.Exports {
		v := e.Value
		if !e.Raw {
			v = Quote(v)
		}
		b.WriteString("export " + e.Name + "=" + v + "\n")
	}
	return b.String()
}

// Script returns what `pg workon` prints. Its output is sourced by the
// calling shell, so on error it is a single echo of the message and never a
// partial set of exports.
func Script(l paths.Layout, name string, env map[string]string) string {
	a, err := Workon(l, name, env)
	if err != nil {
		return ErrorStatement(err)
	}
	return a.Render()
}

// ErrorStatement returns a shell statement printing err in red.
func ErrorStatement(err error) string {
	return `echo -e "\033[0;31m` + escapeDouble(err.Error()) + `\033[0;m"` + "\n"
}

// Quote wraps s in single quotes for POSIX shells.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

func escapeDouble(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return r.Replace(s)
}
