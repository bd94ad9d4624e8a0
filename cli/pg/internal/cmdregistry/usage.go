package cmdregistry

import (
	"fmt"
	"io"
	"strings"
)

// WriteUsage prints the help text.
func WriteUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString(`pg manages side-by-side PostgreSQL builds ("pg_venvs").

Usage:
  pg [--dry-run] [-v] [--log-level LEVEL] <action> [args]
  pg create_virtualenv <pg_venv>
  pg workon <pg_venv>

Actions:
`)
	for _, a := range Actions() {
		s := a.Spec()
		name := s.Name
		if s.Alias != "" {
			name += ", " + s.Alias
		}
		fmt.Fprintf(&b, "  %-24s %s\n", name, s.Short)
		if s.Args != "" {
			fmt.Fprintf(&b, "  %-24s   pg %s %s\n", "", s.Name, s.Args)
		}
	}
	b.WriteString(`
Action flags:
  create_virtualenv  -j, --jobs N      make jobs (default: number of CPUs)
                     --worktree        use a git worktree instead of an archive copy
  list               --sort name|version
                     --version RANGE   only pg_venvs whose version matches (">= 16")
  log                -n, --lines N     lines shown before following (default 10)
                     --no-follow       print and exit
  get_shell_function --shell bash|zsh
                     --install RCFILE  add the source line to RCFILE

Actions taking [<pg_venv>] default to the current one (PG_VENV).

Environment variables:
  PG_VIRTUALENV_HOME    directory holding the pg_venvs
  PG_DIR                PostgreSQL source repository
  PG_CONFIGURE_OPTIONS  options passed to configure; if it contains --prefix,
                        the pg_venv root is not used as install prefix
  PG_MAKE_OPTIONS       options passed to make
  PG_SOURCE_MODE        archive (default) or worktree
  PG_VENV               current pg_venv, set by workon; do not change it by hand
  PG_VENV_CONFIG        yaml configuration file
  PG_VENV_LOG_LEVEL     diagnostic log level (default warn)
`)
	io.WriteString(w, b.String())
}
