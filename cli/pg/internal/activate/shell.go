package activate

import (
	"fmt"
	"strings"
)

// ShellName enumerates the shells the wrapper function is rendered for.
type ShellName string

const (
	ShellBash ShellName = "bash"
	ShellZsh  ShellName = "zsh"
)

// SourcedActions are the actions whose output is evaluated by the shell.
// get_shell_function must never be part of it.
var SourcedActions = []string{"w", "workon"}

// DetectShell picks the shell from a $SHELL value, defaulting to bash.
func DetectShell(shellPath string) ShellName {
	if strings.HasSuffix(strings.TrimSpace(shellPath), "zsh") {
		return ShellZsh
	}
	return ShellBash
}

// RCFile returns the init file the wrapper is usually installed into.
func (s ShellName) RCFile() string {
	if s == ShellZsh {
		return ".zshrc"
	}
	return ".bashrc"
}

// SourceLine is the line to put in an rc file to define the wrapper.
func SourceLine(exe string) string {
	return "source <(" + exe + " get_shell_function)"
}

// ShellFunction renders the pg() wrapper around exe. Sourced actions have
// their stdout evaluated when they succeed; anything else is forwarded.
func ShellFunction(exe string, shell ShellName) string {
	var conds []string
	for _, a := range SourcedActions {
		conds = append(conds, "$1 = "+a)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Put the following line in your %s, and make sure it uses an absolute path:\n", shell.RCFile())
	fmt.Fprintf(&b, "# %s\n", SourceLine(exe))
	b.WriteString("function pg {\n")
	fmt.Fprintf(&b, "    if [[ -n $1 && (%s) ]]; then\n", strings.Join(conds, " || "))
	fmt.Fprintf(&b, "        cmd_output=$(%s \"$@\")\n", exe)
	b.WriteString("        if [ $? -eq 0 ]; then\n")
	b.WriteString("            source <(echo \"$cmd_output\")\n")
	b.WriteString("        else\n")
	b.WriteString("            echo \"$cmd_output\"\n")
	b.WriteString("        fi\n")
	b.WriteString("    else\n")
	fmt.Fprintf(&b, "        %s \"$@\"\n", exe)
	b.WriteString("    fi\n")
	b.WriteString("}\n")
	return b.String()
}
