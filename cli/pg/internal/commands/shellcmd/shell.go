package shellcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/maahl/pg-venv/cli/pg/internal/activate"
	"github.com/maahl/pg-venv/cli/pg/internal/cmdregistry"
	"github.com/maahl/pg-venv/cli/pg/internal/hostsync"
)

// rcSection names the managed block get_shell_function --install writes.
const rcSection = "shell-function"

func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Workon, handleWorkon)
	r.Register(cmdregistry.GetShellFunction, handleGetShellFunction)
}

// handleWorkon always prints something safe to source: the exports, or an
// echo of the reason there are none.
func handleWorkon(ctx *cmdregistry.Context) error {
	args, err := ctx.Positional(nil)
	if err != nil {
		io.WriteString(ctx.Stdout, activate.ErrorStatement(err))
		return err
	}
	if _, err := ctx.Config.RequireHome(); err != nil {
		io.WriteString(ctx.Stdout, activate.ErrorStatement(err))
		return nil
	}
	_, err = io.WriteString(ctx.Stdout, activate.Script(ctx.Manager.Layout, args[0], ctx.Env))
	return err
}

func handleGetShellFunction(ctx *cmdregistry.Context) error {
	fs := ctx.Flags()
	shell := fs.String("shell", "", "bash or zsh (default: from $SHELL)")
	install := fs.String("install", "", "add the source line to this rc file instead of printing the function")
	if _, err := ctx.Positional(fs); err != nil {
		return err
	}
	name := activate.DetectShell(ctx.Env["SHELL"])
	switch activate.ShellName(*shell) {
	case "":
	case activate.ShellBash, activate.ShellZsh:
		name = activate.ShellName(*shell)
	default:
		return &cmdregistry.UsageError{Action: ctx.Action.String(), Err: fmt.Errorf("unsupported shell %q", *shell)}
	}

	if *install == "" {
		_, err := io.WriteString(ctx.Stdout, activate.ShellFunction(ctx.Exe, name))
		return err
	}
	line := activate.SourceLine(ctx.Exe)
	if ctx.DryRun {
		ctx.UI.Log(fmt.Sprintf("would add `%s` to %s", line, *install))
		return nil
	}
	changed, err := hostsync.SyncFile(os.ExpandEnv(*install), rcSection, []string{line})
	if err != nil {
		return err
	}
	if changed {
		ctx.UI.Success(fmt.Sprintf("%s now sources the pg function; open a new shell to use it.", *install))
	} else {
		ctx.UI.Log(*install + " already sources the pg function.")
	}
	return nil
}
