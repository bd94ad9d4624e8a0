package helpcmd

import "github.com/maahl/pg-venv/cli/pg/internal/cmdregistry"

func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Help, handle)
}

func handle(ctx *cmdregistry.Context) error {
	if _, err := ctx.Positional(nil); err != nil {
		return err
	}
	cmdregistry.WriteUsage(ctx.Stdout)
	return nil
}
