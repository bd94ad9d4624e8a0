package build

import (
	"github.com/maahl/pg-venv/cli/pg/internal/cmdregistry"
)

// Register adds the source-tree actions to the registry.
func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.FetchPgSource, handleFetch)
	r.Register(cmdregistry.Configure, handleConfigure)
	r.Register(cmdregistry.Make, handleMake)
	r.Register(cmdregistry.MakeCheck, handleMakeCheck)
	r.Register(cmdregistry.MakeClean, handleMakeClean)
	r.Register(cmdregistry.Install, handleInstall)
	r.Register(cmdregistry.InitDB, handleInitDB)
}

func handleFetch(ctx *cmdregistry.Context) error {
	args, err := ctx.Positional(ctx.Flags())
	if err != nil {
		return err
	}
	name, err := ctx.Venv(args)
	if err != nil {
		return err
	}
	return ctx.Manager.FetchSource(ctx.Ctx, name)
}

// current checks arity and returns PG_VENV; the remaining arguments are
// returned verbatim.
func current(ctx *cmdregistry.Context) (string, []string, error) {
	args, err := ctx.Positional(nil)
	if err != nil {
		return "", nil, err
	}
	name, err := ctx.Config.RequireCurrent()
	if err != nil {
		return "", nil, err
	}
	return name, args, nil
}

func handleConfigure(ctx *cmdregistry.Context) error {
	name, args, err := current(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.Configure(ctx.Ctx, name, args, false)
}

func handleMake(ctx *cmdregistry.Context) error {
	name, args, err := current(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.Make(ctx.Ctx, name, args, false)
}

func handleMakeCheck(ctx *cmdregistry.Context) error {
	name, _, err := current(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.MakeCheck(ctx.Ctx, name)
}

func handleMakeClean(ctx *cmdregistry.Context) error {
	name, _, err := current(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.MakeClean(ctx.Ctx, name)
}

func handleInstall(ctx *cmdregistry.Context) error {
	name, _, err := current(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.Install(ctx.Ctx, name, false)
}

func handleInitDB(ctx *cmdregistry.Context) error {
	args, err := ctx.Positional(ctx.Flags())
	if err != nil {
		return err
	}
	name, err := ctx.ExistingVenv(args)
	if err != nil {
		return err
	}
	return ctx.Manager.InitDB(ctx.Ctx, name, false)
}
