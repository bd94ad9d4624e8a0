package venvs

import (
	"fmt"

	"github.com/maahl/pg-venv/cli/pg/internal/cmdregistry"
	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/pgversion"
	"github.com/maahl/pg-venv/cli/pg/internal/venv"
)

func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.CreateVirtualenv, handleCreate)
	r.Register(cmdregistry.List, handleList)
	r.Register(cmdregistry.RmData, handleRmData)
	r.Register(cmdregistry.RmVirtualenv, handleRmVirtualenv)
}

func usageErr(ctx *cmdregistry.Context, err error) error {
	return &cmdregistry.UsageError{Action: ctx.Action.String(), Err: err}
}

func handleCreate(ctx *cmdregistry.Context) error {
	fs := ctx.Flags()
	jobs := fs.IntP("jobs", "j", 0, "make jobs (default: number of CPUs)")
	worktree := fs.Bool("worktree", false, "use a git worktree of PG_DIR as source tree")
	args, err := ctx.Positional(fs)
	if err != nil {
		return err
	}
	if *jobs < 0 {
		return usageErr(ctx, fmt.Errorf("--jobs must be >= 0"))
	}
	if _, err := ctx.Config.RequireHome(); err != nil {
		return err
	}
	if *worktree {
		ctx.Manager.Config.SourceMode = config.SourceWorktree
	}
	return ctx.Manager.Create(ctx.Ctx, args[0], venv.CreateOptions{Jobs: *jobs})
}

func handleList(ctx *cmdregistry.Context) error {
	fs := ctx.Flags()
	sortBy := fs.String("sort", string(venv.SortByName), "name or version")
	version := fs.String("version", "", "only pg_venvs whose version matches this range")
	if _, err := ctx.Positional(fs); err != nil {
		return err
	}
	key, err := venv.ParseSortKey(*sortBy)
	if err != nil {
		return usageErr(ctx, err)
	}
	opts := venv.ListOptions{Sort: key}
	if *version != "" {
		c, err := pgversion.ParseConstraint(*version)
		if err != nil {
			return usageErr(ctx, err)
		}
		opts.Version = &c
	}
	rows, err := ctx.Manager.List(ctx.Ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.UI.Writer(), venv.RenderList(ctx.UI, rows))
	return nil
}

func handleRmData(ctx *cmdregistry.Context) error {
	args, err := ctx.Positional(ctx.Flags())
	if err != nil {
		return err
	}
	name, err := ctx.Venv(args)
	if err != nil {
		return err
	}
	return ctx.Manager.RemoveData(ctx.Ctx, name)
}

func handleRmVirtualenv(ctx *cmdregistry.Context) error {
	args, err := ctx.Positional(ctx.Flags())
	if err != nil {
		return err
	}
	name, err := ctx.Venv(args)
	if err != nil {
		return err
	}
	return ctx.Manager.Remove(ctx.Ctx, name)
}
