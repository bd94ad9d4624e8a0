package server

import (
	"fmt"

	"github.com/maahl/pg-venv/cli/pg/internal/cmdregistry"
)

// DefaultLogLines is how much of the log `pg log` shows before following.
const DefaultLogLines = 10

func Register(r *cmdregistry.Registry) {
	r.Register(cmdregistry.Start, handleStart)
	r.Register(cmdregistry.Stop, handleStop)
	r.Register(cmdregistry.Restart, handleRestart)
	r.Register(cmdregistry.Status, handleStatus)
	r.Register(cmdregistry.Log, handleLog)
}

func target(ctx *cmdregistry.Context) (string, error) {
	args, err := ctx.Positional(ctx.Flags())
	if err != nil {
		return "", err
	}
	return ctx.ExistingVenv(args)
}

func handleStart(ctx *cmdregistry.Context) error {
	name, err := target(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.Start(ctx.Ctx, name, false)
}

func handleStop(ctx *cmdregistry.Context) error {
	name, err := target(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.Stop(ctx.Ctx, name)
}

func handleRestart(ctx *cmdregistry.Context) error {
	name, err := target(ctx)
	if err != nil {
		return err
	}
	return ctx.Manager.Restart(ctx.Ctx, name)
}

func handleStatus(ctx *cmdregistry.Context) error {
	name, err := target(ctx)
	if err != nil {
		return err
	}
	st, err := ctx.Manager.Status(ctx.Ctx, name)
	if err != nil {
		return err
	}
	ctx.Manager.PrintStatus(st)
	return nil
}

func handleLog(ctx *cmdregistry.Context) error {
	fs := ctx.Flags()
	lines := fs.IntP("lines", "n", DefaultLogLines, "lines to show before following")
	noFollow := fs.Bool("no-follow", false, "print the last lines and exit")
	args, err := ctx.Positional(fs)
	if err != nil {
		return err
	}
	if *lines < 0 {
		return &cmdregistry.UsageError{Action: ctx.Action.String(), Err: fmt.Errorf("--lines must be >= 0")}
	}
	name, err := ctx.ExistingVenv(args)
	if err != nil {
		return err
	}
	return ctx.Manager.Log(ctx.Ctx, name, *lines, !*noFollow)
}
