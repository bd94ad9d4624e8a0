package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/maahl/pg-venv/cli/pg/internal/activate"
	"github.com/maahl/pg-venv/cli/pg/internal/cmdregistry"
	buildcmd "github.com/maahl/pg-venv/cli/pg/internal/commands/build"
	"github.com/maahl/pg-venv/cli/pg/internal/commands/helpcmd"
	servercmd "github.com/maahl/pg-venv/cli/pg/internal/commands/server"
	"github.com/maahl/pg-venv/cli/pg/internal/commands/shellcmd"
	venvscmd "github.com/maahl/pg-venv/cli/pg/internal/commands/venvs"
	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/execx"
	"github.com/maahl/pg-venv/cli/pg/internal/runner"
	"github.com/maahl/pg-venv/cli/pg/internal/ui"
	"github.com/maahl/pg-venv/cli/pg/internal/venv"
)

// envLogLevel overrides the default log level; --log-level wins over it.
const envLogLevel = "PG_VENV_LOG_LEVEL"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func registry() *cmdregistry.Registry {
	r := cmdregistry.New()
	buildcmd.Register(r)
	servercmd.Register(r)
	venvscmd.Register(r)
	shellcmd.Register(r)
	helpcmd.Register(r)
	return r
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	errs := ui.New(stderr)

	global := pflag.NewFlagSet("pg", pflag.ContinueOnError)
	global.SetOutput(io.Discard)
	global.SetInterspersed(false)
	dryRun := global.Bool("dry-run", false, "print commands instead of running them")
	verbose := global.BoolP("verbose", "v", false, "print every command before running it")
	level := global.String("log-level", "", "debug, info, warn or error")
	help := global.BoolP("help", "h", false, "show usage")
	if err := global.Parse(args); err != nil {
		errs.Error("some arguments were not understood")
		errs.Error("error message: " + err.Error())
		return exitUsage
	}
	setupLogging(stderr, *level)

	rest := global.Args()
	if *help || len(rest) == 0 {
		cmdregistry.WriteUsage(stdout)
		if *help {
			return exitOK
		}
		return exitUsage
	}
	action, ok := cmdregistry.Parse(rest[0])
	if !ok {
		errs.Error("Unrecognized action " + rest[0])
		cmdregistry.WriteUsage(stderr)
		return exitError
	}

	// The shell sources whatever a sourced action prints, so its messages
	// must stay off stdout.
	p := ui.New(stdout)
	for _, a := range activate.SourcedActions {
		if rest[0] == a {
			p = errs
		}
	}

	cfg, err := config.Load()
	if err != nil {
		errs.Error(err.Error())
		return exitError
	}

	var rn execx.Runner
	if *dryRun {
		rn = &runner.DryRun{W: stderr}
	} else {
		sh := execx.NewShell(p, *verbose)
		sh.Stdin, sh.Stdout, sh.Stderr = stdin, stdout, stderr
		rn = sh
	}
	m := venv.New(cfg, rn, p)
	m.In = stdin
	m.DryRun = *dryRun

	reg := registry()
	if missing := reg.Missing(); len(missing) > 0 {
		errs.Error(fmt.Sprintf("no handler registered for %v", missing))
		return exitError
	}
	h, _ := reg.Lookup(action)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exe, err := os.Executable()
	if err != nil {
		exe = "pg"
	}
	err = h(&cmdregistry.Context{
		Ctx:     ctx,
		Action:  action,
		Args:    rest[1:],
		Config:  cfg,
		Manager: m,
		UI:      p,
		Stdout:  stdout,
		Env:     environ(),
		Exe:     exe,
		DryRun:  *dryRun,
	})
	return exitCode(errs, err)
}

func exitCode(errs *ui.Printer, err error) int {
	var usage *cmdregistry.UsageError
	var missing *config.MissingVarError
	switch {
	case err == nil, errors.Is(err, venv.ErrNotConfirmed):
		return exitOK
	case errors.As(err, &usage):
		errs.Error("some arguments were not understood")
		errs.Error("error message: " + usage.Error())
		return exitUsage
	case errors.As(err, &missing):
		errs.Error(missing.Error())
		return execx.FatalCode
	}
	log.WithError(err).Debug("action failed")
	errs.Error(err.Error())
	return exitError
}

func setupLogging(w io.Writer, flagLevel string) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	name := flagLevel
	if name == "" {
		name = os.Getenv(envLogLevel)
	}
	if name == "" {
		log.SetLevel(log.WarnLevel)
		return
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		log.SetLevel(log.WarnLevel)
		log.Warnf("invalid log level %q, using warn", name)
		return
	}
	log.SetLevel(lvl)
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
