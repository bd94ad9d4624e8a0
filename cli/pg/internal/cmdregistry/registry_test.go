package cmdregistry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/maahl/pg-venv/cli/pg/internal/config"
)

func TestRegistryRegisterLookup(t *testing.T) {
	r := New()
	hit := false
	r.Register(Start, func(ctx *Context) error {
		hit = true
		if ctx.Action != Start {
			t.Fatalf("unexpected action %v", ctx.Action)
		}
		return nil
	})
	h, ok := r.Lookup(Start)
	if !ok {
		t.Fatalf("handler not found")
	}
	if err := h(&Context{Action: Start}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !hit {
		t.Fatalf("handler was not invoked")
	}
	if _, ok := r.Lookup(Stop); ok {
		t.Fatal("stop was never registered")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := New()
	r.Register(Stop, func(*Context) error { return nil })
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on duplicate register")
		}
	}()
	r.Register(Stop, func(*Context) error { return nil })
}

func TestMissing(t *testing.T) {
	r := New()
	if len(r.Missing()) != int(actionCount) {
		t.Fatalf("missing=%v", r.Missing())
	}
	for _, a := range Actions() {
		r.Register(a, func(*Context) error { return nil })
	}
	if m := r.Missing(); len(m) != 0 {
		t.Fatalf("missing=%v", m)
	}
}

func TestParseAliases(t *testing.T) {
	cases := map[string]Action{
		"c": Configure, "configure": Configure,
		"create": CreateVirtualenv, "create_virtualenv": CreateVirtualenv,
		"fetch_pg_source": FetchPgSource, "get_shell_function": GetShellFunction,
		"h": Help, "help": Help, "initdb": InitDB,
		"i": Install, "ls": List, "l": Log, "m": Make, "mk": MakeCheck, "mc": MakeClean,
		"restart": Restart, "rmdata": RmData, "rm_data": RmData, "rmvenv": RmVirtualenv,
		"start": Start, "st": Status, "stop": Stop, "w": Workon, "workon": Workon,
	}
	for token, want := range cases {
		got, ok := Parse(token)
		if !ok || got != want {
			t.Fatalf("Parse(%q)=%v,%v want %v", token, got, ok, want)
		}
	}
	if _, ok := Parse("frobnicate"); ok {
		t.Fatal("unknown token parsed")
	}
}

func TestSpecsAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Actions() {
		s := a.Spec()
		if s.Name == "" || s.Short == "" {
			t.Fatalf("action %d has an incomplete spec: %+v", int(a), s)
		}
		for _, tok := range []string{s.Name, s.Alias} {
			if tok == "" {
				continue
			}
			if seen[tok] {
				t.Fatalf("token %q used twice", tok)
			}
			seen[tok] = true
		}
	}
}

func TestPositional(t *testing.T) {
	ctx := &Context{Action: Workon, Args: []string{}}
	_, err := ctx.Positional(nil)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("err=%v", err)
	}

	ctx = &Context{Action: Make, Args: []string{"-j8", "--keep-going"}}
	args, err := ctx.Positional(nil)
	if err != nil || strings.Join(args, " ") != "-j8 --keep-going" {
		t.Fatalf("args=%v err=%v", args, err)
	}

	ctx = &Context{Action: Log, Args: []string{"--lines", "5", "dev"}}
	fs := ctx.Flags()
	lines := fs.IntP("lines", "n", 10, "")
	args, err = ctx.Positional(fs)
	if err != nil || *lines != 5 || len(args) != 1 || args[0] != "dev" {
		t.Fatalf("args=%v lines=%d err=%v", args, *lines, err)
	}

	ctx = &Context{Action: Log, Args: []string{"--bogus"}}
	if _, err := ctx.Positional(ctx.Flags()); !errors.As(err, &usage) {
		t.Fatalf("unknown flag must be a usage error, got %v", err)
	}
}

func TestVenvDefaultsToCurrent(t *testing.T) {
	ctx := &Context{Config: config.Config{Current: "dev"}}
	if name, err := ctx.Venv(nil); err != nil || name != "dev" {
		t.Fatalf("name=%q err=%v", name, err)
	}
	if name, _ := ctx.Venv([]string{"other"}); name != "other" {
		t.Fatalf("name=%q", name)
	}
	ctx.Config.Current = ""
	var missing *config.MissingVarError
	if _, err := ctx.Venv(nil); !errors.As(err, &missing) {
		t.Fatalf("err=%v", err)
	}
}

func TestWriteUsage(t *testing.T) {
	var b bytes.Buffer
	WriteUsage(&b)
	for _, frag := range []string{"workon, w", "rm_virtualenv, rmvenv", "PG_VIRTUALENV_HOME", "pg create_virtualenv <pg_venv>"} {
		if !strings.Contains(b.String(), frag) {
			t.Fatalf("usage lacks %q", frag)
		}
	}
}
