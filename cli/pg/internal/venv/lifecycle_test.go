package venv

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/maahl/pg-venv/cli/pg/internal/config"
	"github.com/maahl/pg-venv/cli/pg/internal/execx"
	"github.com/maahl/pg-venv/cli/pg/internal/paths"
	"github.com/maahl/pg-venv/cli/pg/internal/testutil"
	"github.com/maahl/pg-venv/cli/pg/internal/ui"
)

func TestStartStopWithStubPgCtl(t *testing.T) {
	home := t.TempDir()
	layout := paths.Layout{Home: home}
	if err := os.MkdirAll(layout.Data("demo"), 0o755); err != nil {
		t.Fatal(err)
	}
	marker := testutil.StubPgCtl(t, layout.Bin("demo"))

	var out bytes.Buffer
	var exits []int
	shell := &execx.Shell{
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &out,
		UI:     ui.New(&out),
		Exit:   func(code int) { exits = append(exits, code) },
	}
	m := &Manager{
		Layout:    layout,
		Config:    config.Config{Home: home},
		Runner:    shell,
		UI:        shell.UI,
		Out:       &out,
		PortInUse: func(int) bool { return false },
	}
	ctx := context.Background()

	if m.IsRunning(ctx, "demo") {
		t.Fatal("fresh pg_venv reported running")
	}
	if err := m.Start(ctx, "demo", false); err != nil {
		t.Fatalf("start: %v\n%s", err, out.String())
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("stub not started: %v", err)
	}
	if !m.IsRunning(ctx, "demo") {
		t.Fatal("started pg_venv reported stopped")
	}
	if !strings.Contains(out.String(), "pg: Starting PostgreSQL... OK") {
		t.Fatalf("output: %s", out.String())
	}

	out.Reset()
	if err := m.Start(ctx, "demo", false); err == nil {
		t.Fatal("second start should fail")
	}
	if !strings.Contains(out.String(), "another server might be running") || !strings.Contains(out.String(), "command used: ") {
		t.Fatalf("failure not reported: %s", out.String())
	}

	if err := m.Stop(ctx, "demo"); err != nil {
		t.Fatalf("stop: %v\n%s", err, out.String())
	}
	if m.IsRunning(ctx, "demo") {
		t.Fatal("stopped pg_venv reported running")
	}
	if err := m.Stop(ctx, "demo"); err == nil {
		t.Fatal("stopping a stopped server should fail")
	}
	if len(exits) != 0 {
		t.Fatalf("nothing here is fatal, got exits %v", exits)
	}

	if err := m.Start(ctx, "demo", true); err != nil {
		t.Fatal(err)
	}
	_ = m.Start(ctx, "demo", true)
	if len(exits) != 1 || exits[0] != execx.FatalCode {
		t.Fatalf("exit-on-fail start: exits=%v", exits)
	}
}
