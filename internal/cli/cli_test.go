package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"gateway", "authorizer", "accounts", "recipes", "migrate", "seed"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q, got %v (%v)", name, cmd, err)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected persistent --config flag")
	}
}

func TestMigrateAndSeedCommands(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "cli.db")
	body := "database:\n  driver: sqlite3\n  dsn: " + dsn + "\nobservability:\n  log_format: text\n  log_level: error\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs(append(args, "--config", dir))
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	if out := run("migrate"); !strings.Contains(out, "migrations applied (sqlite3)") {
		t.Errorf("unexpected migrate output %q", out)
	}
	if out := run("seed"); !strings.Contains(out, "seeded demo user demo@example.com") {
		t.Errorf("unexpected seed output %q", out)
	}
	if out := run("seed"); !strings.Contains(out, "nothing to seed") {
		t.Errorf("expected second seed to be a no-op, got %q", out)
	}
}
