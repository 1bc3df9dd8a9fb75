package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/tbourn/go-trademart-backend/internal/repo"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestMigrateThenCapabilities(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GIN_MODE", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "cli.db"))

	envFile := filepath.Join(dir, "missing.env")

	// Before migrating, no optional table exists.
	var before repo.Capabilities
	if err := json.Unmarshal([]byte(runCLI(t, "capabilities", "--env-file", envFile)), &before); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if before.LeadPurchases || before.Notifications {
		t.Fatalf("fresh db reports tables: %+v", before)
	}

	runCLI(t, "migrate", "--env-file", envFile)

	var after repo.Capabilities
	if err := json.Unmarshal([]byte(runCLI(t, "capabilities", "--env-file", envFile)), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if after != repo.AllCapabilities() {
		t.Fatalf("capabilities after migrate = %+v", after)
	}
}

func TestRoot_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("GIN_MODE", "test")
	t.Setenv("LOG_LEVEL", "chatty")
	rootCmd.SetArgs([]string{"capabilities", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected config error")
	}
}
