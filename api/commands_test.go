package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"tush00nka/taskboard/internal/pkg/auth"

	"pkt.systems/pslog"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_KEY", "cli-test-key")

	cmd := newRootCommand(pslog.NoopLogger())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", "42", "--config", filepath.Join(t.TempDir(), "missing.env")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	claims, err := auth.NewTokenManager("cli-test-key").ValidateToken(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestTokenCommandReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.env")
	if err := os.WriteFile(path, []byte("JWT_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCommand(pslog.NoopLogger())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", "7", "--config", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := auth.NewTokenManager("from-file").ValidateToken(strings.TrimSpace(out.String())); err != nil {
		t.Errorf("token not signed with the file key: %v", err)
	}
}

func TestTokenCommandRequiresUser(t *testing.T) {
	cmd := newRootCommand(pslog.NoopLogger())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error without --user")
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	cmd := newRootCommand(pslog.NoopLogger())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.env")})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "DB_DRIVER") {
		t.Fatalf("err = %v, want DB_DRIVER validation error", err)
	}
}

func TestTokenCommandRequiresKeyOutsideDevelopment(t *testing.T) {
	t.Setenv("JWT_KEY", "")

	cmd := newRootCommand(pslog.NoopLogger())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--user", "1", "--config", filepath.Join(t.TempDir(), "missing.env")})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "JWT_KEY") {
		t.Fatalf("err = %v, want JWT_KEY error", err)
	}
}
