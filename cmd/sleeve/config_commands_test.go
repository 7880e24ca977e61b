package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sleeve/internal/config"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, stderr, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, stdout, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err != nil {
		t.Fatalf("first init: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}
	if !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")
	content := `[narrative]
openai_api_key = "sk-very-secret"

[logging]
dir = "` + filepath.Join(dir, "logs") + `"
`
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout, stderr, err := runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, stdout, "********")
	if strings.Contains(stdout, "sk-very-secret") {
		t.Fatalf("secret leaked into output:\n%s", stdout)
	}
	requireContains(t, stdout, "[musicbrainz]")
}

func TestConfigPathPrintsResolvedPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"config", "path"}, target)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, stdout, target)
}
