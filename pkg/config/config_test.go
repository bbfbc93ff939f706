package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if *cfg != (Config{Limits: want.Limits}) {
		t.Errorf("Load(missing) = %+v, want %+v", *cfg, Config{Limits: want.Limits})
	}
}

func TestLoadPartialOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slang.toml")
	if err := os.WriteFile(path, []byte("[limits]\ngas-limit = 5000\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limits.GasLimit != 5000 {
		t.Errorf("GasLimit = %d, want 5000", cfg.Limits.GasLimit)
	}
	if cfg.Limits.MaxFrames != 1024 {
		t.Errorf("MaxFrames = %d, want default 1024", cfg.Limits.MaxFrames)
	}
	if cfg.Limits.StackCapacity != 100 {
		t.Errorf("StackCapacity = %d, want default 100", cfg.Limits.StackCapacity)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slang.toml")
	if err := os.WriteFile(path, []byte("not = [valid toml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Errorf("expected error for malformed slang.toml, got nil")
	}
}
