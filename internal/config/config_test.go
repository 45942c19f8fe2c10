package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	if cfg.General.DefaultMode != "all" {
		t.Errorf("expected default mode 'all', got '%s'", cfg.General.DefaultMode)
	}
	if cfg.General.DefaultAtLeastCount != 1 {
		t.Errorf("expected default at-least count 1, got %d", cfg.General.DefaultAtLeastCount)
	}
	if cfg.UI.TreeWidthRatio != 55 {
		t.Errorf("expected tree width ratio 55, got %d", cfg.UI.TreeWidthRatio)
	}
	if filepath.Base(cfg.Storage.LibraryPath) != "audiences.yaml" {
		t.Errorf("unexpected library path '%s'", cfg.Storage.LibraryPath)
	}
	if len(cfg.Log.OutputPaths) != 1 {
		t.Errorf("expected one log output path, got %v", cfg.Log.OutputPaths)
	}
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
general:
  default_mode: any
ui:
  show_preview: false
storage:
  history_max_entries: 50
log:
  level: debug
  output_paths: [stderr]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.General.DefaultMode != "any" {
		t.Errorf("expected mode 'any', got '%s'", cfg.General.DefaultMode)
	}
	if cfg.UI.ShowPreview {
		t.Error("expected show_preview to be false")
	}
	if cfg.Storage.HistoryMaxEntries != 50 {
		t.Errorf("expected 50 history entries, got %d", cfg.Storage.HistoryMaxEntries)
	}
	if cfg.Log.Level != "debug" || len(cfg.Log.OutputPaths) != 1 || cfg.Log.OutputPaths[0] != "stderr" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	// untouched keys keep their defaults
	if cfg.General.DefaultAtLeastCount != 1 {
		t.Errorf("expected default at-least count 1, got %d", cfg.General.DefaultAtLeastCount)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ui:\n  theme: mono\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UI.Theme != "mono" {
		t.Errorf("expected theme 'mono', got '%s'", cfg.UI.Theme)
	}
}
