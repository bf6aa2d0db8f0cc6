package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.RetentionDays)
	}
	if !cfg.PurgeEnabled() {
		t.Error("purge should be enabled by default")
	}
	if cfg.SweepInterval() != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.SweepInterval())
	}
	if cfg.ParagraphMaxChars != 2500 {
		t.Errorf("ParagraphMaxChars = %d, want 2500", cfg.ParagraphMaxChars)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"retention_days": 7, "disable_purge": true, "paragraph_max_chars": 1000}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.RetentionDays)
	}
	if cfg.PurgeEnabled() {
		t.Error("purge should be disabled")
	}
	if cfg.ParagraphMaxChars != 1000 {
		t.Errorf("ParagraphMaxChars = %d, want 1000", cfg.ParagraphMaxChars)
	}
	// Unset keys keep their defaults.
	if cfg.SweepIntervalMinutes != 60 {
		t.Errorf("SweepIntervalMinutes = %d, want default 60", cfg.SweepIntervalMinutes)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{bad"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMerge_OverlayWinsScalars(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{RetentionDays: 90, DisabledTools: []string{"document_export"}}

	merged := Merge(base, overlay)
	if merged.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", merged.RetentionDays)
	}
	if merged.SweepIntervalMinutes != 60 {
		t.Errorf("SweepIntervalMinutes = %d, want base 60", merged.SweepIntervalMinutes)
	}
	if len(merged.DisabledTools) != 1 {
		t.Errorf("DisabledTools = %v", merged.DisabledTools)
	}
}

func TestMerge_ArraysDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"a", "b"}}
	overlay := &Config{DisabledTools: []string{" b ", "c", ""}}

	merged := Merge(base, overlay)
	want := []string{"a", "b", "c"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, s := range want {
		if merged.DisabledTools[i] != s {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], s)
		}
	}
}

func TestLoadWithRepo_RepoOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()
	workDir := filepath.Join(repoRoot, "sub", "dir")
	if err := os.MkdirAll(workDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(repoRoot, ".seam"), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(globalDir, "config.json"),
		[]byte(`{"retention_days": 10, "legacy_versioning": true}`), 0600); err != nil {
		t.Fatalf("write global config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoRoot, ".seam", "config.json"),
		[]byte(`{"retention_days": 5}`), 0600); err != nil {
		t.Fatalf("write repo config: %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, workDir)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}

	if cfg.RetentionDays != 5 {
		t.Errorf("RetentionDays = %d, want repo value 5", cfg.RetentionDays)
	}
	if !cfg.LegacyVersioning {
		t.Error("LegacyVersioning from global layer should survive the merge")
	}
}
