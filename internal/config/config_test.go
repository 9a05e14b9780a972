package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if !cfg.Watcher.Enabled {
		t.Error("watcher should be enabled by default")
	}
	if cfg.Watcher.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want 500", cfg.Watcher.DebounceMs)
	}
	if len(cfg.Watcher.Ignore) == 0 {
		t.Error("Ignore list should not be empty")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadConfigUsesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()

	result, err := LoadConfigWithDetails(dir)
	if err != nil {
		t.Fatalf("LoadConfigWithDetails: %v", err)
	}
	if !result.UsedDefaults {
		t.Error("expected UsedDefaults to be true with no config file present")
	}
	if result.Config.Version != 1 {
		t.Errorf("Version = %d, want 1", result.Config.Version)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	cogDir := filepath.Join(dir, ".cog")
	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		t.Fatal(err)
	}

	contents := `{"version":1,"watcher":{"enabled":true,"debounceMs":750,"ignore":["vendor"]},"logging":{"level":"debug","format":"json"}}`
	if err := os.WriteFile(filepath.Join(cogDir, "config.json"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Watcher.DebounceMs != 750 {
		t.Errorf("DebounceMs = %d, want 750", cfg.Watcher.DebounceMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv("COG_LOG_LEVEL", "warn")
	t.Setenv("COG_WATCHER_DEBOUNCE", "1000")

	dir := t.TempDir()
	result, err := LoadConfigWithDetails(dir)
	if err != nil {
		t.Fatalf("LoadConfigWithDetails: %v", err)
	}
	if result.Config.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", result.Config.Logging.Level)
	}
	if result.Config.Watcher.DebounceMs != 1000 {
		t.Errorf("DebounceMs = %d, want 1000", result.Config.Watcher.DebounceMs)
	}
	if len(result.EnvOverrides) != 2 {
		t.Errorf("expected 2 env overrides recorded, got %d", len(result.EnvOverrides))
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Logging.Level = "error"

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if reloaded.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", reloaded.Logging.Level)
	}
}

func TestLoadConfigReadsTOML(t *testing.T) {
	dir := t.TempDir()
	cogDir := filepath.Join(dir, ".cog")
	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		t.Fatal(err)
	}

	contents := "version = 1\n\n[watcher]\nenabled = true\ndebounceMs = 250\nignore = [\"vendor\"]\n\n[logging]\nlevel = \"debug\"\nformat = \"json\"\n"
	if err := os.WriteFile(filepath.Join(cogDir, "config.toml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Watcher.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want 250", cfg.Watcher.DebounceMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfigTOMLTakesPrecedenceOverJSON(t *testing.T) {
	dir := t.TempDir()
	cogDir := filepath.Join(dir, ".cog")
	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		t.Fatal(err)
	}

	json := `{"version":1,"logging":{"level":"error","format":"human"}}`
	if err := os.WriteFile(filepath.Join(cogDir, "config.json"), []byte(json), 0o644); err != nil {
		t.Fatal(err)
	}
	toml := "version = 1\n\n[logging]\nlevel = \"warn\"\nformat = \"human\"\n"
	if err := os.WriteFile(filepath.Join(cogDir, "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (config.toml should win)", cfg.Logging.Level)
	}
}

func TestLoadConfigMergesExtensionFiles(t *testing.T) {
	dir := t.TempDir()
	cogDir := filepath.Join(dir, ".cog")
	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		t.Fatal(err)
	}

	tomlExt := "[zig]\nextensions = [\".zig\"]\ncommand = \"zig-ext {file} {output}\"\n"
	if err := os.WriteFile(filepath.Join(cogDir, "extensions.toml"), []byte(tomlExt), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlExt := "nim:\n  extensions: [\".nim\"]\n  command: \"nim-ext {file} {output}\"\n"
	if err := os.WriteFile(filepath.Join(cogDir, "extensions.yaml"), []byte(yamlExt), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	zig, ok := cfg.Extensions["zig"]
	if !ok {
		t.Fatal("expected extensions.toml's \"zig\" entry to be merged")
	}
	if zig.Command != "zig-ext {file} {output}" {
		t.Errorf("zig.Command = %q, want zig-ext {file} {output}", zig.Command)
	}
	nim, ok := cfg.Extensions["nim"]
	if !ok {
		t.Fatal("expected extensions.yaml's \"nim\" entry to be merged")
	}
	if len(nim.Extensions) != 1 || nim.Extensions[0] != ".nim" {
		t.Errorf("nim.Extensions = %v, want [.nim]", nim.Extensions)
	}
}

func TestValidateRejectsUnknownVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 99
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate to reject an unsupported version")
	}
}

func TestGetSupportedEnvVars(t *testing.T) {
	vars := GetSupportedEnvVars()
	if len(vars) == 0 {
		t.Error("expected at least one supported env var")
	}
}
