package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/klytics/sheetkit/internal/palette"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	explicitFile = ""

	// Override configDir for tests
	t.Setenv("HOME", dir)
	t.Cleanup(func() {
		viper.Reset()
		explicitFile = ""
	})
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.MaxWidth != 40 {
		t.Errorf("default max_width = %d", cfg.Output.MaxWidth)
	}
	if !cfg.Output.Color || !cfg.Output.Pager {
		t.Error("color and pager should default to on")
	}
	if cfg.Color.From != "#FFFFFF" || cfg.Color.To != "" {
		t.Errorf("unexpected default colors %q %q", cfg.Color.From, cfg.Color.To)
	}
	if cfg.Debounce().Milliseconds() != 500 {
		t.Errorf("default debounce = %s", cfg.Debounce())
	}
	if !strings.HasSuffix(cfg.Shell.History, filepath.Join(".sheetkit", "history")) {
		t.Errorf("unexpected history path %q", cfg.Shell.History)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("SHEETKIT_OUTPUT_MAX_WIDTH", "12")
	t.Setenv("SHEETKIT_COLOR_TO", "#000080")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.MaxWidth != 12 {
		t.Errorf("max_width = %d, want 12", cfg.Output.MaxWidth)
	}
	from, to, err := cfg.Colors()
	if err != nil {
		t.Fatal(err)
	}
	if from != palette.White || to == nil || to.Hex() != "#000080" {
		t.Errorf("unexpected colors %v %v", from, to)
	}
}

func TestLoadDotEnv(t *testing.T) {
	setupTestConfig(t)
	work := t.TempDir()
	if err := os.WriteFile(filepath.Join(work, ".env"), []byte("SHEETKIT_LOG_LEVEL=debug\n"), 0600); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(wd)
		os.Unsetenv("SHEETKIT_LOG_LEVEL")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug from .env", cfg.Log.Level)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := setupTestConfig(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("output:\n  max_width: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}
	UseFile(path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.MaxWidth != 7 {
		t.Errorf("max_width = %d, want 7", cfg.Output.MaxWidth)
	}
	if ConfigPath() != path {
		t.Errorf("ConfigPath() = %q, want %q", ConfigPath(), path)
	}

	UseFile(filepath.Join(dir, "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestColorsInvalid(t *testing.T) {
	var cfg Config
	cfg.Color.From = "nope"
	if _, _, err := cfg.Colors(); err == nil {
		t.Error("expected an error for an invalid start color")
	}
	cfg.Color.From = "#FFF"
	cfg.Color.To = "#12"
	if _, _, err := cfg.Colors(); err == nil {
		t.Error("expected an error for an invalid end color")
	}
}

func TestSetAndGet(t *testing.T) {
	setupTestConfig(t)
	Load()

	if err := Set("output.max_width", "20"); err != nil {
		t.Fatal(err)
	}

	if got := Get("output.max_width"); got != "20" {
		t.Errorf("Get(output.max_width) = %q, want %q", got, "20")
	}
	if _, err := os.Stat(ConfigPath()); err != nil {
		t.Errorf("config file should be written: %v", err)
	}

	if err := Set("provider", "x"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestValidate(t *testing.T) {
	setupTestConfig(t)
	Load()
	if issues := Validate(); len(issues) != 0 {
		t.Errorf("defaults should validate, got %+v", issues)
	}

	viper.Set("color.from", "red")
	viper.Set("output.max_width", -1)
	viper.Set("log.level", "loud")

	found := map[string]bool{}
	for _, issue := range Validate() {
		if issue.Severity == "error" {
			found[issue.Key] = true
		}
	}
	for _, key := range []string{"color.from", "output.max_width", "log.level"} {
		if !found[key] {
			t.Errorf("expected an error for %s", key)
		}
	}
}

func TestToEnv(t *testing.T) {
	setupTestConfig(t)
	Load()
	viper.Set("color.to", "#000000")

	env := ToEnv()
	if env["SHEETKIT_COLOR_TO"] != "#000000" {
		t.Errorf("SHEETKIT_COLOR_TO = %q", env["SHEETKIT_COLOR_TO"])
	}
	if env["SHEETKIT_OUTPUT_MAX_WIDTH"] != "40" {
		t.Errorf("SHEETKIT_OUTPUT_MAX_WIDTH = %q", env["SHEETKIT_OUTPUT_MAX_WIDTH"])
	}
}

func TestShowConfig(t *testing.T) {
	setupTestConfig(t)
	Load()
	viper.Set("color.from", "#102030")

	output := ShowConfig()
	if !strings.Contains(output, "#102030") {
		t.Error("ShowConfig should contain color.from")
	}
	if !strings.Contains(output, "output\n") || !strings.Contains(output, "max_width:") {
		t.Errorf("ShowConfig should group keys by section:\n%s", output)
	}
}

func TestConfigPath(t *testing.T) {
	setupTestConfig(t)
	path := ConfigPath()
	if !strings.Contains(path, ".sheetkit") || !strings.Contains(path, "config.yaml") {
		t.Errorf("unexpected path: %q", path)
	}
}

func TestResetConfig(t *testing.T) {
	setupTestConfig(t)
	Load()

	viper.Set("output.max_width", 5)
	SaveConfig()

	if err := ResetConfig(); err != nil {
		t.Fatal(err)
	}

	if viper.GetInt("output.max_width") != 40 {
		t.Errorf("max_width should reset to default, got %d", viper.GetInt("output.max_width"))
	}
	if _, err := os.Stat(ConfigPath()); !os.IsNotExist(err) {
		t.Error("config file should be removed")
	}
}
