package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/klytics/sheetkit/internal/palette"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Issue represents a validation finding.
type Issue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning"
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Validate checks config values and returns a list of issues.
func Validate() []Issue {
	var issues []Issue

	for _, key := range []string{"color.from", "color.to"} {
		v := viper.GetString(key)
		if v == "" && key == "color.to" {
			continue
		}
		if _, err := palette.Parse(v); err != nil {
			issues = append(issues, Issue{
				Key:      key,
				Severity: "error",
				Message:  err.Error(),
				Fix:      fmt.Sprintf("sheetkit config set %s \"#RRGGBB\"", key),
			})
		}
	}

	if w := viper.GetInt("output.max_width"); w < 0 {
		issues = append(issues, Issue{
			Key:      "output.max_width",
			Severity: "error",
			Message:  fmt.Sprintf("output.max_width must be 0 or more, got %d", w),
			Fix:      "sheetkit config set output.max_width 40",
		})
	} else if w > 0 && w < 4 {
		issues = append(issues, Issue{
			Key:      "output.max_width",
			Severity: "warning",
			Message:  fmt.Sprintf("output.max_width %d leaves almost no room for cell text", w),
		})
	}

	if ms := viper.GetInt("watch.debounce_ms"); ms < 0 {
		issues = append(issues, Issue{
			Key:      "watch.debounce_ms",
			Severity: "error",
			Message:  fmt.Sprintf("watch.debounce_ms must be 0 or more, got %d", ms),
		})
	}

	if level := viper.GetString("log.level"); level != "" {
		if _, err := zerolog.ParseLevel(level); err != nil {
			issues = append(issues, Issue{
				Key:      "log.level",
				Severity: "error",
				Message:  fmt.Sprintf("unknown log level %q", level),
				Fix:      "use one of: debug, info, warn, error",
			})
		}
	}

	return issues
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range keys() {
		if v := viper.GetString(key); v != "" {
			env["SHEETKIT_"+strings.ToUpper(envKeyReplacer.Replace(key))] = v
		}
	}
	return env
}

// Set sets a config value and saves to disk.
func Set(key, value string) error {
	if _, ok := defaults()[key]; !ok {
		return fmt.Errorf("unknown config key %q — known keys: %s", key, strings.Join(keys(), ", "))
	}
	viper.Set(key, value)
	return SaveConfig()
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// ResetConfig resets all config to defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for key, value := range defaults() {
		viper.Set(key, value)
	}
	return nil
}

// SaveConfig writes the current config to ~/.sheetkit/config.yaml, or to the
// file chosen with --config.
func SaveConfig() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}

	os.Chmod(path, 0600)
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if explicitFile != "" {
		return explicitFile
	}
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n", ConfigPath()))

	section := ""
	for _, key := range keys() {
		group, name, _ := strings.Cut(key, ".")
		if group != section {
			sb.WriteString(fmt.Sprintf("\n%s\n", group))
			section = group
		}
		v := viper.GetString(key)
		if v == "" {
			v = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("  %-12s %s\n", name+":", v))
	}

	return sb.String()
}

func keys() []string {
	d := defaults()
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
