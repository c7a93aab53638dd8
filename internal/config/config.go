// Package config manages application configuration from files and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/klytics/sheetkit/internal/palette"
)

// Config holds the application configuration.
type Config struct {
	Output struct {
		Color    bool `mapstructure:"color"`
		MaxWidth int  `mapstructure:"max_width"`
		Pager    bool `mapstructure:"pager"`
	} `mapstructure:"output"`
	Color struct {
		From string `mapstructure:"from"`
		To   string `mapstructure:"to"`
	} `mapstructure:"color"`
	Shell struct {
		History string `mapstructure:"history"`
	} `mapstructure:"shell"`
	Watch struct {
		DebounceMS int `mapstructure:"debounce_ms"`
	} `mapstructure:"watch"`
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
}

// explicitFile is the config file chosen with --config, if any.
var explicitFile string

// UseFile makes Load read path instead of ~/.sheetkit/config.yaml.
func UseFile(path string) {
	explicitFile = path
}

// Load reads .env from the working directory, then the configuration file
// and SHEETKIT_ environment variables.
func Load() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if explicitFile != "" {
		viper.SetConfigFile(explicitFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
	}

	setDefaults()

	// Environment variable overrides
	viper.SetEnvPrefix("SHEETKIT")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	if err := viper.ReadInConfig(); err != nil && explicitFile != "" {
		return nil, fmt.Errorf("could not read config file %s: %w", explicitFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	for key, value := range defaults() {
		viper.SetDefault(key, value)
	}
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"output.color":      true,
		"output.max_width":  40,
		"output.pager":      true,
		"color.from":        "#FFFFFF",
		"color.to":          "",
		"shell.history":     filepath.Join(configDir(), "history"),
		"watch.debounce_ms": 500,
		"log.level":         "warn",
		"log.file":          "",
	}
}

// Colors returns the default gradient for new color ranges. A nil end color
// means the opposite of the start color.
func (c *Config) Colors() (palette.Color, *palette.Color, error) {
	from, err := palette.Parse(c.Color.From)
	if err != nil {
		return palette.Color{}, nil, fmt.Errorf("color.from: %w", err)
	}
	if c.Color.To == "" {
		return from, nil, nil
	}
	to, err := palette.Parse(c.Color.To)
	if err != nil {
		return palette.Color{}, nil, fmt.Errorf("color.to: %w", err)
	}
	return from, &to, nil
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetkit"
	}
	return filepath.Join(home, ".sheetkit")
}
