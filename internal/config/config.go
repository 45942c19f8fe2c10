package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const appName = "lazyaudience"

// Config holds all application configuration
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	UI      UIConfig      `mapstructure:"ui"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type GeneralConfig struct {
	DefaultMode         string `mapstructure:"default_mode"`
	DefaultAtLeastCount int    `mapstructure:"default_at_least_count"`
	ConfirmDelete       bool   `mapstructure:"confirm_delete"`
}

type UIConfig struct {
	Theme          string `mapstructure:"theme"`
	MouseEnabled   bool   `mapstructure:"mouse_enabled"`
	TreeWidthRatio int    `mapstructure:"tree_width_ratio"`
	ShowPreview    bool   `mapstructure:"show_preview"`
}

type StorageConfig struct {
	LibraryPath       string `mapstructure:"library_path"`
	HistoryPath       string `mapstructure:"history_path"`
	HistoryMaxEntries int    `mapstructure:"history_max_entries"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Development bool     `mapstructure:"development"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// defaults is the single source for GetDefaults and the viper defaults
func defaults(dir string) map[string]any {
	return map[string]any{
		"general.default_mode":           "all",
		"general.default_at_least_count": 1,
		"general.confirm_delete":         true,
		"ui.theme":                       "default",
		"ui.mouse_enabled":               false,
		"ui.tree_width_ratio":            55,
		"ui.show_preview":                true,
		"storage.library_path":           filepath.Join(dir, "audiences.yaml"),
		"storage.history_path":           filepath.Join(dir, "history.db"),
		"storage.history_max_entries":    1000,
		"log.level":                      "info",
		"log.development":                false,
		"log.output_paths":               []string{filepath.Join(dir, appName+".log")},
	}
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	dir, err := GetConfigPath()
	if err != nil {
		dir = "."
	}
	cfg, err := decode(newViper(dir))
	if err != nil {
		return &Config{}
	}
	return cfg
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	for key, value := range defaults(dir) {
		v.SetDefault(key, value)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from the first config.yaml found in the user
// config directory, the working directory or ./config. A missing file is not
// an error.
func Load() (*Config, error) {
	dir, err := GetConfigPath()
	if err != nil {
		dir = "."
	}

	v := newViper(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile loads configuration from an explicit file path
func LoadFile(path string) (*Config, error) {
	dir, err := GetConfigPath()
	if err != nil {
		dir = "."
	}

	v := newViper(dir)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	return decode(v)
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
