package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/pagination"
)

// AppName names the config directory and file prefix
const AppName = "lazyjson"

// Config holds all application configuration
type Config struct {
	UI      UIConfig      `mapstructure:"ui"`
	Data    DataConfig    `mapstructure:"data"`
	Log     LogConfig     `mapstructure:"log"`
	History HistoryConfig `mapstructure:"history"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	ExpandDepth  int    `mapstructure:"expand_depth"`
	DefaultMode  string `mapstructure:"default_mode"`
}

type DataConfig struct {
	MaxLength       int      `mapstructure:"max_length"`
	DefaultPageSize int      `mapstructure:"default_page_size"`
	DateDetection   bool     `mapstructure:"date_detection"`
	DateLayouts     []string `mapstructure:"date_layouts"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// HistoryConfig controls the record of opened documents. An empty File
// means history.db in the config directory.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
			ExpandDepth:  1,
			DefaultMode:  "input",
		},
		Data: DataConfig{
			MaxLength:       models.DefaultMaxLength,
			DefaultPageSize: 50,
			DateDetection:   false,
			DateLayouts:     []string{time.RFC3339},
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.expand_depth", d.UI.ExpandDepth)
	v.SetDefault("ui.default_mode", d.UI.DefaultMode)
	v.SetDefault("data.max_length", d.Data.MaxLength)
	v.SetDefault("data.default_page_size", d.Data.DefaultPageSize)
	v.SetDefault("data.date_detection", d.Data.DateDetection)
	v.SetDefault("data.date_layouts", d.Data.DateLayouts)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.file", d.History.File)
}

// Load loads configuration from the standard locations
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 1. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, AppName))
	}
	// 2. Current directory
	v.AddConfigPath(".")
	// 3. Default config directory
	v.AddConfigPath("./config")

	return read(v)
}

// LoadFile loads configuration from an explicit path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return read(v)
}

func read(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(AppName)
	v.AutomaticEnv()

	// A missing file is fine, the defaults apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	if c.Data.MaxLength < 4 {
		return fmt.Errorf("data.max_length must be at least 4, got %d", c.Data.MaxLength)
	}
	if c.UI.ExpandDepth < 0 {
		return fmt.Errorf("ui.expand_depth must not be negative, got %d", c.UI.ExpandDepth)
	}
	if _, err := c.PageSize(); err != nil {
		return err
	}
	return nil
}

// PageSize maps data.default_page_size onto a page size choice. Zero means
// all documents on one page.
func (c *Config) PageSize() (pagination.ResultsPerPage, error) {
	if c.Data.DefaultPageSize == 0 {
		return pagination.All, nil
	}
	return pagination.ParseResultsPerPage(fmt.Sprint(c.Data.DefaultPageSize))
}

// ParseOptions returns the decode options implied by the data section
func (c *Config) ParseOptions() []jsonb.DecodeOption {
	if !c.Data.DateDetection {
		return nil
	}
	return []jsonb.DecodeOption{jsonb.WithDateDetection(c.Data.DateLayouts...)}
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
