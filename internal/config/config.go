// Package config loads the CLI settings from defaults, the YAML config file,
// the environment and command line flags
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/n1rna/recipe-cli/internal/i18n"
	"github.com/n1rna/recipe-cli/internal/logger"
	"github.com/n1rna/recipe-cli/internal/recipe"
)

// Environment variables read by LoadConfig
const (
	EnvHome     = "RECIPE_HOME"
	EnvConfig   = "RECIPE_CONFIG"
	EnvAPIURL   = "RECIPE_API_URL"
	EnvAPIToken = "RECIPE_API_TOKEN"
	EnvLocale   = "RECIPE_LOCALE"
	EnvTimezone = "RECIPE_TIMEZONE"
)

// DevServerConfig holds the settings of the local development backend
type DevServerConfig struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
	Token     string `yaml:"token"`
}

// Config holds global configuration settings
type Config struct {
	// BaseDir is the root directory for recipe-cli files
	BaseDir string `yaml:"-"`

	APIURL   string        `yaml:"api_url"`
	Token    string        `yaml:"token"`
	Locale   string        `yaml:"locale"`
	Timezone string        `yaml:"timezone"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	LogLevel string        `yaml:"log_level"`
	// LogFile receives log output while the terminal UI owns the screen
	LogFile string `yaml:"log_file"`

	DevServer DevServerConfig `yaml:"dev_server"`
}

// Overrides are the values given on the command line. Empty fields are ignored.
type Overrides struct {
	ConfigPath string
	APIURL     string
	Debug      bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	baseDir := getDefaultBaseDir()
	return &Config{
		BaseDir:  baseDir,
		APIURL:   "http://localhost:3000",
		Locale:   "en",
		Timezone: recipe.DefaultTimezone,
		CacheTTL: 30 * time.Second,
		LogLevel: "info",
		LogFile:  filepath.Join(baseDir, "recipe.log"),
		DevServer: DevServerConfig{
			Addr:      "localhost:3000",
			UploadDir: filepath.Join(baseDir, "uploads"),
		},
	}
}

// getDefaultBaseDir returns the default base directory path
func getDefaultBaseDir() string {
	if envDir := os.Getenv(EnvHome); envDir != "" {
		return envDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".recipe"
	}
	return filepath.Join(homeDir, ".recipe")
}

// DefaultConfigPath returns the config file used when none is given
func DefaultConfigPath() string {
	return filepath.Join(getDefaultBaseDir(), "config.yaml")
}

// LoadConfig builds the configuration: defaults, then the config file, then
// environment variables, then overrides. The result is validated.
func LoadConfig(o Overrides) (*Config, error) {
	cfg := DefaultConfig()

	path, explicit := o.ConfigPath, o.ConfigPath != ""
	if !explicit {
		if envPath := os.Getenv(EnvConfig); envPath != "" {
			path, explicit = envPath, true
		} else {
			path = DefaultConfigPath()
		}
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if o.APIURL != "" {
		cfg.APIURL = o.APIURL
	}
	if o.Debug {
		cfg.LogLevel = logger.DEBUG.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFile merges the YAML file at path into c. A missing file is only an
// error when the path was asked for explicitly.
func (c *Config) loadFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.Locale = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}
	absPath, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	c.BaseDir = absPath

	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q: expected http(s)://host", c.APIURL)
	}

	if _, err := recipe.NewDateFormat(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if _, err := i18n.New(c.Locale); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}

	return nil
}

// Level returns the parsed log level
func (c *Config) Level() logger.LogLevel {
	lvl, _ := logger.ParseLevel(c.LogLevel)
	return lvl
}

// DateFormat returns the created-at format for the configured timezone
func (c *Config) DateFormat() recipe.DateFormat {
	f, err := recipe.NewDateFormat(c.Timezone)
	if err != nil {
		f, _ = recipe.NewDateFormat(recipe.DefaultTimezone)
	}
	return f
}

// EnsureDirectories creates necessary directories if they don't exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.BaseDir}
	if c.LogFile != "" {
		dirs = append(dirs, filepath.Dir(c.LogFile))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
