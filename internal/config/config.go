// Package config loads the mudra service configuration from a YAML file,
// MUDRA_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
)

// EnvPrefix is prepended to every environment variable viper consults.
const EnvPrefix = "MUDRA"

// Config holds the mudra service configuration.
type Config struct {
	Env        string           `mapstructure:"env"` // local, dev, prod
	HTTP       HTTPConfig       `mapstructure:"http"`
	Store      StoreConfig      `mapstructure:"store"`
	Web        WebConfig        `mapstructure:"web"`
	Estimator  EstimatorConfig  `mapstructure:"estimator"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr        string `mapstructure:"addr"`
	ShutdownSec int    `mapstructure:"shutdown_timeout_sec"`
}

// StoreConfig holds SQLite settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// WebConfig holds static file settings.
type WebConfig struct {
	StaticDir string `mapstructure:"static_dir"`
}

// EstimatorConfig describes the external pose estimator. An empty Command
// disables the capture pipeline; frames can still be pushed over HTTP.
type EstimatorConfig struct {
	Command  string   `mapstructure:"command"`
	Args     []string `mapstructure:"args"`
	MaxHands int      `mapstructure:"max_hands"`
}

// ClassifierConfig holds recognition settings.
type ClassifierConfig struct {
	Thumb   string `mapstructure:"thumb"` // right, left, auto
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error (default: determined by env)
}

// New returns a viper instance wired for MUDRA_* environment variables with
// every key defaulted, so that env overrides reach Unmarshal.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", logger.EnvLocal)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout_sec", 10)
	v.SetDefault("store.path", "")
	v.SetDefault("web.static_dir", "")
	v.SetDefault("estimator.command", "")
	v.SetDefault("estimator.args", []string{})
	v.SetDefault("estimator.max_hands", 2)
	v.SetDefault("classifier.thumb", string(gesture.ThumbConventionRight))
	v.SetDefault("classifier.enabled", true)
	v.SetDefault("logging.level", "")
}

// ReadFile merges the YAML file at path into v. An empty path looks for
// .mudra.yaml in the home directory and ignores its absence.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigType("yaml")
	v.SetConfigName(".mudra")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config, applies defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = logger.EnvLocal
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath()
	}
	if c.Web.StaticDir == "" {
		c.Web.StaticDir = FindWebDir()
	}
	if c.Estimator.MaxHands <= 0 {
		c.Estimator.MaxHands = 2
	}
	if c.Classifier.Thumb == "" {
		c.Classifier.Thumb = string(gesture.ThumbConventionRight)
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Env {
	case logger.EnvLocal, logger.EnvDev, logger.EnvProd:
	default:
		return fmt.Errorf("env must be local, dev or prod, got %q", c.Env)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Estimator.MaxHands < 1 {
		return fmt.Errorf("estimator.max_hands must be positive, got %d", c.Estimator.MaxHands)
	}
	if _, err := gesture.ParseThumbConvention(c.Classifier.Thumb); err != nil {
		return fmt.Errorf("classifier.thumb: %w", err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// Thumb returns the parsed thumb convention. Validate guarantees it parses.
func (c Config) Thumb() gesture.ThumbConvention {
	t, err := gesture.ParseThumbConvention(c.Classifier.Thumb)
	if err != nil {
		return gesture.ThumbConventionRight
	}
	return t
}

// DefaultStorePath returns ~/.mudra/mudra.db, or mudra.db in the working
// directory when the home directory is unknown.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mudra.db"
	}
	return filepath.Join(home, ".mudra", "mudra.db")
}

// FindWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func FindWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if isDir(p) {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if p := filepath.Join(home, ".mudra", "web"); isDir(p) {
		return p
	}
	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
