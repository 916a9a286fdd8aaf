package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvGoEnv      = "GO_ENV"
	EnvConfigPath = "CONFIG_PATH"

	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds resolved application configuration values.
type Config struct {
	Port        int              `yaml:"port"`
	DataDir     string           `yaml:"data-dir"`
	DocsDir     string           `yaml:"docs-dir"`
	StoreDriver string           `yaml:"store-driver"`
	SQLitePath  string           `yaml:"sqlite-path"`
	Log         LogConfig        `yaml:"log"`
	Generation  GenerationConfig `yaml:"generation"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type GenerationConfig struct {
	APIKey  string        `yaml:"api-key"`
	BaseURL string        `yaml:"base-url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		Port:        5000,
		DataDir:     "data",
		DocsDir:     "docs",
		StoreDriver: DriverJSON,
		Log:         LogConfig{Level: "info", Format: "text"},
		Generation: GenerationConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
	}
}

// LoadENV loads a .env file when GO_ENV is unset or "development". A missing
// .env file is not an error.
func LoadENV() error {
	goEnv := os.Getenv(EnvGoEnv)
	if goEnv != "" && goEnv != "development" {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load resolves configuration from defaults, the optional YAML file at
// CONFIG_PATH, and environment variables, in increasing precedence.
func Load() (Config, error) {
	if err := LoadENV(); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := loadFile(ResolveConfigPath(os.Getenv(EnvConfigPath)), &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"DATA_DIR":            &cfg.DataDir,
		"DOCS_DIR":            &cfg.DocsDir,
		"STORE_DRIVER":        &cfg.StoreDriver,
		"SQLITE_PATH":         &cfg.SQLitePath,
		"LOG_LEVEL":           &cfg.Log.Level,
		"LOG_FORMAT":          &cfg.Log.Format,
		"GENERATION_API_KEY":  &cfg.Generation.APIKey,
		"GENERATION_BASE_URL": &cfg.Generation.BaseURL,
		"GENERATION_MODEL":    &cfg.Generation.Model,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		port, err := strconv.Atoi(strings.TrimPrefix(raw, ":"))
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", raw, err)
		}
		cfg.Port = port
	}
	if raw := strings.TrimSpace(os.Getenv("GENERATION_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TIMEOUT %q: %w", raw, err)
		}
		cfg.Generation.Timeout = d
	}
	return nil
}

// Validate checks the resolved values and fills derived defaults.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverJSON:
	case DriverSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = filepath.Join(c.DataDir, "telecare.db")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = Default().Generation.Timeout
	}
	return nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
