// ABOUTME: Labtrack configuration management with backend selection.
// ABOUTME: Handles OCR, metric rule, summarizer and server settings plus the storage factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/storage"
	"github.com/harperreed/labtrack/internal/textextract"
)

// Config stores labtrack configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "badger".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts labtrack.db here; badger uses a kv/ subdirectory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/labtrack.
	DataDir string `json:"data_dir,omitempty"`

	// UploadDir holds uploaded files as <user>/<category>/<timestamp>_<name>.
	// Defaults to <data_dir>/uploads.
	UploadDir string `json:"upload_dir,omitempty"`

	// DefaultUser is used by CLI commands when --user is not given.
	DefaultUser string `json:"default_user,omitempty"`

	// LogLevel is a zap level name. Defaults to "info".
	LogLevel string `json:"log_level,omitempty"`

	OCR        OCRConfig          `json:"ocr,omitempty"`
	Metrics    []metricparse.Rule `json:"metrics,omitempty"`
	Summarizer SummarizerConfig   `json:"summarizer,omitempty"`
	Server     ServerConfig       `json:"server,omitempty"`
}

// OCRConfig controls the external OCR and rasterization tools.
type OCRConfig struct {
	Tesseract string `json:"tesseract,omitempty"`
	Pdftoppm  string `json:"pdftoppm,omitempty"`
	Lang      string `json:"lang,omitempty"`
	DPI       int    `json:"dpi,omitempty"`
	MaxPages  int    `json:"max_pages,omitempty"`

	// Timeout bounds one extraction, e.g. "30s".
	Timeout string `json:"timeout,omitempty"`

	Workers     int  `json:"workers,omitempty"`
	PDFFallback bool `json:"pdf_fallback,omitempty"`
}

// SummarizerConfig points at an OpenAI-compatible chat completion endpoint.
type SummarizerConfig struct {
	BaseURL   string `json:"base_url,omitempty"`
	Model     string `json:"model,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `json:"addr,omitempty"`
	MaxUploadMB int    `json:"max_upload_mb,omitempty"`
}

const (
	defaultTimeout     = 30 * time.Second
	defaultBaseURL     = "https://api.groq.com/openai/v1"
	defaultModel       = "llama-3.3-70b-versatile"
	defaultAPIKeyEnv   = "GROQ_API_KEY"
	defaultAddr        = "127.0.0.1:8080"
	defaultMaxUploadMB = 20
)

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUploadDir returns the upload root, defaulting to <data_dir>/uploads.
func (c *Config) GetUploadDir() string {
	if c.UploadDir == "" {
		return filepath.Join(c.GetDataDir(), "uploads")
	}
	return ExpandPath(c.UploadDir)
}

// GetLogLevel returns the log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetMetricRules returns the configured rule table or the built-in one.
func (c *Config) GetMetricRules() []metricparse.Rule {
	if len(c.Metrics) == 0 {
		return metricparse.DefaultRules()
	}
	return c.Metrics
}

// GetTimeout parses OCR.Timeout, defaulting to 30s.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.OCR.Timeout == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(c.OCR.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parse ocr timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ocr timeout must be positive, got %s", d)
	}
	return d, nil
}

// ExtractorOptions maps OCR settings onto the extractor registry options.
func (c *Config) ExtractorOptions() textextract.Options {
	return textextract.Options{
		Tesseract:   c.OCR.Tesseract,
		Pdftoppm:    c.OCR.Pdftoppm,
		Lang:        c.OCR.Lang,
		DPI:         c.OCR.DPI,
		MaxPages:    c.OCR.MaxPages,
		Workers:     c.OCR.Workers,
		PDFFallback: c.OCR.PDFFallback,
	}
}

// GetSummarizer returns summarizer settings with defaults applied.
func (c *Config) GetSummarizer() SummarizerConfig {
	s := c.Summarizer
	if s.BaseURL == "" {
		s.BaseURL = defaultBaseURL
	}
	if s.Model == "" {
		s.Model = defaultModel
	}
	if s.APIKeyEnv == "" {
		s.APIKeyEnv = defaultAPIKeyEnv
	}
	return s
}

// GetServer returns server settings with defaults applied.
func (c *Config) GetServer() ServerConfig {
	s := c.Server
	if s.Addr == "" {
		s.Addr = defaultAddr
	}
	if s.MaxUploadMB <= 0 {
		s.MaxUploadMB = defaultMaxUploadMB
	}
	return s
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
// logger receives backend-internal logs; it may be nil.
func (c *Config) OpenStorage(logger *zap.Logger) (storage.Repository, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case "sqlite":
		return storage.Open(filepath.Join(dataDir, "labtrack.db"))
	case "badger":
		return storage.OpenKV(filepath.Join(dataDir, "kv"), logger)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "labtrack", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
