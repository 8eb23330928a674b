// ABOUTME: Tests for labtrack configuration management.
// ABOUTME: Covers load, save, defaults, backend selection, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/storage"
)

func TestGetBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"", "sqlite"},
		{"sqlite", "sqlite"},
		{"badger", "badger"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := &Config{Backend: tt.backend}
			if got := cfg.GetBackend(); got != tt.want {
				t.Errorf("GetBackend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetDataDir(); got != storage.DataDir() {
		t.Errorf("GetDataDir() = %q, want %q", got, storage.DataDir())
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/labtrack-data"}
	want := filepath.Join(home, "labtrack-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetUploadDir(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/lt"}
	if got := cfg.GetUploadDir(); got != "/tmp/lt/uploads" {
		t.Errorf("GetUploadDir() = %q, want /tmp/lt/uploads", got)
	}

	cfg.UploadDir = "/srv/uploads"
	if got := cfg.GetUploadDir(); got != "/srv/uploads" {
		t.Errorf("GetUploadDir() = %q, want /srv/uploads", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/labtrack", filepath.Join(home, "data/labtrack")},
		{"data/labtrack", "data/labtrack"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetTimeout(t *testing.T) {
	cfg := &Config{}
	d, err := cfg.GetTimeout()
	if err != nil || d != 30*time.Second {
		t.Errorf("default GetTimeout() = %v, %v; want 30s", d, err)
	}

	cfg.OCR.Timeout = "45s"
	if d, _ := cfg.GetTimeout(); d != 45*time.Second {
		t.Errorf("GetTimeout() = %v, want 45s", d)
	}

	for _, bad := range []string{"soon", "-1s", "0s"} {
		cfg.OCR.Timeout = bad
		if _, err := cfg.GetTimeout(); err == nil {
			t.Errorf("GetTimeout(%q) should fail", bad)
		}
	}
}

func TestGetMetricRules(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetMetricRules(); len(got) != len(metricparse.DefaultRules()) {
		t.Errorf("default rules = %d, want %d", len(got), len(metricparse.DefaultRules()))
	}

	cfg.Metrics = []metricparse.Rule{{Name: "Ferritin", Unit: "ng/mL"}}
	if got := cfg.GetMetricRules(); len(got) != 1 || got[0].Name != "Ferritin" {
		t.Errorf("configured rules = %+v", got)
	}
}

func TestGetSummarizerDefaults(t *testing.T) {
	s := (&Config{}).GetSummarizer()
	if s.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q", s.Model)
	}
	if s.APIKeyEnv != "GROQ_API_KEY" {
		t.Errorf("APIKeyEnv = %q", s.APIKeyEnv)
	}

	custom := (&Config{Summarizer: SummarizerConfig{Model: "other"}}).GetSummarizer()
	if custom.Model != "other" || custom.BaseURL == "" {
		t.Errorf("custom = %+v", custom)
	}
}

func TestGetServerDefaults(t *testing.T) {
	s := (&Config{}).GetServer()
	if s.Addr != "127.0.0.1:8080" || s.MaxUploadMB != 20 {
		t.Errorf("GetServer() = %+v", s)
	}
}

func TestExtractorOptions(t *testing.T) {
	cfg := &Config{OCR: OCRConfig{Lang: "deu", DPI: 150, Workers: 3, PDFFallback: true}}
	opts := cfg.ExtractorOptions()
	if opts.Lang != "deu" || opts.DPI != 150 || opts.Workers != 3 || !opts.PDFFallback {
		t.Errorf("ExtractorOptions() = %+v", opts)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		Backend:     "badger",
		DataDir:     "/tmp/labtrack-data",
		DefaultUser: "alice",
		OCR:         OCRConfig{Timeout: "10s", PDFFallback: true},
		Metrics:     []metricparse.Rule{{Name: "Ferritin", Unit: "ng/mL"}},
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Backend != "badger" || loaded.DataDir != "/tmp/labtrack-data" || loaded.DefaultUser != "alice" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.OCR.Timeout != "10s" || !loaded.OCR.PDFFallback {
		t.Errorf("loaded OCR = %+v", loaded.OCR)
	}
	if len(loaded.Metrics) != 1 || loaded.Metrics[0].Unit != "ng/mL" {
		t.Errorf("loaded Metrics = %+v", loaded.Metrics)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	if err := (&Config{Backend: "sqlite"}).Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "labtrack")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "labtrack")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	want := filepath.Join(tmpDir, "labtrack", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorage(t *testing.T) {
	tests := []struct {
		backend string
		created string
	}{
		{"", "labtrack.db"},
		{"sqlite", "labtrack.db"},
		{"badger", "kv"},
	}

	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			tmpDir := t.TempDir()
			cfg := &Config{Backend: tt.backend, DataDir: tmpDir}

			repo, err := cfg.OpenStorage(nil)
			if err != nil {
				t.Fatalf("OpenStorage() failed: %v", err)
			}
			defer repo.Close()

			if _, err := os.Stat(filepath.Join(tmpDir, tt.created)); os.IsNotExist(err) {
				t.Errorf("Expected %s to be created", tt.created)
			}
		})
	}
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: t.TempDir()}
	if _, err := cfg.OpenStorage(nil); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestConfigJSONOmitsEmptyScalars(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"backend", "data_dir", "upload_dir", "metrics", "log_level"} {
		if _, ok := raw[key]; ok {
			t.Errorf("empty config should omit %q: %s", key, data)
		}
	}
}
