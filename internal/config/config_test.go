package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every key Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "API_KEY", "ARXIV_API_URL", "ARXIV_TIMEOUT",
		"SEARCH_MAX_RESULTS", "DEFAULT_SEARCH_RESULTS", "FETCH_TIMEOUT",
		"MAX_DOCUMENT_BYTES", "MAX_REQUEST_BYTES", "DEFAULT_SUMMARY_SENTENCES",
		"DEFAULT_URL_SENTENCES", "DEFAULT_MAX_PAGES", "PDF_FALLBACK_PDFTOTEXT",
		"RESPECT_ROBOTS", "USER_AGENT", "CACHE_PATH", "CACHE_TTL", "WORKER_COUNT",
		"MAX_QUEUE_SIZE", "JOB_TTL", "STATS_WINDOW", "STATIC_DIR", "CORS_ORIGINS",
		"LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.ArxivAPIURL != "https://export.arxiv.org/api/query" {
		t.Errorf("unexpected arxiv url %q", cfg.ArxivAPIURL)
	}
	if cfg.ArxivTimeout != 20*time.Second {
		t.Errorf("expected 20s arxiv timeout, got %v", cfg.ArxivTimeout)
	}
	if cfg.DefaultSummarySentences != 6 || cfg.DefaultURLSentences != 7 || cfg.DefaultMaxPages != 4 {
		t.Errorf("unexpected summary defaults %+v", cfg)
	}
	if !cfg.PDFFallbackPdftotext || cfg.RespectRobots {
		t.Errorf("unexpected fetch flags %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Errorf("expected CORS origins [*], got %v", cfg.CORSOrigins)
	}
	if cfg.APIKey != "" || cfg.CachePath != "" {
		t.Errorf("expected auth and cache disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("API_KEY", "secret")
	t.Setenv("ARXIV_TIMEOUT", "5s")
	t.Setenv("MAX_DOCUMENT_BYTES", "1024")
	t.Setenv("RESPECT_ROBOTS", "true")
	t.Setenv("CORS_ORIGINS", "https://a.org, https://b.org,")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" || cfg.APIKey != "secret" {
		t.Errorf("unexpected port/api key %q %q", cfg.Port, cfg.APIKey)
	}
	if cfg.ArxivTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.ArxivTimeout)
	}
	if cfg.MaxDocumentBytes != 1024 || !cfg.RespectRobots {
		t.Errorf("unexpected fetch settings %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://a.org", "https://b.org"}) {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("invalid int should fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.SlogLevel())
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "paperdigest.yaml")
	yaml := "port: \"8100\"\ncache_path: /tmp/texts.db\ncache_ttl: 2h\ndefault_max_pages: 10\ncors_origins:\n  - https://ui.example.org\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEFAULT_MAX_PAGES", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8100" || cfg.CachePath != "/tmp/texts.db" || cfg.CacheTTL != 2*time.Hour {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.DefaultMaxPages != 2 {
		t.Errorf("env should win over yaml, got %d", cfg.DefaultMaxPages)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://ui.example.org"}) {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("PORT=9100\nDEFAULT_URL_SENTENCES=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEFAULT_URL_SENTENCES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("expected port from .env, got %q", cfg.Port)
	}
	if cfg.DefaultURLSentences != 5 {
		t.Errorf("process env should win over .env, got %d", cfg.DefaultURLSentences)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"port range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"bad arxiv url", func(c *Config) { c.ArxivAPIURL = "ftp://x" }, "ARXIV_API_URL"},
		{"default above max", func(c *Config) { c.DefaultSearchResults = 60 }, "DEFAULT_SEARCH_RESULTS"},
		{"zero sentences", func(c *Config) { c.DefaultSummarySentences = 0 }, "sentence"},
		{"negative pages", func(c *Config) { c.DefaultMaxPages = -1 }, "DEFAULT_MAX_PAGES"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}
