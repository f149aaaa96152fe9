package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth; empty disables bearer auth
	APIKey string `yaml:"api_key"`

	// arXiv search
	ArxivAPIURL          string        `yaml:"arxiv_api_url"`
	ArxivTimeout         time.Duration `yaml:"arxiv_timeout"`
	SearchMaxResults     int           `yaml:"search_max_results"`
	DefaultSearchResults int           `yaml:"default_search_results"`

	// Document fetching
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`
	MaxDocumentBytes     int64         `yaml:"max_document_bytes"`
	PDFFallbackPdftotext bool          `yaml:"pdf_fallback_pdftotext"`
	RespectRobots        bool          `yaml:"respect_robots"`
	UserAgent            string        `yaml:"user_agent"`

	// Extracted text cache; empty path disables it
	CachePath string        `yaml:"cache_path"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	// Summaries
	DefaultSummarySentences int `yaml:"default_summary_sentences"`
	DefaultURLSentences     int `yaml:"default_url_sentences"`
	DefaultMaxPages         int `yaml:"default_max_pages"`

	// Worker pool
	WorkerCount  int           `yaml:"worker_count"`
	MaxQueueSize int           `yaml:"max_queue_size"`
	JobTTL       time.Duration `yaml:"job_ttl"`

	// HTTP
	MaxRequestBytes int64    `yaml:"max_request_bytes"`
	StaticDir       string   `yaml:"static_dir"`
	CORSOrigins     []string `yaml:"cors_origins"`

	StatsWindow time.Duration `yaml:"stats_window"`
	LogLevel    string        `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port: "8000",

		ArxivAPIURL:          "https://export.arxiv.org/api/query",
		ArxivTimeout:         20 * time.Second,
		SearchMaxResults:     50,
		DefaultSearchResults: 20,

		FetchTimeout:         30 * time.Second,
		MaxDocumentBytes:     52428800, // 50MB
		PDFFallbackPdftotext: true,
		UserAgent:            "paperdigest/1.0 (+https://github.com/dgallion1/paperdigest)",

		CacheTTL: 24 * time.Hour,

		DefaultSummarySentences: 6,
		DefaultURLSentences:     7,
		DefaultMaxPages:         4,

		WorkerCount:  4,
		MaxQueueSize: 100,
		JobTTL:       1 * time.Hour,

		MaxRequestBytes: 5242880, // 5MB
		CORSOrigins:     []string{"*"},

		StatsWindow: 1 * time.Hour,
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE, then a .env file in the working directory, then the process
// environment. Later sources win.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	applyEnv(&cfg)
	cfg.fillZeroes()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("API_KEY", cfg.APIKey)

	cfg.ArxivAPIURL = envOr("ARXIV_API_URL", cfg.ArxivAPIURL)
	cfg.ArxivTimeout = envDuration("ARXIV_TIMEOUT", cfg.ArxivTimeout)
	cfg.SearchMaxResults = envInt("SEARCH_MAX_RESULTS", cfg.SearchMaxResults)
	cfg.DefaultSearchResults = envInt("DEFAULT_SEARCH_RESULTS", cfg.DefaultSearchResults)

	cfg.FetchTimeout = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.MaxDocumentBytes = envInt64("MAX_DOCUMENT_BYTES", cfg.MaxDocumentBytes)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.RespectRobots = envBool("RESPECT_ROBOTS", cfg.RespectRobots)
	cfg.UserAgent = envOr("USER_AGENT", cfg.UserAgent)

	cfg.CachePath = envOr("CACHE_PATH", cfg.CachePath)
	cfg.CacheTTL = envDuration("CACHE_TTL", cfg.CacheTTL)

	cfg.DefaultSummarySentences = envInt("DEFAULT_SUMMARY_SENTENCES", cfg.DefaultSummarySentences)
	cfg.DefaultURLSentences = envInt("DEFAULT_URL_SENTENCES", cfg.DefaultURLSentences)
	cfg.DefaultMaxPages = envInt("DEFAULT_MAX_PAGES", cfg.DefaultMaxPages)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.MaxRequestBytes = envInt64("MAX_REQUEST_BYTES", cfg.MaxRequestBytes)
	cfg.StaticDir = envOr("STATIC_DIR", cfg.StaticDir)
	cfg.CORSOrigins = envList("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
}

// fillZeroes restores defaults for sizes and durations that must be positive.
func (c *Config) fillZeroes() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxDocumentBytes <= 0 {
		c.MaxDocumentBytes = d.MaxDocumentBytes
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = d.MaxRequestBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
	if c.ArxivTimeout <= 0 {
		c.ArxivTimeout = d.ArxivTimeout
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
}

func (c Config) Validate() error {
	var errs []error
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port number, got %q", c.Port))
	}
	if u, err := url.Parse(c.ArxivAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("ARXIV_API_URL must be an http(s) URL, got %q", c.ArxivAPIURL))
	}
	if c.SearchMaxResults < 1 {
		errs = append(errs, fmt.Errorf("SEARCH_MAX_RESULTS must be at least 1"))
	}
	if c.DefaultSearchResults < 1 || c.DefaultSearchResults > c.SearchMaxResults {
		errs = append(errs, fmt.Errorf("DEFAULT_SEARCH_RESULTS must be between 1 and %d", c.SearchMaxResults))
	}
	if c.DefaultSummarySentences < 1 || c.DefaultURLSentences < 1 {
		errs = append(errs, fmt.Errorf("default sentence counts must be at least 1"))
	}
	if c.DefaultMaxPages < 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_MAX_PAGES must not be negative"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel returns the configured log level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
