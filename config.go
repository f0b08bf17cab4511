package askengine

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for an askengine site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Questions")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/askengine.db")
	UploadDir    string `yaml:"upload_dir"`    // Image uploads (default "data/uploads")

	BasePath         string `yaml:"base_path"`          // Mount point of the pages (default "/questions")
	BasePageTitle    string `yaml:"base_page_title"`    // Title of the base page (default "Questions")
	QuestionsPerPage int    `yaml:"questions_per_page"` // Listing page size (default 20)

	ModerateNewQuestions bool   `yaml:"moderate_new_questions"` // New subscriber questions wait for a moderator
	Language             string `yaml:"language"`               // Default language tag (default "en")
	LogLevel             string `yaml:"log_level"`              // debug, info, warn, error (default "info")

	SessionSecret string `yaml:"session_secret"` // Required: session and nonce signing secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	AutoTLSHost     string `yaml:"autotls_host"`      // Serve :443 with Let's Encrypt for this host
	AutoTLSCacheDir string `yaml:"autotls_cache_dir"` // Certificate cache (default "data/certs")

	CacheTTL time.Duration `yaml:"cache_ttl"` // Question cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Questions"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/askengine.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.BasePath == "" {
		c.BasePath = "/questions"
	}
	if c.BasePageTitle == "" {
		c.BasePageTitle = "Questions"
	}
	if c.QuestionsPerPage <= 0 {
		c.QuestionsPerPage = 20
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AutoTLSCacheDir == "" {
		c.AutoTLSCacheDir = "data/certs"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// LoadConfig reads a YAML config file and applies ASKENGINE_* environment
// overrides on top. An empty path skips the file.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("askengine: read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("askengine: parse config %s: %w", path, err)
		}
	}
	cfg.Name = EnvOr("ASKENGINE_NAME", cfg.Name)
	cfg.URL = EnvOr("ASKENGINE_URL", cfg.URL)
	cfg.Addr = EnvOr("ASKENGINE_ADDR", cfg.Addr)
	cfg.DatabasePath = EnvOr("ASKENGINE_DATABASE_PATH", cfg.DatabasePath)
	cfg.SessionSecret = EnvOr("ASKENGINE_SESSION_SECRET", cfg.SessionSecret)
	cfg.Language = EnvOr("ASKENGINE_LANGUAGE", cfg.Language)
	cfg.LogLevel = EnvOr("ASKENGINE_LOG_LEVEL", cfg.LogLevel)
	if v := os.Getenv("ASKENGINE_COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("askengine: ASKENGINE_COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = secure
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithPermissions replaces the default read and edit rules.
func WithPermissions(p Permissions) Option {
	return func(a *App) {
		a.Perms = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "askengine: required environment variable %s is not set\n", key)
		os.Exit(1)
	}
	return v
}
