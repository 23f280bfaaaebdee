// Package config loads the TRINE server configuration from command-line
// flags, environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog backends.
const (
	CatalogBackendFixture = "fixture"
	CatalogBackendSQLite  = "sqlite"
	CatalogBackendCMS     = "cms"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Data       DataConfig
	Server     ServerConfig
	Catalog    CatalogConfig
	CMS        CMSConfig
	Submission SubmissionConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates on-disk state (SQLite catalog, submission drafts).
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// CORSOrigins lists the origins the site frontend is served from.
	CORSOrigins []string
}

// CatalogConfig selects the repository behind the catalog service.
type CatalogConfig struct {
	Backend string // fixture, sqlite or cms
	// FixturePath overrides the embedded fixture with a YAML file on disk.
	FixturePath string
	// DBPath is the SQLite catalog database (default: {data}/catalog.db).
	DBPath string
}

// CMSConfig configures the headless CMS content client.
type CMSConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string
	Timeout    time.Duration
}

// SubmissionConfig configures the artist submission workflow.
type SubmissionConfig struct {
	// Endpoint receives the form-encoded submission. Empty means submissions
	// are only logged (development).
	Endpoint string
	// FormName is sent as the form-name discriminator field.
	FormName      string
	Timeout       time.Duration
	SessionTTL    time.Duration
	MaxSessions   int
	Drafts        bool // persist in-progress sessions to disk
	RatePerMinute int  // submit attempts per client IP
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("trine", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for on-disk state")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins")

	catalogBackend := fs.String("catalog-backend", "", "Catalog backend: fixture, sqlite or cms (default: fixture)")
	fixturePath := fs.String("catalog-fixture", "", "YAML fixture overriding the embedded catalog")
	catalogDB := fs.String("catalog-db", "", "SQLite catalog path")

	cmsProject := fs.String("cms-project", "", "CMS project ID")
	cmsDataset := fs.String("cms-dataset", "", "CMS dataset")
	cmsCDN := fs.String("cms-use-cdn", "", "Read through the CMS CDN (default: true)")

	submissionEndpoint := fs.String("submission-endpoint", "", "Form backend receiving submissions")
	submissionFormName := fs.String("submission-form-name", "", "Form discriminator (default: artist-submission)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env file is fine; godotenv never overrides variables that
	// are already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "http://localhost:5173")),
		},
		Catalog: CatalogConfig{
			Backend:     strings.ToLower(getConfigValue(*catalogBackend, "CATALOG_BACKEND", CatalogBackendFixture)),
			FixturePath: getConfigValue(*fixturePath, "CATALOG_FIXTURE_PATH", ""),
			DBPath:      getConfigValue(*catalogDB, "CATALOG_DB_PATH", ""),
		},
		CMS: CMSConfig{
			ProjectID:  getConfigValue(*cmsProject, "CMS_PROJECT_ID", "dawovvht"),
			Dataset:    getConfigValue(*cmsDataset, "CMS_DATASET", "production"),
			APIVersion: getConfigValue("", "CMS_API_VERSION", "2023-07-25"),
			UseCDN:     getBoolConfigValue(*cmsCDN, "CMS_USE_CDN", true),
			Token:      getConfigValue("", "CMS_TOKEN", ""),
		},
		Submission: SubmissionConfig{
			Endpoint:      getConfigValue(*submissionEndpoint, "SUBMISSION_ENDPOINT", ""),
			FormName:      getConfigValue(*submissionFormName, "SUBMISSION_FORM_NAME", "artist-submission"),
			MaxSessions:   getIntConfigValue("", "SUBMISSION_MAX_SESSIONS", 1000),
			Drafts:        getBoolConfigValue("", "SUBMISSION_DRAFTS", true),
			RatePerMinute: getIntConfigValue("", "SUBMISSION_RATE_PER_MINUTE", 5),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"", "CMS_TIMEOUT", "10s", &cfg.CMS.Timeout},
		{"", "SUBMISSION_TIMEOUT", "15s", &cfg.Submission.Timeout},
		{"", "SUBMISSION_SESSION_TTL", "2h", &cfg.Submission.SessionTTL},
	}
	for _, d := range durations {
		value := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, value, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Catalog.Backend {
	case CatalogBackendFixture, CatalogBackendSQLite:
	case CatalogBackendCMS:
		if c.CMS.ProjectID == "" || c.CMS.Dataset == "" {
			return errors.New("cms catalog backend requires CMS_PROJECT_ID and CMS_DATASET")
		}
	default:
		return fmt.Errorf("invalid catalog backend: %q (must be fixture, sqlite, or cms)", c.Catalog.Backend)
	}

	if c.Submission.Endpoint != "" {
		u, err := url.Parse(c.Submission.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid submission endpoint: %q", c.Submission.Endpoint)
		}
	}
	if strings.TrimSpace(c.Submission.FormName) == "" {
		return errors.New("submission form name cannot be empty")
	}
	if c.Submission.MaxSessions <= 0 {
		return errors.New("submission max sessions must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the data directory and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(homeDir, "Trine", "data"))
	if err != nil {
		return err
	}

	c.Catalog.DBPath, err = expandPath(c.Catalog.DBPath, filepath.Join(c.Data.BasePath, "catalog.db"))
	if err != nil {
		return err
	}

	c.Catalog.FixturePath, err = expandPath(c.Catalog.FixturePath, "")
	return err
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
