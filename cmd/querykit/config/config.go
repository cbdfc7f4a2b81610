package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "QUERYKIT_"

// Source kinds the service can read entities from.
const (
	SourceMemory = "memory"
	SourceSQLX   = "sqlx"
	SourceGorm   = "gorm"
	SourceRemote = "remote"
)

type Config struct {
	HTTPAddr string
	LogLevel string
	LogFile  string

	Source         string
	FixtureDir     string
	QueryDir       string
	DatabaseURL    string
	RemoteURL      string
	RemoteRetryMax int

	DefaultPageSize int
	MaxPageSize     int
	StrictFilters   bool

	CacheEnabled         bool
	CacheTTL             time.Duration
	CacheMaxSize         int
	CacheCleanupInterval time.Duration
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		HTTPAddr:             ":8080",
		LogLevel:             "info",
		Source:               SourceMemory,
		FixtureDir:           "fixtures",
		QueryDir:             "queries",
		RemoteRetryMax:       3,
		DefaultPageSize:      20,
		MaxPageSize:          100,
		CacheEnabled:         true,
		CacheTTL:             15 * time.Minute,
		CacheMaxSize:         1000,
		CacheCleanupInterval: 5 * time.Minute,
	}
}

// Load reads envFile (".env" when empty) into the process environment and
// builds a Config from the QUERYKIT_* variables. A missing default .env is
// not an error; a missing explicit file is.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()
	r := reader{}
	r.stringVar("HTTP_ADDR", &cfg.HTTPAddr)
	r.stringVar("LOG_LEVEL", &cfg.LogLevel)
	r.stringVar("LOG_FILE", &cfg.LogFile)
	r.stringVar("SOURCE", &cfg.Source)
	r.stringVar("FIXTURE_DIR", &cfg.FixtureDir)
	r.stringVar("QUERY_DIR", &cfg.QueryDir)
	r.stringVar("DATABASE_URL", &cfg.DatabaseURL)
	r.stringVar("REMOTE_URL", &cfg.RemoteURL)
	r.intVar("REMOTE_RETRY_MAX", &cfg.RemoteRetryMax)
	r.intVar("DEFAULT_PAGE_SIZE", &cfg.DefaultPageSize)
	r.intVar("MAX_PAGE_SIZE", &cfg.MaxPageSize)
	r.boolVar("STRICT_FILTERS", &cfg.StrictFilters)
	r.boolVar("CACHE_ENABLED", &cfg.CacheEnabled)
	r.durationVar("CACHE_TTL", &cfg.CacheTTL)
	r.intVar("CACHE_MAX_SIZE", &cfg.CacheMaxSize)
	r.durationVar("CACHE_CLEANUP_INTERVAL", &cfg.CacheCleanupInterval)
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected source has what it needs.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceMemory:
		if c.FixtureDir == "" {
			return fmt.Errorf("%sFIXTURE_DIR is required for the %s source", envPrefix, c.Source)
		}
	case SourceSQLX, SourceGorm:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%sDATABASE_URL is required for the %s source", envPrefix, c.Source)
		}
	case SourceRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("%sREMOTE_URL is required for the %s source", envPrefix, c.Source)
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.DefaultPageSize <= 0 || c.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", c.DefaultPageSize, c.MaxPageSize)
	}
	return nil
}

type reader struct {
	errs []error
}

func (r *reader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	return v, ok && v != ""
}

func (r *reader) stringVar(key string, dst *string) {
	if v, ok := r.lookup(key); ok {
		*dst = v
	}
}

func (r *reader) intVar(key string, dst *int) {
	if v, ok := r.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err))
			return
		}
		*dst = n
	}
}

func (r *reader) boolVar(key string, dst *bool) {
	if v, ok := r.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err))
			return
		}
		*dst = b
	}
}

func (r *reader) durationVar(key string, dst *time.Duration) {
	if v, ok := r.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err))
			return
		}
		*dst = d
	}
}
