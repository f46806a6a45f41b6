// Package config holds the operations context shared by every organization:
// staleness defaults, page sizing, credential material, and repository
// creation defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/opsgate/orgcache/pkg/settings"
)

type Config struct {
	// BaseURL points at a GitHub Enterprise instance; empty means github.com.
	BaseURL string

	// DefaultPageSize is the per-page size for remote listings.
	DefaultPageSize int

	// Per-collection staleness budgets, in seconds.
	MembersMaxAgeSeconds int
	TeamsMaxAgeSeconds   int
	ReposMaxAgeSeconds   int

	// PageRequestDelayMillis paces multi-page listings; zero disables it.
	PageRequestDelayMillis int

	// LegalEntities is the default legal-entity list for organizations
	// whose settings do not carry their own.
	LegalEntities []string

	// Templates are the repository templates offered when an organization
	// configures none.
	Templates []settings.RepositoryTemplate

	// DisableSudo turns off org-level sudo resolution. Diagnostics only;
	// never set in production.
	DisableSudo bool

	// Purpose-scoped tokens. Empty values leave the purpose unbound.
	DataToken           string
	OperationsToken     string
	CustomerFacingToken string

	// GitHub App identity backing the operations purpose. All three must
	// be set together; the key path points at the PEM-encoded private key.
	AppID             int64
	AppInstallationID int64
	AppPrivateKeyPath string

	// CachePath is the bolt database backing the collection cache; empty
	// keeps the cache in memory.
	CachePath string
}

const (
	defaultPageSize      = 100
	defaultMembersMaxAge = 600
	defaultTeamsMaxAge   = 300
	defaultReposMaxAge   = 600
)

// Load reads configuration from the environment, first merging a local .env
// file when one exists.
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:             os.Getenv("ORGCACHE_BASE_URL"),
		DataToken:           os.Getenv("ORGCACHE_DATA_TOKEN"),
		OperationsToken:     os.Getenv("ORGCACHE_OPERATIONS_TOKEN"),
		CustomerFacingToken: os.Getenv("ORGCACHE_CUSTOMER_TOKEN"),
		CachePath:           os.Getenv("ORGCACHE_CACHE_PATH"),
	}

	var err error
	if cfg.DefaultPageSize, err = intEnv("ORGCACHE_PAGE_SIZE", defaultPageSize); err != nil {
		return nil, err
	}
	if cfg.MembersMaxAgeSeconds, err = intEnv("ORGCACHE_MEMBERS_MAX_AGE", defaultMembersMaxAge); err != nil {
		return nil, err
	}
	if cfg.TeamsMaxAgeSeconds, err = intEnv("ORGCACHE_TEAMS_MAX_AGE", defaultTeamsMaxAge); err != nil {
		return nil, err
	}
	if cfg.ReposMaxAgeSeconds, err = intEnv("ORGCACHE_REPOS_MAX_AGE", defaultReposMaxAge); err != nil {
		return nil, err
	}
	if cfg.PageRequestDelayMillis, err = intEnv("ORGCACHE_PAGE_DELAY_MS", 0); err != nil {
		return nil, err
	}
	if cfg.AppID, err = int64Env("ORGCACHE_APP_ID"); err != nil {
		return nil, err
	}
	if cfg.AppInstallationID, err = int64Env("ORGCACHE_APP_INSTALLATION_ID"); err != nil {
		return nil, err
	}
	cfg.AppPrivateKeyPath = os.Getenv("ORGCACHE_APP_KEY_PATH")
	cfg.DisableSudo = os.Getenv("ORGCACHE_DISABLE_SUDO") == "true"

	if entities := os.Getenv("ORGCACHE_LEGAL_ENTITIES"); entities != "" {
		for _, e := range strings.Split(entities, ",") {
			if e = strings.TrimSpace(e); e != "" {
				cfg.LegalEntities = append(cfg.LegalEntities, e)
			}
		}
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", name, raw, err)
	}
	return v, nil
}

func int64Env(name string) (int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", name, raw, err)
	}
	return v, nil
}

// HasAppCredentials reports whether a complete GitHub App identity is
// configured.
func (c *Config) HasAppCredentials() bool {
	return c.AppID != 0 && c.AppInstallationID != 0 && c.AppPrivateKeyPath != ""
}

func (c *Config) MembersMaxAge() time.Duration {
	return time.Duration(c.MembersMaxAgeSeconds) * time.Second
}

func (c *Config) TeamsMaxAge() time.Duration {
	return time.Duration(c.TeamsMaxAgeSeconds) * time.Second
}

func (c *Config) ReposMaxAge() time.Duration {
	return time.Duration(c.ReposMaxAgeSeconds) * time.Second
}

func (c *Config) PageRequestDelay() time.Duration {
	return time.Duration(c.PageRequestDelayMillis) * time.Millisecond
}
