// Package orgcache presents GitHub organizations, teams, members and
// repositories to many concurrent callers with bounded staleness, routing
// every upstream call through a purpose-scoped credential and a shared
// collection cache.
package orgcache

import (
	"errors"
	"log/slog"

	"github.com/opsgate/orgcache/pkg/colcache"
	"github.com/opsgate/orgcache/pkg/config"
	"github.com/opsgate/orgcache/pkg/credentials"
	"github.com/opsgate/orgcache/pkg/querycache"
	"github.com/opsgate/orgcache/pkg/settings"
)

// ErrConfig marks configuration-integrity faults: a broken deployment
// configuration, not a transient condition. Callers must not retry.
var ErrConfig = errors.New("organization configuration fault")

// ErrInactive rejects writes against an organization whose settings mark it
// inactive. Reads stay available so listings and capability checks keep
// working while an organization is being offboarded.
var ErrInactive = errors.New("organization is not active")

// Service is the shared context behind every Organization: configuration,
// the remote client, the collection cache, and the credential router.
// QueryCache is the optional secondary query cache; nil disables
// best-effort synchronization.
type Service struct {
	Config      *config.Config
	Remote      RemoteClient
	Fetcher     *colcache.Fetcher
	Credentials *credentials.Router
	QueryCache  querycache.Cache
	Logger      *slog.Logger
}

func NewService(cfg *config.Config, remote RemoteClient, fetcher *colcache.Fetcher, creds *credentials.Router, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Config:      cfg,
		Remote:      remote,
		Fetcher:     fetcher,
		Credentials: creds,
		Logger:      logger,
	}
}

// Organization builds a per-request view of one organization. The name
// falls back to the given value unless the setting overrides it; setting is
// externally owned and may differ between requests.
func (s *Service) Organization(name string, setting *settings.OrganizationSetting) *Organization {
	if override, ok := setting.Property("name"); ok && override != "" {
		name = override
	}
	return &Organization{name: name, setting: setting, svc: s}
}
