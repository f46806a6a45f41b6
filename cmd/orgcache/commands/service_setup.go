package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"go.etcd.io/bbolt"

	"github.com/opsgate/orgcache"
	"github.com/opsgate/orgcache/pkg/auth"
	"github.com/opsgate/orgcache/pkg/colcache"
	"github.com/opsgate/orgcache/pkg/config"
	"github.com/opsgate/orgcache/pkg/credentials"
	"github.com/opsgate/orgcache/pkg/remote"
	"github.com/opsgate/orgcache/pkg/settings"
)

// setupService handles the common logic of loading configuration, routing
// credentials and initializing the service behind every command that talks
// to GitHub. Tokens from the environment win; purposes without one fall
// back to the keyring token stored by 'orgcache auth login'.
func setupService(ctx *cliCtx) (*orgcache.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	keyringSource := credentials.Keyring{
		Service: auth.ServiceName,
		User:    auth.GithubToken,
		Store:   ctx.OSKeyring,
	}
	source := func(token string) credentials.TokenSource {
		if token != "" {
			return credentials.Static(token)
		}
		return keyringSource
	}
	// A configured GitHub App outranks a static token for privileged
	// writes: installation tokens are short-lived and scoped to the app.
	operations := source(cfg.OperationsToken)
	if cfg.HasAppCredentials() {
		key, err := os.ReadFile(cfg.AppPrivateKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading app private key: %w", err)
		}
		operations, err = credentials.NewInstallation(cfg.AppID, cfg.AppInstallationID, key, cfg.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("configuring app credentials: %w", err)
		}
	}

	router := credentials.NewRouter(map[credentials.Purpose]credentials.TokenSource{
		credentials.PurposeData:           source(cfg.DataToken),
		credentials.PurposeOperations:     operations,
		credentials.PurposeCustomerFacing: source(cfg.CustomerFacingToken),
	})

	var store colcache.Store = colcache.NewMemoryStore()
	cleanup := func() {}
	if cfg.CachePath != "" {
		db, err := bbolt.Open(cfg.CachePath, 0o600, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache at %s: %w", cfg.CachePath, err)
		}
		store = colcache.NewBoltStore(db)
		cleanup = func() { db.Close() }
	}
	fetcher := colcache.NewFetcher(store, ctx.Logger)

	client := remote.New(
		remote.WithEnterpriseURL(cfg.BaseURL),
		remote.WithPageSize(cfg.DefaultPageSize),
	)

	return orgcache.NewService(cfg, client, fetcher, router, ctx.Logger), cleanup, nil
}

// loadSetting reads the organization settings file given on the command
// line. No file means an active organization with no overrides.
func loadSetting(path string) (*settings.OrganizationSetting, error) {
	if path == "" {
		return &settings.OrganizationSetting{Active: true}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	var setting settings.OrganizationSetting
	if err := json.Unmarshal(data, &setting); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	return &setting, nil
}

// openOrg builds the per-command organization view.
func openOrg(ctx *cliCtx, name string) (*orgcache.Organization, func(), error) {
	svc, cleanup, err := setupService(ctx)
	if err != nil {
		return nil, nil, err
	}
	setting, err := loadSetting(ctx.SettingsPath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc.Organization(name, setting), cleanup, nil
}
