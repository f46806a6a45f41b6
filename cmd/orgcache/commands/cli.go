package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/opsgate/orgcache/pkg/oskeyring"
)

type cliCtx struct {
	Debug bool
	context.Context
	Logger    *slog.Logger
	OSKeyring oskeyring.Service

	// SettingsPath points at the organization settings JSON file; empty
	// means an active organization with no overrides.
	SettingsPath string
}

type cli struct {
	Auth        AuthCmd        `cmd:"" help:"Manage GitHub authentication."`
	Members     MembersCmd     `cmd:"" help:"List organization members."`
	Teams       TeamsCmd       `cmd:"" help:"List organization teams."`
	Repos       ReposCmd       `cmd:"" help:"List organization repositories."`
	ResolveTeam ResolveTeamCmd `cmd:"" name:"resolve-team" help:"Resolve a team by slug, name or id."`
	Sudo        SudoCmd        `cmd:"" help:"Check whether a user is a sudoer of an organization."`
	Refresh     RefreshCmd     `cmd:"" help:"Warm the collection cache for an organization."`

	Debug    bool             `help:"Enable debug logging." short:"d"`
	Settings string           `help:"Path to an organization settings JSON file." type:"path" short:"s"`
	Version  kong.VersionFlag `help:"Show version"`
}

func Execute(version string) {
	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("orgcache"),
		kong.Description("orgcache inspects and manages GitHub organizations through a shared collection cache"),
		kong.Vars{"version": version},
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(&cliCtx{
		Debug:        cli.Debug,
		Context:      context.Background(),
		Logger:       logger,
		OSKeyring:    oskeyring.NewDefaultService(),
		SettingsPath: cli.Settings,
	})
	ctx.FatalIfErrorf(err)
}
