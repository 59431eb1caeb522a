package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/thomas-fazzari/ciderfy/internal/repositories"
	"github.com/thomas-fazzari/ciderfy/internal/services"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
	"github.com/urfave/cli/v3"
)

func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "ciderfy",
		Usage:    "Reconcile Spotify playlists against the Apple Music catalog",
		Version:  "0.1.0",
		Commands: runner.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.SourceLibrary
	spotifyCreds := config.Credentials.Spotify
	if spotifyCreds.ClientID != "" && spotifyCreds.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(spotifyCreds.ClientID, spotifyCreds.ClientSecret, spotifyCreds.RedirectURI); err == nil {
			if spotifyCreds.AccessToken != "" {
				if err := svc.Authenticate(ctx, spotifyCreds.AccessToken, ""); err != nil {
					logger.Warn("failed to install saved spotify token", "error", err)
				}
			}
			spotifyService = svc
		}
	}

	var catalog services.Catalog
	var writer services.PlaylistWriter
	if config.Credentials.AppleMusic.DeveloperToken != "" {
		appleMusic := services.NewAppleMusicService(
			"",
			config.Credentials.AppleMusic.DeveloperToken,
			config.Credentials.AppleMusic.MusicUserToken,
			time.Duration(config.Pacing.AppleMusicMS)*time.Millisecond,
		)
		catalog = appleMusic
		writer = appleMusic
	}

	var resolver services.CodeResolver = services.NewMusicBrainzService(
		"", time.Duration(config.Pacing.MusicBrainzMS)*time.Millisecond,
	)

	// The ISRC cache is wired only once 'setup database' has created the file.
	var repo *repositories.ISRCRepository
	if config.Database.Path != "" {
		if _, err := os.Stat(config.Database.Path); err == nil {
			if db, err := shared.NewDatabase(config.Database.Path); err == nil {
				defer db.Close()
				shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
				candidate := repositories.NewISRCRepository(db)
				if err := candidate.InitSchema(ctx); err != nil {
					logger.Warn("failed to prepare cache schema, resolving without cache", "error", err)
				} else {
					repo = candidate
					resolver = services.NewCachedCodeResolver(resolver, repo, logger)
				}
			} else {
				logger.Warn("failed to open database, resolving without cache", "error", err)
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Spotify:  spotifyService,
		Catalog:  catalog,
		Writer:   writer,
		Resolver: resolver,
		Repo:     repo,
		Logger:   logger,
	})

	app := newApp(runner)

	if err := app.Run(ctx, os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
