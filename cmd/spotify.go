package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/thomas-fazzari/ciderfy/internal/services"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
	"github.com/urfave/cli/v3"
)

// SpotifyAuth performs the OAuth2 authorization-code flow for Spotify.
//
// Prints the authorization URL, reads the redirected code from stdin, and
// saves the exchanged tokens back to the config file.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	creds := config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	spotifyService, err := services.NewSpotifyService(creds.ClientID, creds.ClientSecret, creds.RedirectURI)
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	authURL := spotifyService.GetAuthURL(shared.GenerateID())
	r.writePlain("Open this URL in your browser and authorize the application:\n\n")
	r.writePlain("%s\n\n", authURL)
	r.writePlain("After authorizing you will be redirected to %s.\n", creds.RedirectURI)
	r.writePlain("Paste the 'code' query parameter from that URL here: ")

	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		return fmt.Errorf("%w: no authorization code provided", shared.ErrMissingArgument)
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return fmt.Errorf("%w: no authorization code provided", shared.ErrMissingArgument)
	}

	if err := spotifyService.Authenticate(ctx, "", code); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	token := spotifyService.Token()
	config.Credentials.Spotify.AccessToken = token.AccessToken
	config.Credentials.Spotify.RefreshToken = token.RefreshToken

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: ciderfy spotify playlists\n")

	return nil
}

// SpotifyPlaylists lists Spotify playlists with optional limit.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("listing spotify playlists with limit %v", limit)

	playlists, err := r.spotify.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, playlist := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, playlist.Name, playlist.TrackCount)
		r.writePlain("   ID: %s\n", playlist.ID)
	}

	return nil
}

// SpotifyExport exports a playlist with all its tracks as JSON.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	pretty := cmd.Bool("pretty")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("exporting spotify playlist %v", playlistID)

	export, err := r.spotify.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	return r.writeJSON(export, pretty)
}
