package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomas-fazzari/ciderfy/internal/models"
	"github.com/thomas-fazzari/ciderfy/internal/repositories"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

type mockSource struct {
	playlists []models.Playlist
	exports   map[string]*models.PlaylistExport
}

func (m *mockSource) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.playlists, nil
}

func (m *mockSource) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	if export, ok := m.exports[playlistID]; ok {
		return export, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

func (m *mockSource) Name() string { return "Spotify" }

type mockCatalog struct {
	lookup map[string]models.CatalogTrack
	search map[string][]models.CatalogTrack
}

func (m *mockCatalog) LookupByISRC(ctx context.Context, codes []string, storefront string) (map[string]models.CatalogTrack, error) {
	hits := make(map[string]models.CatalogTrack)
	for _, code := range codes {
		if track, ok := m.lookup[strings.ToUpper(code)]; ok {
			hits[strings.ToUpper(code)] = track
		}
	}
	return hits, nil
}

func (m *mockCatalog) Search(ctx context.Context, query, storefront string, limit int) ([]models.CatalogTrack, error) {
	for key, tracks := range m.search {
		if strings.Contains(query, key) {
			return tracks, nil
		}
	}
	return nil, nil
}

type mockResolver struct{}

func (m *mockResolver) ResolveISRC(ctx context.Context, title, artist string) (string, error) {
	return "", nil
}

type mockWriter struct {
	name       string
	catalogIDs []string
}

func (m *mockWriter) CreatePlaylist(ctx context.Context, name, description string, catalogIDs []string) (string, error) {
	m.name = name
	m.catalogIDs = catalogIDs
	return "p.new1", nil
}

// testRunner wires a Runner with mock services behind a real engine.
func testRunner(output *bytes.Buffer) (*Runner, *mockWriter) {
	source := &mockSource{
		playlists: []models.Playlist{
			{ID: "pl1", Name: "Road Trip", TrackCount: 3},
			{ID: "pl2", Name: "Focus", TrackCount: 12},
		},
		exports: map[string]*models.PlaylistExport{
			"pl1": {
				Playlist: models.Playlist{ID: "pl1", Name: "Road Trip", TrackCount: 3},
				Tracks: []models.SourceTrack{
					{ID: "t1", Title: "Fortunate Son", Artist: "CCR", DurationMS: 140000, ISRC: "USAAA0000001"},
					{ID: "t2", Title: "Hey Jude", Artist: "The Beatles", DurationMS: 431000},
					{ID: "t3", Title: "Obscure B-Side", Artist: "Nobody", DurationMS: 100000},
				},
			},
		},
	}

	catalog := &mockCatalog{
		lookup: map[string]models.CatalogTrack{
			"USAAA0000001": {ID: "am1", Title: "Fortunate Son", Artist: "CCR", DurationMS: 140000},
		},
		search: map[string][]models.CatalogTrack{
			"Hey Jude": {
				{ID: "am2", Title: "Hey Jude", Artist: "The Beatles", DurationMS: 431000},
			},
		},
	}

	writer := &mockWriter{}
	runner := NewRunner(RunnerOpts{
		Spotify:  source,
		Catalog:  catalog,
		Writer:   writer,
		Resolver: &mockResolver{},
		Output:   output,
	})

	return runner, writer
}

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := newApp(runner)
	return app.Run(context.Background(), append([]string{"ciderfy"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without services leaves engine nil", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.engine != nil {
				t.Error("expected nil engine without services")
			}
		})

		t.Run("with all services assembles engine", func(t *testing.T) {
			runner, _ := testRunner(&bytes.Buffer{})

			if runner.engine == nil {
				t.Error("expected engine to be assembled")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})
	})
}

func TestSyncRun(t *testing.T) {
	t.Run("full reconciliation", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, writer := testRunner(output)

		if err := runCommand(t, runner, "sync", "run", "--source", "Road Trip"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{
			"Reconciliation Complete!",
			"Source: Road Trip (3 tracks)",
			"Matched: 2/3 (66.7%): 1 exact, 1 fuzzy",
			"Created playlist: p.new1",
			"Obscure B-Side",
		} {
			if !strings.Contains(result, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, result)
			}
		}

		if writer.name != "Road Trip" {
			t.Errorf("expected playlist name Road Trip, got %q", writer.name)
		}
		if len(writer.catalogIDs) != 2 || writer.catalogIDs[0] != "am1" || writer.catalogIDs[1] != "am2" {
			t.Errorf("expected catalog IDs [am1 am2], got %v", writer.catalogIDs)
		}
	})

	t.Run("dry run skips playlist creation", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, writer := testRunner(output)

		if err := runCommand(t, runner, "sync", "run", "--source", "pl1", "--dry-run"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Dry Run Complete!") {
			t.Errorf("expected dry-run title, got:\n%s", output.String())
		}
		if writer.catalogIDs != nil {
			t.Errorf("expected no playlist creation, got %v", writer.catalogIDs)
		}
	})

	t.Run("custom playlist name", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, writer := testRunner(output)

		if err := runCommand(t, runner, "sync", "run", "--source", "pl1", "--name", "My Mix"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if writer.name != "My Mix" {
			t.Errorf("expected playlist name My Mix, got %q", writer.name)
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, _ := testRunner(output)

		err := runCommand(t, runner, "sync", "run", "--source", "No Such Playlist")

		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("without engine", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "sync", "run", "--source", "pl1")

		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("writes report when requested", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, _ := testRunner(output)
		reportPath := filepath.Join(t.TempDir(), "report.json")

		if err := runCommand(t, runner, "sync", "run", "--source", "pl1", "--dry-run", "--report", reportPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("expected report file, got %v", err)
		}
		if !strings.Contains(string(data), "Fortunate Son") {
			t.Error("expected report to contain track data")
		}
	})
}

func TestSyncReport(t *testing.T) {
	output := &bytes.Buffer{}
	runner, writer := testRunner(output)
	reportPath := filepath.Join(t.TempDir(), "report.csv")

	if err := runCommand(t, runner, "sync", "report", "--source", "Road Trip", "-o", reportPath); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if writer.catalogIDs != nil {
		t.Errorf("expected report run to skip playlist creation, got %v", writer.catalogIDs)
	}
	if !strings.Contains(output.String(), "Report saved to "+reportPath) {
		t.Errorf("expected save confirmation, got:\n%s", output.String())
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected report file, got %v", err)
	}
	if !strings.HasPrefix(string(data), "Source ID,") {
		t.Error("expected CSV report")
	}
}

func TestSpotifyCommands(t *testing.T) {
	t.Run("playlists plain output", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, _ := testRunner(output)

		if err := runCommand(t, runner, "spotify", "playlists"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Found 2 playlists") {
			t.Errorf("expected playlist count, got:\n%s", result)
		}
		if !strings.Contains(result, "Road Trip (3 tracks)") {
			t.Errorf("expected playlist line, got:\n%s", result)
		}
	})

	t.Run("playlists with limit", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, _ := testRunner(output)

		if err := runCommand(t, runner, "spotify", "playlists", "--limit", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "Found 1 playlists") {
			t.Errorf("expected limited output, got:\n%s", output.String())
		}
	})

	t.Run("playlists JSON output", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, _ := testRunner(output)

		if err := runCommand(t, runner, "spotify", "playlists", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), `"Name":"Road Trip"`) {
			t.Errorf("expected JSON output, got:\n%s", output.String())
		}
	})

	t.Run("playlists without service", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "spotify", "playlists")

		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("auth without credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config: shared.DefaultConfig(),
			Output: &bytes.Buffer{},
		})

		err := runCommand(t, runner, "spotify", "auth")

		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("export unknown playlist", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner, _ := testRunner(output)

		err := runCommand(t, runner, "spotify", "export", "--id", "missing")

		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	newRepo := func(t *testing.T) *repositories.ISRCRepository {
		t.Helper()
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { db.Close() })

		repo := repositories.NewISRCRepository(db)
		if err := repo.InitSchema(context.Background()); err != nil {
			t.Fatalf("failed to init schema: %v", err)
		}
		return repo
	}

	t.Run("stats", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		repo.Put(ctx, "fortunate son", "ccr", "USAAA0000001")
		repo.Put(ctx, "obscure b-side", "nobody", "")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Repo: repo, Output: output})

		if err := runCommand(t, runner, "cache", "stats"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{
			"Cached resolutions: 2",
			"With ISRC: 1",
			"Known misses: 1",
		} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in output, got:\n%s", want, result)
			}
		}
	})

	t.Run("clear", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		repo.Put(ctx, "fortunate son", "ccr", "USAAA0000001")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Repo: repo, Output: output})

		if err := runCommand(t, runner, "cache", "clear"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		total, _, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if total != 0 {
			t.Errorf("expected empty cache, got %d entries", total)
		}
	})

	t.Run("without database", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "cache", "stats")

		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
