package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with the cache schema applied
func setupTestDB(t *testing.T) (*sql.DB, *ISRCRepository) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewISRCRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	return db, repo
}

func TestISRCRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get Missing", func(t *testing.T) {
		_, repo := setupTestDB(t)

		code, found, err := repo.Get(ctx, "fortunate son", "ccr")
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if found || code != "" {
			t.Errorf("Get() = (%q, %v), want miss", code, found)
		}
	})

	t.Run("Put Then Get", func(t *testing.T) {
		_, repo := setupTestDB(t)

		if err := repo.Put(ctx, "fortunate son", "ccr", "USFI16900604"); err != nil {
			t.Fatalf("Put() returned error: %v", err)
		}

		code, found, err := repo.Get(ctx, "fortunate son", "ccr")
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if !found || code != "USFI16900604" {
			t.Errorf("Get() = (%q, %v), want stored code", code, found)
		}
	})

	t.Run("Negative Entry", func(t *testing.T) {
		_, repo := setupTestDB(t)

		if err := repo.Put(ctx, "obscure b-side", "nobody", ""); err != nil {
			t.Fatalf("Put() returned error: %v", err)
		}

		code, found, err := repo.Get(ctx, "obscure b-side", "nobody")
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if !found {
			t.Error("known miss not recorded")
		}
		if code != "" {
			t.Errorf("code = %q, want empty", code)
		}
	})

	t.Run("Upsert Replaces", func(t *testing.T) {
		_, repo := setupTestDB(t)

		if err := repo.Put(ctx, "song", "artist", ""); err != nil {
			t.Fatalf("first Put() returned error: %v", err)
		}
		if err := repo.Put(ctx, "song", "artist", "GBUM71029604"); err != nil {
			t.Fatalf("second Put() returned error: %v", err)
		}

		code, found, err := repo.Get(ctx, "song", "artist")
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if !found || code != "GBUM71029604" {
			t.Errorf("Get() = (%q, %v), want replaced code", code, found)
		}

		total, _, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() returned error: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d after upsert, want 1", total)
		}
	})

	t.Run("Distinct Artists Distinct Entries", func(t *testing.T) {
		_, repo := setupTestDB(t)

		if err := repo.Put(ctx, "one", "first artist", "USAAA0000001"); err != nil {
			t.Fatalf("Put() returned error: %v", err)
		}
		if err := repo.Put(ctx, "one", "second artist", "USBBB0000001"); err != nil {
			t.Fatalf("Put() returned error: %v", err)
		}

		code, _, err := repo.Get(ctx, "one", "second artist")
		if err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if code != "USBBB0000001" {
			t.Errorf("code = %q, want second artist's entry", code)
		}
	})

	t.Run("Count And Clear", func(t *testing.T) {
		_, repo := setupTestDB(t)

		entries := map[string]string{
			"a": "USAAA0000001",
			"b": "",
			"c": "USCCC0000001",
		}
		for title, code := range entries {
			if err := repo.Put(ctx, title, "artist", code); err != nil {
				t.Fatalf("Put(%q) returned error: %v", title, err)
			}
		}

		total, hits, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() returned error: %v", err)
		}
		if total != 3 || hits != 2 {
			t.Errorf("Count() = (%d, %d), want (3, 2)", total, hits)
		}

		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("Clear() returned error: %v", err)
		}
		total, _, err = repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() after Clear returned error: %v", err)
		}
		if total != 0 {
			t.Errorf("total = %d after Clear, want 0", total)
		}
	})
}
