package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thomas-fazzari/ciderfy/internal/shared"
)

const isrcSchema = `
	CREATE TABLE IF NOT EXISTS isrc_cache (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		isrc TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (title, artist)
	);
	CREATE INDEX IF NOT EXISTS idx_isrc_cache_isrc ON isrc_cache(isrc);
`

// ISRCRepository persists resolved codes keyed by normalized title/artist.
//
// Implements services.ISRCStore.
type ISRCRepository struct {
	db *sql.DB
}

// NewISRCRepository creates a new ISRCRepository with the given database connection
func NewISRCRepository(db *sql.DB) *ISRCRepository {
	return &ISRCRepository{db: db}
}

// InitSchema creates the cache table when it does not exist yet.
func (r *ISRCRepository) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, isrcSchema); err != nil {
		return fmt.Errorf("failed to create isrc_cache schema: %w", err)
	}
	return nil
}

// Get retrieves a cached code. found is false when the pair was never
// resolved; an empty code with found true records a known miss.
func (r *ISRCRepository) Get(ctx context.Context, title, artist string) (string, bool, error) {
	query := `SELECT isrc FROM isrc_cache WHERE title = ? AND artist = ?`

	var code string
	err := r.db.QueryRowContext(ctx, query, title, artist).Scan(&code)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query isrc cache: %w", err)
	}

	return code, true, nil
}

// Put stores a resolution, replacing any previous entry for the pair.
func (r *ISRCRepository) Put(ctx context.Context, title, artist, code string) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO isrc_cache (id, title, artist, isrc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (title, artist) DO UPDATE SET isrc = excluded.isrc, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, shared.GenerateID(), title, artist, code, now, now); err != nil {
		return fmt.Errorf("failed to upsert isrc cache entry: %w", err)
	}

	return nil
}

// Count returns the number of cached entries and how many of them are hits
// (carry a non-empty code).
func (r *ISRCRepository) Count(ctx context.Context) (total, hits int, err error) {
	query := `SELECT COUNT(*), COUNT(CASE WHEN isrc != '' THEN 1 END) FROM isrc_cache`

	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &hits); err != nil {
		return 0, 0, fmt.Errorf("failed to count isrc cache: %w", err)
	}

	return total, hits, nil
}

// Clear removes every cached entry.
func (r *ISRCRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM isrc_cache`); err != nil {
		return fmt.Errorf("failed to clear isrc cache: %w", err)
	}
	return nil
}
