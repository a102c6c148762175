package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS mentions (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	source     TEXT NOT NULL,
	sentiment  TEXT NOT NULL DEFAULT 'neutral',
	topic      TEXT NOT NULL,
	url        TEXT,
	timestamp  TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_mentions_url ON mentions(url) WHERE url IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_mentions_timestamp ON mentions(timestamp);

CREATE TABLE IF NOT EXISTS tracked_query (
	name       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists mentions and the tracked query in a local SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at path and applies the schema.
// Safe to call multiple times against the same file.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent fetch cycles.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Exists reports whether a mention with the given URL is already stored.
func (s *SQLiteStore) Exists(ctx context.Context, url string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM mentions WHERE url = ?", url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check mention existence: %w", err)
	}
	return count > 0, nil
}

// Save persists a finalized mention.
func (s *SQLiteStore) Save(ctx context.Context, mention *models.Mention) error {
	url := sql.NullString{String: mention.URL, Valid: mention.URL != ""}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO mentions (id, text, source, sentiment, topic, url, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)",
		mention.ID, mention.Text, mention.Source, mention.Sentiment, mention.Topic, url, mention.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save mention: %w", err)
	}
	return nil
}

// Recent returns mentions with a timestamp at or after since, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, since time.Time) ([]models.Mention, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, source, sentiment, topic, url, timestamp FROM mentions WHERE timestamp >= ? ORDER BY timestamp DESC",
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent mentions: %w", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// Latest returns the newest limit mentions, newest first.
func (s *SQLiteStore) Latest(ctx context.Context, limit int) ([]models.Mention, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, source, sentiment, topic, url, timestamp FROM mentions ORDER BY timestamp DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest mentions: %w", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// DeleteAllMentions discards all stored mentions.
func (s *SQLiteStore) DeleteAllMentions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM mentions"); err != nil {
		return fmt.Errorf("failed to delete mentions: %w", err)
	}
	return nil
}

// LoadActiveQuery returns the tracked query, or nil when none is set.
func (s *SQLiteStore) LoadActiveQuery(ctx context.Context) (*models.TrackedQuery, error) {
	var query models.TrackedQuery
	err := s.db.QueryRowContext(ctx,
		"SELECT name, created_at FROM tracked_query LIMIT 1").Scan(&query.Name, &query.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked query: %w", err)
	}
	return &query, nil
}

// ReplaceActiveQuery removes any existing tracked query and stores a new
// one in a single transaction.
func (s *SQLiteStore) ReplaceActiveQuery(ctx context.Context, name string) (*models.TrackedQuery, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tracked_query"); err != nil {
		return nil, fmt.Errorf("failed to clear tracked query: %w", err)
	}

	query := &models.TrackedQuery{Name: name, CreatedAt: time.Now().UTC()}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO tracked_query (name, created_at) VALUES (?, ?)",
		query.Name, query.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert tracked query: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tracked query: %w", err)
	}
	return query, nil
}

// ClearActiveQuery removes the tracked query if one is set.
func (s *SQLiteStore) ClearActiveQuery(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tracked_query"); err != nil {
		return fmt.Errorf("failed to clear tracked query: %w", err)
	}
	return nil
}

func scanMentions(rows *sql.Rows) ([]models.Mention, error) {
	var mentions []models.Mention

	for rows.Next() {
		var m models.Mention
		var url sql.NullString
		if err := rows.Scan(&m.ID, &m.Text, &m.Source, &m.Sentiment, &m.Topic, &url, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		m.URL = url.String
		mentions = append(mentions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mention rows: %w", err)
	}
	return mentions, nil
}
