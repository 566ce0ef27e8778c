package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
)

// SQLiteStore is a SQLite-backed SafetyStore for setups where the host
// process restarts more often than the browser session.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if needed creates) the SQLite database.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tab_safety (
			tab_key TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Put stores the record for a tab, replacing any previous one.
func (s *SQLiteStore) Put(ctx context.Context, tabID int, record *core.SafetyRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode safety record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tab_safety (tab_key, record, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, tabKey(tabID), string(payload))
	if err != nil {
		return fmt.Errorf("failed to store safety record: %w", err)
	}
	return nil
}

// Get retrieves the record for a tab.
func (s *SQLiteStore) Get(ctx context.Context, tabID int) (*core.SafetyRecord, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM tab_safety WHERE tab_key = ?
	`, tabKey(tabID)).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query safety record: %w", err)
	}

	var record core.SafetyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, false, fmt.Errorf("failed to decode safety record: %w", err)
	}
	return &record, true, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
		return err
	}
	return nil
}

// tabKey namespaces a tab id into its storage key.
func tabKey(tabID int) string {
	return fmt.Sprintf("safety_%d", tabID)
}
