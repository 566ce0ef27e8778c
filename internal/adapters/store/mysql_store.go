package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
)

// MySQLStore is a MySQL-backed SafetyStore for deployments that already run
// a MySQL instance for other host-side state.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to MySQL using the given DSN.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tab_safety (
			tab_key VARCHAR(64) PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// Put stores the record for a tab, replacing any previous one.
func (s *MySQLStore) Put(ctx context.Context, tabID int, record *core.SafetyRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode safety record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tab_safety (tab_key, record)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE record = VALUES(record)
	`, tabKey(tabID), string(payload))
	if err != nil {
		return fmt.Errorf("failed to store safety record: %w", err)
	}
	return nil
}

// Get retrieves the record for a tab.
func (s *MySQLStore) Get(ctx context.Context, tabID int) (*core.SafetyRecord, bool, error) {
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
func (s *MySQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL connection", zap.Error(err))
		return err
	}
	return nil
}
