package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/jesses-code-adventures/biz/internal/config"
	"github.com/jesses-code-adventures/biz/internal/models"
)

type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SweepEntry records one status change issued by the boundary sweep.
type SweepEntry struct {
	ID         string    `json:"id" db:"id"`
	Kind       string    `json:"kind" db:"kind"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Label      string    `json:"label" db:"label"`
	FromStatus string    `json:"from_status" db:"from_status"`
	ToStatus   string    `json:"to_status" db:"to_status"`
	Error      *string   `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sweep_log (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	label TEXT NOT NULL,
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	error TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sweep_log_created_at ON sweep_log (created_at);
`

type SQLiteDB struct {
	conn *sql.DB
}

func NewDB(cfg *config.Config) (*SQLiteDB, error) {
	conn, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SQLiteDB{conn: conn}
	if err := s.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDB) migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Close() error {
	return s.conn.Close()
}

// GetSetting returns nil, nil when the key has never been written.
func (s *SQLiteDB) GetSetting(ctx context.Context, key string) (*Setting, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)

	var setting Setting
	if err := row.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &setting, nil
}

func (s *SQLiteDB) PutSetting(ctx context.Context, key, value string) (*Setting, error) {
	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return &Setting{Key: key, Value: value, UpdatedAt: now}, nil
}

func (s *SQLiteDB) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// GetBankingDetails returns nil, nil when no default has been saved.
func (s *SQLiteDB) GetBankingDetails(ctx context.Context) (*models.BankingDetails, error) {
	setting, err := s.GetSetting(ctx, SettingBankingDetails)
	if err != nil || setting == nil {
		return nil, err
	}

	var details models.BankingDetails
	if err := json.Unmarshal([]byte(setting.Value), &details); err != nil {
		return nil, fmt.Errorf("failed to decode stored banking details: %w", err)
	}
	return &details, nil
}

func (s *SQLiteDB) SaveBankingDetails(ctx context.Context, details *models.BankingDetails) error {
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode banking details: %w", err)
	}
	_, err = s.PutSetting(ctx, SettingBankingDetails, string(b))
	return err
}

func (s *SQLiteDB) RecordSweepEntry(ctx context.Context, entry *SweepEntry) error {
	if entry.ID == "" {
		entry.ID = models.NewUUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO sweep_log (id, kind, entity_id, label, from_status, to_status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.EntityID, entry.Label, entry.FromStatus, entry.ToStatus,
		ptrToNullString(entry.Error), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record sweep entry: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListSweepEntries(ctx context.Context, limit int32) ([]*SweepEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, kind, entity_id, label, from_status, to_status, error, created_at
		FROM sweep_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep entries: %w", err)
	}
	defer rows.Close()

	var result []*SweepEntry
	for rows.Next() {
		var entry SweepEntry
		var errText sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Kind, &entry.EntityID, &entry.Label,
			&entry.FromStatus, &entry.ToStatus, &errText, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sweep entry: %w", err)
		}
		entry.Error = nullStringToPtr(errText)
		result = append(result, &entry)
	}
	return result, rows.Err()
}

func nullStringToPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func ptrToNullString(s *string) sql.NullString {
	if s != nil {
		return sql.NullString{String: *s, Valid: true}
	}
	return sql.NullString{Valid: false}
}
