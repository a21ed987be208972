package trace

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteFlagStore keeps the trace flag in a one-row settings table so it can
// share a database file with whatever else the host application persists.
type SQLiteFlagStore struct {
	db *sql.DB
}

var _ FlagStore = &SQLiteFlagStore{}

const traceFlagKey = "trace_enabled"

func NewSQLiteFlagStore(dsn string) (*SQLiteFlagStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite flag store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite flag store: open")
	}
	s := &SQLiteFlagStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteFlagStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trace_settings (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`)
	return errors.Wrap(err, "sqlite flag store: migrate")
}

func (s *SQLiteFlagStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteFlagStore) Load(ctx context.Context) (bool, bool, error) {
	if s == nil || s.db == nil {
		return false, false, errors.New("sqlite flag store: db is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var value int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM trace_settings WHERE key = ?`, traceFlagKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, errors.Wrap(err, "sqlite flag store: load")
	}
	return value != 0, true, nil
}

func (s *SQLiteFlagStore) Save(ctx context.Context, enabled bool) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite flag store: db is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	value := int64(0)
	if enabled {
		value = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trace_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		traceFlagKey, value)
	return errors.Wrap(err, "sqlite flag store: save")
}
