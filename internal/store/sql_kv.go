package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"propertypal/common/database"
)

// SQLKV KV over a single kv_slots table. Works on sqlite and postgres.
// Expired rows are treated as misses and removed lazily.
type SQLKV struct {
	db      *sql.DB
	dialect database.Dialect
	now     func() time.Time
}

func NewSQLKV(db *sql.DB, dialect database.Dialect) *SQLKV {
	return &SQLKV{db: db, dialect: dialect, now: time.Now}
}

// EnsureSchema creates the backing table if needed.
func (s *SQLKV) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key TEXT PRIMARY KEY,
		slot_value TEXT NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return fmt.Errorf("create kv_slots: %w", err)
	}
	return nil
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var (
		value     string
		expiresAt int64
	)
	q := fmt.Sprintf(`SELECT slot_value, expires_at FROM kv_slots WHERE slot_key = %s`, s.dialect.Placeholder(1))
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMiss
		}
		return "", err
	}
	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		_ = s.Delete(ctx, key)
		return "", ErrMiss
	}
	return value, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}
	q := fmt.Sprintf(`INSERT INTO kv_slots (slot_key, slot_value, expires_at) VALUES (%s, %s, %s)
		ON CONFLICT (slot_key) DO UPDATE SET slot_value = excluded.slot_value, expires_at = excluded.expires_at`,
		s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3))
	_, err := s.db.ExecContext(ctx, q, key, value, expiresAt)
	return err
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	q := fmt.Sprintf(`DELETE FROM kv_slots WHERE slot_key = %s`, s.dialect.Placeholder(1))
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}
