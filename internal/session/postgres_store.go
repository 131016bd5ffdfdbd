package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS dashboard_sessions (
    id          TEXT PRIMARY KEY,
    user_id     BIGINT NOT NULL,
    data        JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    last_seen   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dashboard_sessions_last_seen ON dashboard_sessions (last_seen);
`

// sessionRow maps a dashboard_sessions row.
type sessionRow struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	LastSeen  time.Time `db:"last_seen"`
}

// PostgresStore keeps sessions in Postgres so they survive restarts and are
// shared between instances.
type PostgresStore struct {
	DB *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// EnsureSchema creates the sessions table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("creating session schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	row := sessionRow{
		ID:        rec.ID,
		UserID:    rec.Principal.ID,
		Data:      string(data),
		CreatedAt: rec.CreatedAt,
		LastSeen:  rec.LastSeen,
	}
	query := `INSERT INTO dashboard_sessions (id, user_id, data, created_at, last_seen)
	          VALUES (:id, :user_id, :data, :created_at, :last_seen)
	          ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data,
	              last_seen = GREATEST(dashboard_sessions.last_seen, EXCLUDED.last_seen)`
	if _, err := s.DB.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("saving session %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*Record, error) {
	var row sessionRow
	err := s.DB.GetContext(ctx, &row, `SELECT id, user_id, data, created_at, last_seen FROM dashboard_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	rec, err := decodeRecord(id, []byte(row.Data))
	if err != nil {
		return nil, err
	}
	rec.LastSeen = row.LastSeen
	return rec, nil
}

// TouchLastSeen moves the last_seen column only; data is left alone.
func (s *PostgresStore) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE dashboard_sessions SET last_seen = GREATEST(last_seen, $2) WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touching session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM dashboard_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// PurgeIdle deletes sessions not seen since before. Sessions of a stopped
// instance have no timer left, so this sweep is what removes them.
func (s *PostgresStore) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM dashboard_sessions WHERE last_seen < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purging idle sessions: %w", err)
	}
	return res.RowsAffected()
}
