package funnel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// stateRow maps to the funnel_state table (see db/ migrations).
type stateRow struct {
	SessionID string    `db:"session_id"`
	Step      string    `db:"step"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PostgresStore keeps blobs in the funnel_state table, one row per
// (session_id, step).
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPool creates a connection pool. Simple query protocol avoids "cached
// plan must not change result type" errors from poolers after schema changes.
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// Save upserts the blob. The (session_id, step) primary key means a second
// save for the same step replaces the first.
func (s *PostgresStore) Save(ctx context.Context, sessionID, step string, data []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO funnel_state (session_id, step, data, updated_at)
		 VALUES (@sessionID, @step, @data, now())
		 ON CONFLICT (session_id, step) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		pgx.NamedArgs{"sessionID": sessionID, "step": step, "data": string(data)})
	return err
}

func (s *PostgresStore) Load(ctx context.Context, sessionID, step string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		"SELECT data FROM funnel_state WHERE session_id = @sessionID AND step = @step",
		pgx.NamedArgs{"sessionID": sessionID, "step": step}).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID, step string) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM funnel_state WHERE session_id = @sessionID AND step = @step",
		pgx.NamedArgs{"sessionID": sessionID, "step": step})
	return err
}

func (s *PostgresStore) List(ctx context.Context, step string) ([]Entry, error) {
	rows, err := queryMany[stateRow](ctx, s.db,
		`SELECT session_id, step, data, updated_at FROM funnel_state
		 WHERE step = @step
		 ORDER BY updated_at DESC`,
		pgx.NamedArgs{"step": step})
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{SessionID: r.SessionID, Step: r.Step, Data: r.Data, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}
