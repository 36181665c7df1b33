package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied by the migrate command.
const Schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id               UUID PRIMARY KEY,
	user_id          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	risk_probability DOUBLE PRECISION NOT NULL,
	risk_level       TEXT NOT NULL,
	age              INTEGER NOT NULL,
	diabetes_type    TEXT NOT NULL,
	hba1c            DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS predictions_user_created_idx ON predictions (user_id, created_at DESC);
`

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type PGStore struct {
	db queryable
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

// NewPool opens a pgx pool sized from config and verifies it with a ping.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply predictions schema: %w", err)
	}
	return nil
}

const summaryCols = `id, user_id, created_at, risk_probability, risk_level, age, diabetes_type, hba1c`

func (s *PGStore) Insert(ctx context.Context, sum Summary) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO predictions (`+summaryCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		sum.ID, sum.UserID, sum.CreatedAt, sum.RiskProbability, string(sum.RiskLevel),
		sum.Age, sum.DiabetesType, sum.HbA1c)
	if err != nil {
		return fmt.Errorf("insert prediction summary: %w", err)
	}
	return nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID string, limit int) ([]Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+summaryCols+` FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list prediction summaries: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.CreatedAt, &sum.RiskProbability,
			&sum.RiskLevel, &sum.Age, &sum.DiabetesType, &sum.HbA1c); err != nil {
			return nil, fmt.Errorf("scan prediction summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
