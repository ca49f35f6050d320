package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDBPool initializes a new pgx connection pool using the provided
// configuration and runs the schema migration once before returning.
func NewDBPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id                    TEXT PRIMARY KEY,
    character_name        TEXT NOT NULL,
    character_description TEXT NOT NULL DEFAULT '',
    character_image       TEXT NOT NULL DEFAULT '',
    story_type            TEXT NOT NULL,
    plot_points           TEXT[] NOT NULL,
    status                TEXT NOT NULL DEFAULT 'pending',
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scenes (
    job_id       TEXT NOT NULL REFERENCES jobs(id),
    scene_number INT NOT NULL,
    story_text   TEXT NOT NULL,
    image_prompt TEXT NOT NULL,
    image_data   TEXT,
    PRIMARY KEY (job_id, scene_number)
);

CREATE INDEX IF NOT EXISTS idx_scenes_job_id ON scenes(job_id);
`

// Migrate applies the schema. It is idempotent and runs at startup, keeping
// table creation out of the request path.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
