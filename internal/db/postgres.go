// internal/db/postgres.go
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Postgres bundles the pgx pool used by most repositories and the sqlx
// handle the attachment repository runs on.
type Postgres struct {
	Pool *pgxpool.Pool
	DB   *sqlx.DB
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	sqlxDB, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open sqlx handle: %w", err)
	}

	log.Println("[Postgres] Connected")
	return &Postgres{Pool: pool, DB: sqlxDB}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if p.DB != nil {
		p.DB.Close()
	}
}
