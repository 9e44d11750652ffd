package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxIface captures the pool operations the registry needs. pgxmock
// implements the same surface for tests.
type pgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresProvider implements Provider backed by PostgreSQL via pgx.
//
// Expected schema:
//
//	CREATE TABLE harvested_members (
//	    member_id    TEXT PRIMARY KEY,
//	    run_id       TEXT NOT NULL,
//	    artifact_uri TEXT NOT NULL,
//	    harvested_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE processed_pages (
//	    url          TEXT PRIMARY KEY,
//	    run_id       TEXT NOT NULL,
//	    members      INT NOT NULL,
//	    processed_at TIMESTAMPTZ NOT NULL
//	);
type PostgresProvider struct {
	pool pgxIface
}

// NewPostgresProvider connects a pool and pings it to fail fast on bad
// configuration.
func NewPostgresProvider(ctx context.Context, dsn string) (*PostgresProvider, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresProvider{pool: pool}, nil
}

// newWithPool wires an existing pool; used by tests.
func newWithPool(pool pgxIface) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// RecordMember upserts one harvested member. Conflicts are ignored: the
// first record for an identity wins, matching at-most-once persistence.
func (p *PostgresProvider) RecordMember(ctx context.Context, rec MemberRecord) error {
	const query = `
		INSERT INTO harvested_members (member_id, run_id, artifact_uri, harvested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_id) DO NOTHING
	`
	if _, err := p.pool.Exec(ctx, query, rec.MemberID, rec.RunID, rec.ArtifactURI, rec.HarvestedAt); err != nil {
		return fmt.Errorf("insert member record: %w", err)
	}
	return nil
}

// RecordPage upserts one processed page, keeping the most recent visit.
func (p *PostgresProvider) RecordPage(ctx context.Context, rec PageRecord) error {
	const query = `
		INSERT INTO processed_pages (url, run_id, members, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (url) DO UPDATE
		SET run_id = EXCLUDED.run_id, members = EXCLUDED.members, processed_at = EXCLUDED.processed_at
	`
	if _, err := p.pool.Exec(ctx, query, rec.URL, rec.RunID, rec.Members, rec.ProcessedAt); err != nil {
		return fmt.Errorf("insert page record: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresProvider) Close() error {
	p.pool.Close()
	return nil
}
