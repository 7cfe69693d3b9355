package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"statement_scraper/pkg/core/calc"
	"statement_scraper/pkg/core/features"
	"statement_scraper/pkg/core/statement"
)

// ErrSnapshotNotFound is returned by LoadSnapshot when a company has no
// stored run.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is everything one session produced.
type Snapshot struct {
	RunID      uuid.UUID          `json:"run_id"`
	Company    string             `json:"company"`
	Schema     string             `json:"schema"`
	CreatedAt  time.Time          `json:"created_at"`
	Statements []*statement.Table `json:"statements"`
	Features   *features.Table    `json:"features,omitempty"`
	Metrics    *calc.MetricsTable `json:"metrics,omitempty"`
}

// Statement returns the snapshot's table for kind.
func (s *Snapshot) Statement(kind statement.Kind) (*statement.Table, bool) {
	for _, t := range s.Statements {
		if t.Kind == kind {
			return t, true
		}
	}
	return nil, false
}

// Repository persists session snapshots.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LoadSnapshot(ctx context.Context, company string) (*Snapshot, error)
}

// SnapshotRepo stores snapshots as JSONB rows keyed by run id.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS statement_snapshots (
//	  run_id     UUID PRIMARY KEY,
//	  company    TEXT NOT NULL,
//	  schema     TEXT NOT NULL,
//	  data       JSONB NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL
//	);
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepo creates a repository on p, or on the shared pool when p
// is nil.
func NewSnapshotRepo(p *pgxpool.Pool) *SnapshotRepo {
	if p == nil {
		p = GetPool()
	}
	return &SnapshotRepo{pool: p}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS statement_snapshots (
			run_id     UUID PRIMARY KEY,
			company    TEXT NOT NULL,
			schema     TEXT NOT NULL,
			data       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS statement_snapshots_company_idx
			ON statement_snapshots (company, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return nil
}

// SaveSnapshot upserts snap under its run id.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO statement_snapshots (run_id, company, schema, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id)
		DO UPDATE SET
			data = EXCLUDED.data,
			schema = EXCLUDED.schema,
			created_at = EXCLUDED.created_at;
	`
	_, err = r.pool.Exec(ctx, query, snap.RunID, snap.Company, snap.Schema, data, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the most recent snapshot for company.
func (r *SnapshotRepo) LoadSnapshot(ctx context.Context, company string) (*Snapshot, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT data FROM statement_snapshots
		WHERE company = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var data []byte
	if err := r.pool.QueryRow(ctx, query, company).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, company)
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
