// Package postgres provides a MetadataStore backed by PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool and table names.
type Config struct {
	DSN             string
	LandingTable    string
	StagingTable    string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store writes harvest metadata rows into Postgres.
type Store struct {
	pool    dbPool
	landing string
	staging string
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("metadata.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewWithPool(pool, cfg.LandingTable, cfg.StagingTable)
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool dbPool, landingTable, stagingTable string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if landingTable == "" {
		landingTable = "lnd_documents_metadata"
	}
	if stagingTable == "" {
		stagingTable = "stg_documents_metadata"
	}
	for _, table := range []string{landingTable, stagingTable} {
		if !validTableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return &Store{pool: pool, landing: landingTable, staging: stagingTable}, nil
}

// UpsertLanding inserts or fully replaces the landing row keyed by id.
func (s *Store) UpsertLanding(ctx context.Context, rec harvest.HarvestRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	title,
	description,
	doc_date,
	partition_date,
	partition_ts,
	source_url,
	document_url,
	file_type,
	file_path,
	file_hash
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	doc_date = EXCLUDED.doc_date,
	partition_date = EXCLUDED.partition_date,
	partition_ts = EXCLUDED.partition_ts,
	source_url = EXCLUDED.source_url,
	document_url = EXCLUDED.document_url,
	file_type = EXCLUDED.file_type,
	file_path = EXCLUDED.file_path,
	file_hash = EXCLUDED.file_hash`, s.landing)

	args := []any{
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Date,
		rec.PartitionDate,
		rec.PartitionTS,
		rec.SourceURL,
		rec.DocumentURL,
		rec.FileType,
		rec.FilePath,
		rec.FileHash,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert landing record %s: %w", rec.ID, err)
	}
	return nil
}

// UpsertStaging inserts or fully replaces the staging row keyed by id.
func (s *Store) UpsertStaging(ctx context.Context, rec harvest.StagingRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	title,
	description,
	doc_date,
	partition_date,
	partition_ts,
	source_url,
	document_url,
	file_type,
	file_path,
	file_hash,
	processed_date
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	doc_date = EXCLUDED.doc_date,
	partition_date = EXCLUDED.partition_date,
	partition_ts = EXCLUDED.partition_ts,
	source_url = EXCLUDED.source_url,
	document_url = EXCLUDED.document_url,
	file_type = EXCLUDED.file_type,
	file_path = EXCLUDED.file_path,
	file_hash = EXCLUDED.file_hash,
	processed_date = EXCLUDED.processed_date`, s.staging)

	args := []any{
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Date,
		rec.PartitionDate,
		rec.PartitionTS,
		rec.SourceURL,
		rec.DocumentURL,
		rec.FileType,
		rec.FilePath,
		rec.FileHash,
		rec.ProcessedDate,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert staging record %s: %w", rec.ID, err)
	}
	return nil
}

// FindLanding returns all landing rows whose partition timestamp falls in
// [from, to].
func (s *Store) FindLanding(ctx context.Context, from, to time.Time) ([]harvest.HarvestRecord, error) {
	query := fmt.Sprintf(`
SELECT
	id,
	title,
	description,
	doc_date,
	partition_date,
	partition_ts,
	source_url,
	document_url,
	file_type,
	file_path,
	file_hash
FROM %s
WHERE partition_ts >= $1 AND partition_ts <= $2
ORDER BY partition_ts, id`, s.landing)

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query landing records: %w", err)
	}
	defer rows.Close()

	var recs []harvest.HarvestRecord
	for rows.Next() {
		var rec harvest.HarvestRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Description,
			&rec.Date,
			&rec.PartitionDate,
			&rec.PartitionTS,
			&rec.SourceURL,
			&rec.DocumentURL,
			&rec.FileType,
			&rec.FilePath,
			&rec.FileHash,
		); err != nil {
			return nil, fmt.Errorf("scan landing record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate landing records: %w", err)
	}
	return recs, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close(_ context.Context) error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
