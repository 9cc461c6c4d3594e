package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Store persists flushed audit batches.
type Store interface {
	SaveBatch(ctx context.Context, batch []*Record) error
}

// MemoryStore collects records in memory; the default when no database is
// configured, and the assertion point in tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []*Record
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) SaveBatch(_ context.Context, batch []*Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, batch...)
	return nil
}

// Records returns a copy of everything saved so far.
func (s *MemoryStore) Records() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out
}

// PostgresStore writes audit records to the audit_records table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_records (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			request_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			capability TEXT NOT NULL,
			duration_ms BIGINT NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveBatch(ctx context.Context, batch []*Record) error {
	if len(batch) == 0 {
		return nil
	}

	query := `
		INSERT INTO audit_records
			(created_at, request_id, provider, capability, duration_ms, status, error_message)
		VALUES
			(:created_at, :request_id, :provider, :capability, :duration_ms, :status, :error_message)
	`
	if _, err := s.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("failed to insert audit batch: %w", err)
	}
	return nil
}
