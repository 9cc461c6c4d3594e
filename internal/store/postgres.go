package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"ai_sdlc/internal/models"
)

// PostgresConfig holds connection and pool settings for the Postgres-backed
// credential store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PostgresStore persists credentials in a provider_credentials table,
// encrypted at rest with AES-GCM.
type PostgresStore struct {
	db  *sqlx.DB
	enc *Encryption
}

func NewPostgresStore(cfg PostgresConfig, enc *Encryption) (*PostgresStore, error) {
	if enc == nil {
		return nil, fmt.Errorf("encryption is required for the postgres credential store")
	}

	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &PostgresStore{db: db, enc: enc}, nil
}

// NewPostgresStoreWithDB wraps an existing connection; used by tests.
func NewPostgresStoreWithDB(db *sqlx.DB, enc *Encryption) *PostgresStore {
	return &PostgresStore{db: db, enc: enc}
}

// EnsureSchema creates the credentials table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS provider_credentials (
			credential_key TEXT PRIMARY KEY,
			encrypted_api_key TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create credentials table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, provider models.ProviderID, apiKey string) error {
	encrypted, err := s.enc.Encrypt([]byte(apiKey))
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}

	query := `
		INSERT INTO provider_credentials (credential_key, encrypted_api_key, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (credential_key)
		DO UPDATE SET encrypted_api_key = EXCLUDED.encrypted_api_key, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, credentialKey(provider), encrypted); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, provider models.ProviderID) (string, bool, error) {
	var encrypted string
	query := `SELECT encrypted_api_key FROM provider_credentials WHERE credential_key = $1`

	err := s.db.GetContext(ctx, &encrypted, query, credentialKey(provider))
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read credential: %w", err)
	}

	apiKey, err := s.enc.Decrypt(encrypted)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt credential: %w", err)
	}
	return string(apiKey), true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, provider models.ProviderID) error {
	query := `DELETE FROM provider_credentials WHERE credential_key = $1`
	if _, err := s.db.ExecContext(ctx, query, credentialKey(provider)); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
