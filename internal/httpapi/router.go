package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"ai_sdlc/internal/audit"
	"ai_sdlc/internal/config"
	"ai_sdlc/internal/logging"
	"ai_sdlc/internal/manager"
	"ai_sdlc/internal/store"
)

// Dependencies bundles everything the handlers need. It is built once at
// startup and shared across requests.
type Dependencies struct {
	Manager *manager.Manager
	Audit   audit.Sink
	Config  *config.Config

	creds   store.CredentialStore
	auditDB *sqlx.DB
}

// Build constructs the credential store, manager and audit sink from the
// configuration and hydrates the manager from persisted credentials.
func Build(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	creds, err := buildCredentialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mgr := manager.New(creds, cfg.Providers)
	if err := mgr.Hydrate(ctx); err != nil {
		creds.Close()
		return nil, fmt.Errorf("failed to hydrate manager: %w", err)
	}

	sink, auditDB, err := buildAuditSink(ctx, cfg)
	if err != nil {
		creds.Close()
		return nil, err
	}

	return &Dependencies{
		Manager: mgr,
		Audit:   sink,
		Config:  cfg,
		creds:   creds,
		auditDB: auditDB,
	}, nil
}

// Close flushes the audit sink and releases the credential store.
func (d *Dependencies) Close(ctx context.Context) error {
	if err := d.Audit.Shutdown(ctx); err != nil {
		logging.Errorf("failed to shut down audit sink: %v", err)
	}
	if d.auditDB != nil {
		if err := d.auditDB.Close(); err != nil {
			logging.Errorf("failed to close audit database: %v", err)
		}
	}
	return d.creds.Close()
}

// Router wires all routes onto a fresh mux. Capability endpoints are open;
// the settings surface is guarded by the admin JWT.
func (d *Dependencies) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/v1/generate-code", d.handleGenerateCode)
	mux.HandleFunc("/v1/generate-documentation", d.handleGenerateDocumentation)
	mux.HandleFunc("/v1/generate-tests", d.handleGenerateTests)
	mux.HandleFunc("/v1/fix-bugs", d.handleFixBugs)
	mux.HandleFunc("/v1/optimize-code", d.handleOptimizeCode)

	mux.HandleFunc("/admin/auth/login", d.handleAdminLogin)

	guard := adminJWT(d.Config.JWTSecret)
	mux.Handle("/admin/providers", guard(http.HandlerFunc(d.handleAdminProviders)))
	mux.Handle("/admin/credentials", guard(http.HandlerFunc(d.handleAdminCredentials)))
	mux.Handle("/admin/activate", guard(http.HandlerFunc(d.handleAdminActivate)))
	mux.Handle("/admin/deactivate", guard(http.HandlerFunc(d.handleAdminDeactivate)))

	return mux
}

func buildCredentialStore(ctx context.Context, cfg *config.Config) (store.CredentialStore, error) {
	switch cfg.Credentials.Backend {
	case "memory":
		return store.NewMemoryStore(), nil

	case "file":
		return store.NewFileStore(cfg.Credentials.FilePath)

	case "redis":
		rc := cfg.Credentials.Redis
		return store.NewRedisStore(store.RedisConfig{
			Address:      rc.Address,
			Password:     rc.Password,
			DB:           rc.DB,
			PoolSize:     rc.PoolSize,
			MinIdleConns: rc.MinIdleConns,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,
		})

	case "postgres":
		enc, err := store.NewEncryptionFromBase64(cfg.Credentials.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid credentials encryption key: %w", err)
		}
		pc := cfg.Credentials.Postgres
		pg, err := store.NewPostgresStore(store.PostgresConfig{
			URL:             pc.URL,
			MaxOpenConns:    pc.MaxOpenConns,
			MaxIdleConns:    pc.MaxIdleConns,
			ConnMaxLifetime: pc.ConnMaxLifetime,
			ConnMaxIdleTime: pc.ConnMaxIdleTime,
		}, enc)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil

	default:
		return nil, fmt.Errorf("unknown credential store backend: %q", cfg.Credentials.Backend)
	}
}

// buildAuditSink prefers the database for the audit trail when one is
// configured and falls back to the in-memory store otherwise.
func buildAuditSink(ctx context.Context, cfg *config.Config) (audit.Sink, *sqlx.DB, error) {
	if !cfg.Audit.Enabled {
		return audit.NewNoopSink(), nil, nil
	}

	var (
		auditStore audit.Store
		auditDB    *sqlx.DB
	)
	if url := cfg.Credentials.Postgres.URL; url != "" {
		db, err := sqlx.ConnectContext(ctx, "postgres", url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect audit database: %w", err)
		}
		pg := audit.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		auditStore = pg
		auditDB = db
	} else {
		auditStore = audit.NewMemoryStore()
	}

	var archiver audit.Archiver
	if cfg.Audit.S3Bucket != "" {
		s3Archiver, err := audit.NewS3Archiver(ctx, cfg.Audit.S3Bucket, cfg.Audit.S3Region, cfg.Audit.S3Prefix)
		if err != nil {
			if auditDB != nil {
				auditDB.Close()
			}
			return nil, nil, fmt.Errorf("failed to build S3 archiver: %w", err)
		}
		archiver = s3Archiver
	}

	sink := audit.NewBufferedSink(audit.Config{
		BufferSize:    cfg.Audit.BufferSize,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: cfg.Audit.FlushInterval,
	}, auditStore, archiver)
	return sink, auditDB, nil
}
