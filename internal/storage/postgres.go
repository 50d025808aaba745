package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/pkg/types"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreSnapshot inserts one fetch snapshot.
func (p *PostgresStorage) StoreSnapshot(ctx context.Context, snap *types.Snapshot) error {
	query := `
		INSERT INTO fetch_snapshots (
			id, cache_key, source, fetched_at, payload
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		snap.ID,
		snap.Key,
		snap.Source,
		snap.FetchedAt,
		snap.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	p.logger.Debug("snapshot-stored",
		zap.String("snapshot-id", snap.ID),
		zap.String("cache-key", snap.Key),
		zap.String("source", snap.Source))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
