package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Sohamiota/Target-JIT-org/internal/config"
)

// DB is the shared sqlx pool plus a weighted semaphore that bounds
// concurrent write transactions, so bulk upserts cannot starve the
// connections serving reads.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

const maxConcurrentTx = 10

var (
	instance *DB
	openOnce sync.Once
)

// NewDB opens the process-wide connection pool on first call; later
// calls return the same instance.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	openOnce.Do(func() {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		db, connErr := sqlx.Connect("postgres", dsn)
		if connErr != nil {
			err = connErr
			return
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)

		instance = &DB{DB: db, sem: semaphore.NewWeighted(maxConcurrentTx)}
	})
	return instance, err
}

// Wrap adapts an already-open connection for the repository layer. CLI
// entry points that dial with a connection URL use this instead of
// NewDB.
func Wrap(db *sqlx.DB) *DB {
	return &DB{DB: db, sem: semaphore.NewWeighted(maxConcurrentTx)}
}

// WithTx runs fn in a transaction, committing on nil and rolling back
// on error.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire transaction slot: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx.Tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
