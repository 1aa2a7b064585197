package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/wareledger/wareledger/internal/app/storage"
	"github.com/wareledger/wareledger/internal/logging"
)

// Store implements the storage interfaces on top of PostgreSQL routines.
// Every call borrows a pooled connection and runs in its own transaction
// unless the store was handed out by Atomic.
type Store struct {
	db  *sqlx.DB
	tx  *sqlx.Tx
	log *logging.Logger
}

var _ storage.InventoryStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.PricingStore = (*Store)(nil)
var _ storage.AuditStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB, log *logging.Logger) *Store {
	if log == nil {
		log = logging.NewDefault("postgres")
	}
	return &Store{db: db, log: log}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// run executes fn inside a transaction. Nested calls made through a store
// returned by Atomic reuse the outer transaction.
func (s *Store) run(ctx context.Context, fn func(q *sqlx.Tx) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx.Unsafe()); err != nil {
		s.rollback(ctx, tx)
		return err
	}
	return tx.Commit()
}

func (s *Store) rollback(ctx context.Context, tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.WithContext(ctx).WithError(err).Warn("rollback failed")
	}
}

// Atomic runs fn against a store bound to one transaction.
func (s *Store) Atomic(ctx context.Context, fn func(storage.InventoryStore) error) error {
	return s.run(ctx, func(tx *sqlx.Tx) error {
		return fn(&Store{db: s.db, tx: tx, log: s.log})
	})
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(parts, ", ")
}

func rowsQuery(routine string, n int) string {
	return "SELECT * FROM " + routine + "(" + placeholders(n) + ")"
}

func scalarQuery(routine string, n int) string {
	return "SELECT " + routine + "(" + placeholders(n) + ")"
}

// selectRows calls a set-returning routine into dest.
func (s *Store) selectRows(ctx context.Context, dest interface{}, routine string, args ...interface{}) error {
	return s.run(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, dest, rowsQuery(routine, len(args)), args...)
	})
}

// getRow calls a set-returning routine and scans its first row into dest.
func (s *Store) getRow(ctx context.Context, dest interface{}, routine string, args ...interface{}) error {
	err := s.run(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, dest, rowsQuery(routine, len(args)), args...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// scalar calls a routine returning a single value into dest.
func (s *Store) scalar(ctx context.Context, dest interface{}, routine string, args ...interface{}) error {
	return s.run(ctx, func(tx *sqlx.Tx) error {
		return tx.GetContext(ctx, dest, scalarQuery(routine, len(args)), args...)
	})
}

// exec calls a routine whose result is not needed.
func (s *Store) exec(ctx context.Context, routine string, args ...interface{}) error {
	return s.run(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, scalarQuery(routine, len(args)), args...)
		return err
	})
}

func (s *Store) createID(ctx context.Context, routine string, args ...interface{}) (int64, error) {
	var id int64
	if err := s.scalar(ctx, &id, routine, args...); err != nil {
		return 0, err
	}
	return id, nil
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func nullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
