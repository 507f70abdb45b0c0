/*
Package sqlite provides a SQLite-backed implementation of the repository interfaces.

PURPOSE:

	Runs liftdesk on a single node without PostgreSQL (the `--sqlite` flag of
	the CLI) and gives the import pipeline a real transactional store in tests.
	The schema mirrors internal/db/migrations with SQLite types.

TRANSACTIONS:

	InTx opens BEGIN IMMEDIATE (via _txlock=immediate) so the write lock is
	taken up front; the *sql.Tx travels in the context and every repository
	method picks it up. Nested InTx calls reuse the outer transaction.

SEQUENCES:

	Reserve is a single INSERT ... ON CONFLICT DO UPDATE ... RETURNING
	statement. SQLite serializes writers, so two reservations can never
	observe the same next_value.

IN-MEMORY DATABASES:

	":memory:" databases are per connection, so the pool is capped at one
	connection. Callers must route every query through the context given to
	InTx while a transaction is open, or they will wait for the connection.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rpattn/liftdesk/internal/repository"
)

// Store owns the SQLite handle and hands out repositories bound to it.
type Store struct {
	db *sql.DB
}

var _ repository.UnitOfWork = (*Store)(nil)

// New opens (and migrates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if dbPath != ":memory:" {
		params += "&_journal_mode=WAL"
	}
	separator := "?"
	if strings.Contains(dbPath, "?") {
		separator = "&"
	}

	db, err := sql.Open("sqlite3", dbPath+separator+params)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tenants returns the tenant repository.
func (s *Store) Tenants() repository.TenantRepository { return &tenantRepo{s} }

// Lookups returns the lookup repository.
func (s *Store) Lookups() repository.LookupRepository { return &lookupRepo{s} }

// Sequences returns the code sequence repository.
func (s *Store) Sequences() repository.SequenceRepository { return &sequenceRepo{s} }

// Records returns the business record repository.
func (s *Store) Records() repository.RecordRepository { return &recordRepo{s} }

// ImportRuns returns the import audit repository.
func (s *Store) ImportRuns() repository.ImportRunRepository { return &importRunRepo{s} }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func (s *Store) conn(ctx context.Context) execer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return s.db
}

// InTx runs fn inside a transaction, reusing one already carried by ctx.
func (s *Store) InTx(ctx context.Context, fn func(context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS management_companies (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		management_company_id TEXT NOT NULL REFERENCES management_companies(id),
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mechanics (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inspectors (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS maintenance_categories (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS emergency_statuses (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inspection_statuses (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inspection_results (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS equipment_types (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS brands (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		building_id TEXT NOT NULL REFERENCES buildings(id),
		name TEXT NOT NULL,
		equipment_type_id TEXT REFERENCES equipment_types(id),
		brand_id TEXT REFERENCES brands(id),
		capacity TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS code_sequences (
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		domain TEXT NOT NULL,
		next_value INTEGER NOT NULL CHECK (next_value >= 1),
		PRIMARY KEY (tenant_id, domain)
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		title TEXT NOT NULL,
		management_company_id TEXT NOT NULL REFERENCES management_companies(id),
		building_id TEXT NOT NULL REFERENCES buildings(id),
		unit_id TEXT REFERENCES units(id),
		mechanic_id TEXT REFERENCES mechanics(id),
		scheduled_date TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL,
		job_type TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, code)
	);

	CREATE TABLE IF NOT EXISTS emergency_calls (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		management_company_id TEXT NOT NULL REFERENCES management_companies(id),
		building_id TEXT NOT NULL REFERENCES buildings(id),
		unit_id TEXT NOT NULL REFERENCES units(id),
		mechanic_id TEXT REFERENCES mechanics(id),
		status_id TEXT REFERENCES emergency_statuses(id),
		call_date TEXT NOT NULL,
		call_time TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL,
		description TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, code)
	);

	CREATE TABLE IF NOT EXISTS inspections (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		management_company_id TEXT NOT NULL REFERENCES management_companies(id),
		building_id TEXT NOT NULL REFERENCES buildings(id),
		unit_id TEXT NOT NULL REFERENCES units(id),
		inspector_id TEXT REFERENCES inspectors(id),
		status_id TEXT REFERENCES inspection_statuses(id),
		result_id TEXT REFERENCES inspection_results(id),
		inspection_date TEXT NOT NULL,
		inspection_type TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, code)
	);

	CREATE TABLE IF NOT EXISTS maintenance_records (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		management_company_id TEXT NOT NULL REFERENCES management_companies(id),
		building_id TEXT NOT NULL REFERENCES buildings(id),
		unit_id TEXT NOT NULL REFERENCES units(id),
		mechanic_id TEXT REFERENCES mechanics(id),
		category_id TEXT REFERENCES maintenance_categories(id),
		maintenance_date TEXT NOT NULL,
		description TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, code)
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		file_name TEXT NOT NULL DEFAULT '',
		actor_id TEXT NOT NULL DEFAULT '',
		imported INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_import_runs_tenant_created ON import_runs (tenant_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
