// Package testutil provides shared helpers for tests: Postgres handles and
// seed data for the integration suites, and a controllable clock for the
// booking engine. Anything that needs a database skips the calling test when
// TEST_DATABASE_URL is not set.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/shareit/backend/migrations"
)

// DSNEnv names the variable that points the integration suites at a database.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool connects a pgx pool to the test database, closed at test end.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	return pool
}

// NewTx opens a transaction on a fresh pool and rolls it back at test end,
// so nothing a test writes through it outlives the test.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens the test database through database/sql, which goose needs.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openSQL(dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Migrate applies every pending migration to the database at dataSource.
// TestMain functions call it once per test binary.
func Migrate(ctx context.Context, dataSource string) error {
	db, err := openSQL(dataSource)
	if err != nil {
		return fmt.Errorf("testutil.Migrate: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("testutil.Migrate: provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("testutil.Migrate: up: %w", err)
	}
	return nil
}

// Querier is what the seed helpers write through: a pool or a transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SeedUser inserts a user with a unique email and returns its ID.
func SeedUser(t *testing.T, q Querier, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO users (name, email) VALUES (@name, @email) RETURNING id`,
		pgx.NamedArgs{"name": name, "email": uuid.NewString() + "@shareit.test"},
	).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.SeedUser %q: %v", name, err)
	}
	return id
}

// SeedItem inserts an available item owned by owner and returns its ID.
func SeedItem(t *testing.T, q Querier, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := q.QueryRow(context.Background(),
		`INSERT INTO items (name, owner_id) VALUES (@name, @owner_id) RETURNING id`,
		pgx.NamedArgs{"name": name, "owner_id": owner},
	).Scan(&id)
	if err != nil {
		t.Fatalf("testutil.SeedItem %q: %v", name, err)
	}
	return id
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(DSNEnv)
	if v == "" {
		t.Skip(DSNEnv + " not set; skipping Postgres test")
	}
	return v
}

func openSQL(dataSource string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dataSource)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
