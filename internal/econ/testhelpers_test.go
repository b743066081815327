package econ

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tickrealm/core/internal/db/migrations"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("starting postgres container: %v", err)
	}
	defer func() {
		_ = container.Terminate(ctx)
	}()

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("getting container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("getting container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connecting to test db: %v", err)
	}
	defer testPool.Close()

	if err := runMigrations(testPool); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	os.Exit(m.Run())
}

func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	ctx := context.Background()
	for _, q := range []string{
		"TRUNCATE bank_storage CASCADE",
		"TRUNCATE inventory CASCADE",
	} {
		if _, err := testPool.Exec(ctx, q); err != nil {
			tb.Logf("cleanup warning: %v", err)
		}
	}
	return testPool
}

func runMigrations(pool *pgxpool.Pool) error {
	connConfig := pool.Config().ConnConfig
	connStr := stdlib.RegisterConnConfig(connConfig)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.Up(sqlDB, ".")
}

func seedInventorySlot(tb testing.TB, pool *pgxpool.Pool, playerID int64, slot, itemID int32, qty int64, stackable, tradeable bool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO inventory (player_id, slot_index, item_id, quantity, stackable, tradeable)
		 VALUES ($1, $2, $3, $4, $5, $6)`, playerID, slot, itemID, qty, stackable, tradeable)
	if err != nil {
		tb.Fatalf("seeding inventory slot: %v", err)
	}
}

func fetchInventorySlot(tb testing.TB, pool *pgxpool.Pool, playerID int64, slot int32) (itemID int32, qty int64, found bool) {
	tb.Helper()
	err := pool.QueryRow(context.Background(),
		`SELECT item_id, quantity FROM inventory WHERE player_id = $1 AND slot_index = $2`, playerID, slot,
	).Scan(&itemID, &qty)
	if err != nil {
		return 0, 0, false
	}
	return itemID, qty, true
}
