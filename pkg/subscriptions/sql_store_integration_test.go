//go:build integration

package subscriptions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration tests")
	}
	provider.Close()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("storedash_test"),
		postgres.WithUsername("storedash"),
		postgres.WithPassword("storedash_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.PingContext(ctx))

	require.NoError(t, Migrate(ctx, db, "postgres"))
	return db
}

func TestSQLStore_Postgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	store := NewSQLStore(db, nil)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := sampleRequest()
	first.Date = base
	second := sampleRequest()
	second.OfferTitle = "Scale Plan"
	second.Orders = "5000"
	second.Price = 1900
	second.Date = base.Add(time.Hour)

	ack1, err := store.Submit(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, ack1.Status)
	ack2, err := store.Submit(ctx, second)
	require.NoError(t, err)

	t.Run("ListByUser newest first", func(t *testing.T) {
		got, err := store.ListByUser(ctx, "merchant-1", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ack2.ID, got[0].ID)
		assert.Equal(t, "Scale Plan", got[0].OfferTitle)
		assert.Equal(t, int64(1900), got[0].Price)

		limited, err := store.ListByUser(ctx, "merchant-1", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("SetStatus removes from pending", func(t *testing.T) {
		require.NoError(t, store.SetStatus(ctx, ack1.ID, StatusApproved))

		pending, err := store.ListPending(ctx, base.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, ack2.ID, pending[0].ID)

		assert.Error(t, store.SetStatus(ctx, "missing", StatusRejected))
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, Migrate(ctx, db, "postgres"))
		require.NoError(t, RunMigrations(ctx, db, "postgres", "status"))
	})
}
