//go:build integration

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"automation-worker/internal/database"
	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestDatabaseIntegration(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() {
		// Gebruik context.Background() voor cleanup, niet de test-context
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(connStr, true, logger))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	s := NewStore(pool, logger)
	projectID := uuid.New()

	t.Run("MigrationsAreIdempotent", func(t *testing.T) {
		assert.NoError(t, database.RunMigrations(connStr, true, logger))
	})

	t.Run("ClaimRetryComplete", func(t *testing.T) {
		first, err := s.Enqueue(ctx, EnqueueParams{
			ProjectID: projectID,
			EventType: "message_received",
			Payload:   json.RawMessage(`{"from":"5511999999999","text":"oi"}`),
		})
		require.NoError(t, err)
		_, err = s.Enqueue(ctx, EnqueueParams{ProjectID: projectID, EventType: "contact_created"})
		require.NoError(t, err)

		claimed, err := s.ClaimPending(ctx, 10, 3)
		require.NoError(t, err)
		require.Len(t, claimed, 2)
		assert.Equal(t, first.ID, claimed[0].ID)
		assert.Equal(t, domain.EventProcessing, claimed[0].Status)

		// Een tweede claim ziet niets meer
		again, err := s.ClaimPending(ctx, 10, 3)
		require.NoError(t, err)
		assert.Empty(t, again)

		status, retries, err := s.RecordFailure(ctx, claimed[1].ID, "boom", 1)
		require.NoError(t, err)
		assert.Equal(t, domain.EventFailed, status)
		assert.Equal(t, 1, retries)

		require.NoError(t, s.Complete(ctx, claimed[0].ID, json.RawMessage(`{"message":"No matching rules"}`)))

		var (
			st     string
			result json.RawMessage
		)
		err = pool.QueryRow(ctx, `SELECT status, result FROM automation_event_queue WHERE id = $1`, claimed[0].ID).
			Scan(&st, &result)
		require.NoError(t, err)
		assert.Equal(t, "completed", st)
		assert.JSONEq(t, `{"message":"No matching rules"}`, string(result))
	})

	t.Run("ReclaimStale", func(t *testing.T) {
		ev, err := s.Enqueue(ctx, EnqueueParams{ProjectID: projectID, EventType: "stuck"})
		require.NoError(t, err)
		_, err = pool.Exec(ctx, `UPDATE automation_event_queue SET status = 'processing', updated_at = now() - interval '1 hour' WHERE id = $1`, ev.ID)
		require.NoError(t, err)

		n, err := s.ReclaimStale(ctx, 10*time.Minute, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("UpdateColumnIsTenantScoped", func(t *testing.T) {
		var contactID uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO contacts (project_id, phone) VALUES ($1, '31612345678') RETURNING id`, projectID).
			Scan(&contactID)
		require.NoError(t, err)

		n, err := s.UpdateColumn(ctx, UpdateColumnParams{
			ProjectID: uuid.New(), Table: domain.TableContacts,
			Column: "status", Value: "customer", WhereColumn: "id", WhereValue: contactID,
		})
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.UpdateColumn(ctx, UpdateColumnParams{
			ProjectID: projectID, Table: domain.TableContacts,
			Column: "status", Value: "customer", WhereColumn: "id", WhereValue: contactID,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
