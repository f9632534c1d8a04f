package status

import (
	"context"
	"regexp"
	"testing"

	"automation-worker/internal/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStatusStore(t *testing.T) (StatusStorer, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewStatusStore(mockPool), mockPool
}

func TestStatusStore_UpdateColumn(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, mockPool := setupStatusStore(t)
		defer mockPool.Close()

		projectID, conversationID := uuid.New(), uuid.New()
		expected := `UPDATE "conversations" SET "status" = $1, updated_at = now() WHERE "id" = $2 AND project_id = $3`

		mockPool.ExpectExec(regexp.QuoteMeta(expected)).
			WithArgs("closed", conversationID, projectID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		n, err := store.UpdateColumn(context.Background(), UpdateColumnParams{
			ProjectID:   projectID,
			Table:       domain.TableConversations,
			Column:      "status",
			Value:       "closed",
			WhereColumn: "id",
			WhereValue:  conversationID,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Explicit updated_at is not set twice", func(t *testing.T) {
		store, mockPool := setupStatusStore(t)
		defer mockPool.Close()

		projectID := uuid.New()
		expected := `UPDATE "contacts" SET "updated_at" = $1 WHERE "phone" = $2 AND project_id = $3`

		mockPool.ExpectExec(regexp.QuoteMeta(expected)).
			WithArgs("2024-01-01", "31612345678", projectID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		n, err := store.UpdateColumn(context.Background(), UpdateColumnParams{
			ProjectID:   projectID,
			Table:       domain.TableContacts,
			Column:      "updated_at",
			Value:       "2024-01-01",
			WhereColumn: "phone",
			WhereValue:  "31612345678",
		})

		assert.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestStatusStore_UpdateColumn_Rejected(t *testing.T) {
	testCases := []struct {
		name    string
		params  UpdateColumnParams
		wantErr error
	}{
		{
			name:    "Table not on allow-list",
			params:  UpdateColumnParams{Table: "admin_users", Column: "status", WhereColumn: "id"},
			wantErr: ErrTableNotAllowed,
		},
		{
			name:    "Injected column",
			params:  UpdateColumnParams{Table: domain.TableContacts, Column: `status" = 'x'; --`, WhereColumn: "id"},
			wantErr: ErrInvalidColumn,
		},
		{
			name:    "Read-only column",
			params:  UpdateColumnParams{Table: domain.TableContacts, Column: "project_id", WhereColumn: "id"},
			wantErr: ErrInvalidColumn,
		},
		{
			name:    "Invalid where column",
			params:  UpdateColumnParams{Table: domain.TableEventQueue, Column: "status", WhereColumn: "1=1 OR id"},
			wantErr: ErrInvalidColumn,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, mockPool := setupStatusStore(t)
			defer mockPool.Close()

			_, err := store.UpdateColumn(context.Background(), tc.params)

			assert.ErrorIs(t, err, tc.wantErr)
			// Geen enkele query mag uitgevoerd zijn
			assert.NoError(t, mockPool.ExpectationsWereMet())
		})
	}
}
