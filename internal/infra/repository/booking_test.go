//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"

	"service-marketplace/internal/domain/booking"
	"service-marketplace/internal/infra"
	"service-marketplace/internal/infra/repository"
	"service-marketplace/internal/pkg/errs"
	"service-marketplace/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDBTX records statements and replays a canned Exec result.
type mockDBTX struct {
	sql     []string
	args    [][]any
	tag     pgconn.CommandTag
	execErr error
}

func (m *mockDBTX) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.sql = append(m.sql, sql)
	m.args = append(m.args, args)
	return m.tag, m.execErr
}

func (m *mockDBTX) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *mockDBTX) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

// =============================================================================
// Create
// =============================================================================

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		execErr    error
		expectKind infra.RepositoryErrorKind
		expectIs   error
	}{
		{name: "success: booking inserted"},
		{
			name:       "error: overlapping active booking rejected by the exclusion constraint",
			execErr:    &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"},
			expectKind: infra.KindConflict,
			expectIs:   errs.ErrConflict,
		},
		{
			name:       "error: unknown provider service",
			execErr:    &pgconn.PgError{Code: "23503"},
			expectKind: infra.KindForeignKeyViolated,
		},
		{
			name:       "error: connection lost",
			execErr:    errors.New("connection reset by peer"),
			expectKind: infra.KindDBFailure,
			expectIs:   errs.ErrDatabaseOperationFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB := &mockDBTX{tag: pgconn.NewCommandTag("INSERT 0 1"), execErr: tc.execErr}
			repo := repository.NewBookingRepository(mockDB)
			b := builder.NewBookingBuilder().BuildDomain()

			err := repo.Create(ctx, b)

			require.Len(t, mockDB.sql, 1)
			assert.Contains(t, mockDB.sql[0], "INSERT INTO bookings")
			assert.Contains(t, mockDB.args[0], b.ID())
			assert.Contains(t, mockDB.args[0], "pending")

			if tc.expectKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, infra.IsKind(err, tc.expectKind), "expected kind %s, got %v", tc.expectKind, err)
			if tc.expectIs != nil {
				assert.ErrorIs(t, err, tc.expectIs)
			}
		})
	}
}

// =============================================================================
// Update / Delete
// =============================================================================

func TestBookingRepository_Update(t *testing.T) {
	ctx := context.Background()
	b := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed).BuildDomain()

	t.Run("success: mutable columns only", func(t *testing.T) {
		mockDB := &mockDBTX{tag: pgconn.NewCommandTag("UPDATE 1")}
		repo := repository.NewBookingRepository(mockDB)

		require.NoError(t, repo.Update(ctx, b))
		require.Len(t, mockDB.sql, 1)
		assert.Contains(t, mockDB.sql[0], "UPDATE bookings SET")
		assert.Contains(t, mockDB.sql[0], "WHERE id = $")
		assert.NotContains(t, mockDB.sql[0], "client_id")
		assert.NotContains(t, mockDB.sql[0], "created_at")
	})

	t.Run("error: row vanished", func(t *testing.T) {
		mockDB := &mockDBTX{tag: pgconn.NewCommandTag("UPDATE 0")}
		repo := repository.NewBookingRepository(mockDB)

		err := repo.Update(ctx, b)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestBookingRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mockDB := &mockDBTX{tag: pgconn.NewCommandTag("DELETE 1")}
	require.NoError(t, repository.NewBookingRepository(mockDB).Delete(ctx, id))
	assert.Equal(t, "DELETE FROM bookings WHERE id = $1", mockDB.sql[0])
	// squirrel binds driver.Valuer arguments through Value(), so ids arrive as strings.
	assert.Equal(t, []any{id.String()}, mockDB.args[0])

	missing := &mockDBTX{tag: pgconn.NewCommandTag("DELETE 0")}
	assert.ErrorIs(t, repository.NewBookingRepository(missing).Delete(ctx, id), errs.ErrNotFound)
}

// =============================================================================
// Locking and conflict query
// =============================================================================

func TestBookingRepository_LockProvider(t *testing.T) {
	providerID := uuid.New()
	mockDB := &mockDBTX{}

	require.NoError(t, repository.NewBookingRepository(mockDB).LockProvider(context.Background(), providerID))
	assert.Contains(t, mockDB.sql[0], "pg_advisory_xact_lock")
	assert.Equal(t, []any{"booking:" + providerID.String()}, mockDB.args[0])

	failing := &mockDBTX{execErr: errors.New("canceling statement due to lock timeout")}
	err := repository.NewBookingRepository(failing).LockProvider(context.Background(), providerID)
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
}

func TestActiveByProviderQuery(t *testing.T) {
	providerID := uuid.New()

	t.Run("active statuses only", func(t *testing.T) {
		sql, args, err := repository.ActiveByProviderQuery(providerID, uuid.Nil).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "FROM bookings WHERE")
		assert.Contains(t, sql, "provider_id = $1")
		assert.Contains(t, sql, "status IN ($2,$3,$4)")
		assert.NotContains(t, sql, "id <>")
		assert.Contains(t, sql, "ORDER BY scheduled_at")
		assert.Equal(t, []any{providerID.String(), "pending", "confirmed", "in_progress"}, args)
	})

	t.Run("excluding the booking being moved", func(t *testing.T) {
		self := uuid.New()
		sql, args, err := repository.ActiveByProviderQuery(providerID, self).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "id <> $5")
		assert.Equal(t, self.String(), args[4])
	})
}
