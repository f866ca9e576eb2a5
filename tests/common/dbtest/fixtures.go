//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type ServiceFixture struct {
	ProviderID uuid.UUID
	Name       string
	Price      string
	Currency   *string
	Duration   int
	Active     bool
}

func DefaultService(providerID uuid.UUID) ServiceFixture {
	usd := "USD"
	return ServiceFixture{
		ProviderID: providerID,
		Name:       "Deep cleaning",
		Price:      "80.00",
		Currency:   &usd,
		Duration:   60,
		Active:     true,
	}
}

// CreateProviderService inserts a catalogue row the booking core can snapshot.
func CreateProviderService(t *testing.T, db DBLike, f ServiceFixture) uuid.UUID {
	t.Helper()

	status := "active"
	if !f.Active {
		status = "inactive"
	}

	var id uuid.UUID
	err := db.QueryRow(context.Background(),
		`INSERT INTO provider_services (provider_id, name, price, currency, duration, status)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6) RETURNING id`,
		f.ProviderID, f.Name, f.Price, f.Currency, f.Duration, status,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func CountRows(t *testing.T, db DBLike, table string, where string, args ...any) int {
	t.Helper()

	sql := "SELECT count(*) FROM " + table
	if where != "" {
		sql += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(context.Background(), sql, args...).Scan(&n))
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
