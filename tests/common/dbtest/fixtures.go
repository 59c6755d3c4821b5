//go:build unit || e2e

package dbtest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestInventory(t *testing.T, db DBLike, name string, total, available int32) uuid.UUID {
	t.Helper()

	inventoryID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO inventories (id, name, total, available) VALUES ($1, $2, $3, $4)",
		inventoryID, name, total, available)
	require.NoError(t, err)

	return inventoryID
}

func CreateTestHold(t *testing.T, db DBLike, inventoryID, holderID uuid.UUID, state string, expiresAt time.Time) uuid.UUID {
	t.Helper()

	holdID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO holds (id, inventory_id, holder_id, state, expires_at) VALUES ($1, $2, $3, $4, $5)",
		holdID, inventoryID, holderID, state, expiresAt)
	require.NoError(t, err)

	return holdID
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
		`)
		if err != nil {
			return
		}
		defer rows.Close()

		var tables []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return
			}
			tables = append(tables, name)
		}

		if len(tables) > 0 {
			truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE")
		}
	})

	sql, ok := truncateSQL.Load().(string)
	if !ok || sql == "" {
		return nil
	}

	_, err := pool.Exec(ctx, sql)
	return err
}
