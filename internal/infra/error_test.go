//go:build unit

package infra_test

import (
	"errors"
	"testing"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRepoErr(t *testing.T) {
	t.Run("explicit kind wins over classification", func(t *testing.T) {
		err := infra.WrapRepoErr("inventory not found", errors.New("boom"), infra.KindNotFound)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
		assert.False(t, infra.IsKind(err, infra.KindDBFailure))
	})

	t.Run("classification from the wrapped error", func(t *testing.T) {
		cases := []struct {
			name string
			err  error
			kind infra.RepositoryErrorKind
		}{
			{name: "no rows", err: pgx.ErrNoRows, kind: infra.KindNotFound},
			{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, kind: infra.KindDuplicateKey},
			{name: "check violation", err: &pgconn.PgError{Code: "23514"}, kind: infra.KindCheckViolated},
			{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, kind: infra.KindTransient},
			{name: "deadlock detected", err: &pgconn.PgError{Code: "40P01"}, kind: infra.KindTransient},
			{name: "lock not available", err: &pgconn.PgError{Code: "55P03"}, kind: infra.KindTransient},
			{name: "anything else", err: errors.New("connection reset"), kind: infra.KindDBFailure},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				err := infra.WrapRepoErr("query failed", c.err)
				assert.True(t, infra.IsKind(err, c.kind), "expected kind %s, got %v", c.kind, err)
			})
		}
	})

	t.Run("wrapped error stays reachable", func(t *testing.T) {
		cause := &pgconn.PgError{Code: "40001"}
		err := infra.WrapRepoErr("tx aborted", cause)

		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "40001", pgErr.Code)
	})

	t.Run("IsKind on an unrelated error", func(t *testing.T) {
		assert.False(t, infra.IsKind(errors.New("plain"), infra.KindNotFound))
	})
}
