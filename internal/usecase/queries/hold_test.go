//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/clock"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/errs"
	"github.com/Holytear/concurrent-ticket-reservation-api/internal/usecase/queries"
	"github.com/Holytear/concurrent-ticket-reservation-api/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadStore struct {
	views       map[uuid.UUID]*queries.HoldView
	expiredInvs []uuid.UUID
}

func (s *fakeReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.HoldView, error) {
	view, ok := s.views[id]
	if !ok {
		return nil, errs.ErrHoldNotFound
	}
	return view, nil
}

func (s *fakeReadStore) FindByHolderID(_ context.Context, holderID uuid.UUID) ([]*queries.HoldView, error) {
	result := []*queries.HoldView{}
	for _, v := range s.views {
		if v.HolderID == holderID {
			result = append(result, v)
		}
	}
	return result, nil
}

func (s *fakeReadStore) FindInventoriesWithExpired(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	return s.expiredInvs, nil
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())

	view := builder.NewHoldBuilder().BuildViewQuery()
	store := &fakeReadStore{views: map[uuid.UUID]*queries.HoldView{view.ID: view}}
	q := queries.NewHoldQueries(store, clk)

	t.Run("owner sees the hold", func(t *testing.T) {
		got, err := q.GetByID(ctx, view.HolderID, view.ID)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(view, got))
	})

	t.Run("a foreign hold answers like a missing one", func(t *testing.T) {
		got, err := q.GetByID(ctx, uuid.New(), view.ID)
		require.Nil(t, got)
		require.ErrorIs(t, err, errs.ErrHoldNotFound)
	})

	t.Run("unknown hold", func(t *testing.T) {
		_, err := q.GetByID(ctx, view.HolderID, uuid.New())
		require.ErrorIs(t, err, errs.ErrHoldNotFound)
	})
}

func TestListByHolder(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Now())
	holderID := uuid.New()

	v1 := builder.NewHoldBuilder().WithHolderID(holderID).BuildViewQuery()
	v2 := builder.NewHoldBuilder().BuildViewQuery() // someone else's
	store := &fakeReadStore{views: map[uuid.UUID]*queries.HoldView{v1.ID: v1, v2.ID: v2}}
	q := queries.NewHoldQueries(store, clk)

	got, err := q.ListByHolder(ctx, holderID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, v1.ID, got[0].ID)
}
