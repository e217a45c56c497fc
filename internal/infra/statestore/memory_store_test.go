package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	state := dashboard.StoredState{
		ID:        "id-7",
		Previous:  metrics.Snapshot{Qout: 200, Qloss: 40, Efficiency: 55},
		Current:   metrics.Snapshot{Qout: 250, Qloss: 50, Efficiency: 60},
		Updates:   7,
		UpdatedAt: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, state))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, state, got)
}
