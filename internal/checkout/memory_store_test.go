package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_TwoLegsMerge(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.StagePayment(ctx, 1, "card"))
	require.NoError(t, store.StageDelivery(ctx, 1, "2026-09-15", "10:30"))

	staging, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "card", staging.PaymentMethod)
	assert.Equal(t, "2026-09-15", staging.DeliveryDate)
	assert.Equal(t, "10:30", staging.DeliveryTime)
}

func TestMemoryStore_LegsAreIndependent(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	// Staging one leg leaves the other empty.
	require.NoError(t, store.StageDelivery(ctx, 1, "2026-09-15", ""))

	staging, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, staging.PaymentMethod)
	assert.Equal(t, "2026-09-15", staging.DeliveryDate)

	// Restaging payment keeps the delivery slot.
	require.NoError(t, store.StagePayment(ctx, 1, "cash"))
	staging, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "cash", staging.PaymentMethod)
	assert.Equal(t, "2026-09-15", staging.DeliveryDate)
}

func TestMemoryStore_NotStaged(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestMemoryStore_PerUser(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.StagePayment(ctx, 1, "card"))

	_, err := store.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.StagePayment(ctx, 1, "card"))

	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotStaged)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.StagePayment(ctx, 1, "card"))
	require.NoError(t, store.Clear(ctx, 1))

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotStaged)
}
