package services

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/metrics"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/storage"
)

func newTestCart(store Store, opts ...Option) *CartService {
	return NewCartService(store, logging.NewNop(), opts...)
}

func quantities(snap models.CartSnapshot) map[int]int {
	out := map[int]int{}
	for _, l := range snap.Lines {
		out[l.ProductID] = l.Quantity
	}
	return out
}

func TestAddItem_ClampsToStock(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	snap, err := c.AddItem(ctx, product(1, 3, "10"), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)

	snap, err = c.AddItem(ctx, product(1, 3, "10"), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)
	require.Len(t, snap.Lines, 1)
}

func TestAddItem_HugeQuantityClampsWithoutOverflow(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()
	p := product(1, 5, "2.00")

	_, err := c.AddItem(ctx, p, 2)
	require.NoError(t, err)

	snap, err := c.AddItem(ctx, p, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 5}, quantities(snap))
	assert.Equal(t, 5, snap.Count)
	assert.True(t, decimal.RequireFromString("10").Equal(snap.Total), "total=%s", snap.Total)

	fresh := newTestCart(store)
	snap, err = fresh.AddItem(ctx, product(2, 3, "1.00"), math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 5, 2: 3}, quantities(snap))

	n, err := fresh.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestAddItem_Accumulates(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	_, err := c.AddItem(ctx, product(1, 10, "2.50"), 2)
	require.NoError(t, err)
	_, err = c.AddItem(ctx, product(2, 10, "1.00"), 1)
	require.NoError(t, err)
	snap, err := c.AddItem(ctx, product(1, 10, "2.50"), 3)
	require.NoError(t, err)

	if diff := cmp.Diff(map[int]int{1: 5, 2: 1}, quantities(snap)); diff != "" {
		t.Errorf("quantities mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, snap.Lines[0].ProductID, "insertion order kept")
	assert.True(t, decimal.RequireFromString("13.50").Equal(snap.Total), "total=%s", snap.Total)
}

func TestAddItem_NonPositiveQuantityAddsOne(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	snap, err := c.AddItem(ctx, product(1, 10, "1"), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Count)

	snap, err = c.AddItem(ctx, product(1, 10, "1"), -4)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count)
}

func TestAddItem_OutOfStockNeverAdded(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	snap, err := c.AddItem(ctx, product(1, 0, "1"), 1)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAddItem_KeepsFirstPriceSnapshot(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	_, err := c.AddItem(ctx, product(1, 10, "5"), 1)
	require.NoError(t, err)
	_, err = c.AddItem(ctx, product(1, 10, "7"), 1)
	require.NoError(t, err)

	total, err := c.Total(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(total), "total=%s", total)
}

func TestAddProduct(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := newTestCart(store).AddProduct(ctx, 1, 1)
	require.ErrorIs(t, err, common.ErrUnknownProduct)

	c := newTestCart(store, WithProductLookup(staticCatalog{1: product(1, 4, "3")}))
	snap, err := c.AddProduct(ctx, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Count)

	_, err = c.AddProduct(ctx, 42, 1)
	require.ErrorIs(t, err, common.ErrUnknownProduct)
}

func TestSetQuantity(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	_, err := c.AddItem(ctx, product(1, 6, "1"), 2)
	require.NoError(t, err)

	snap, err := c.SetQuantity(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Count)

	snap, err = c.SetQuantity(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 6, snap.Count)

	snap, err = c.SetQuantity(ctx, 1, 0)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestSetQuantity_Idempotent(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	_, err := c.AddItem(ctx, product(1, 6, "1"), 1)
	require.NoError(t, err)

	a, err := c.SetQuantity(ctx, 1, 3)
	require.NoError(t, err)
	b, err := c.SetQuantity(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Count, b.Count)
}

func TestSetQuantity_AbsentLineIsNoop(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	snap, err := c.SetQuantity(ctx, 9, 3)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestSetQuantity_UsesLiveStock(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	live := staticCatalog{1: product(1, 2, "1")}
	c := newTestCart(store, WithProductLookup(live))

	_, err := c.AddItem(ctx, product(1, 10, "1"), 1)
	require.NoError(t, err)

	snap, err := c.SetQuantity(ctx, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count)

	live[1] = product(1, 0, "1")
	snap, err = c.SetQuantity(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, snap.Empty(), "exhausted stock drops the line")
}

func TestSetQuantity_FallsBackToSnapshotStock(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	c := newTestCart(store, WithProductLookup(staticCatalog{}))

	_, err := c.AddItem(ctx, product(5, 3, "1"), 1)
	require.NoError(t, err)

	snap, err := c.SetQuantity(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Count)
}

func TestRemoveItem(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	_, err := c.AddItem(ctx, product(1, 5, "1"), 2)
	require.NoError(t, err)

	snap, err := c.RemoveItem(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count)

	snap, err = c.RemoveItem(ctx, 1)
	require.NoError(t, err)
	assert.True(t, snap.Empty())

	snap, err = c.RemoveItem(ctx, 1)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestAddSetRemoveSequence(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()
	p := product(1, 10, "4.99")

	_, err := c.AddItem(ctx, p, 2)
	require.NoError(t, err)
	_, err = c.SetQuantity(ctx, p.ID, 5)
	require.NoError(t, err)
	_, err = c.RemoveItem(ctx, p.ID)
	require.NoError(t, err)

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.True(t, snap.Total.IsZero())
}

func TestClear(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	_, err := c.AddItem(ctx, product(1, 5, "1"), 2)
	require.NoError(t, err)
	_, err = c.AddItem(ctx, product(2, 5, "1"), 1)
	require.NoError(t, err)

	require.NoError(t, c.Clear(ctx))
	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, c.Clear(ctx))
}

func TestClear_RecoversCorruptedCart(t *testing.T) {
	store, repo := newTestStore()
	ctx := context.Background()
	require.NoError(t, repo.Set(ctx, storage.KeyCart, []byte("not json")))
	c := newTestCart(store)

	_, err := c.Snapshot(ctx)
	require.ErrorIs(t, err, common.ErrStorageCorrupted)
	_, err = c.AddItem(ctx, product(1, 1, "1"), 1)
	require.ErrorIs(t, err, common.ErrStorageCorrupted)

	require.NoError(t, c.Clear(ctx))
	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestCartPersistsAcrossInstances(t *testing.T) {
	store, repo := newTestStore()
	ctx := context.Background()

	_, err := newTestCart(store).AddItem(ctx, product(1, 5, "1"), 2)
	require.NoError(t, err)

	raw, err := repo.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"productId":1`)

	n, err := newTestCart(store).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCartSubscribe_OnlyOnChange(t *testing.T) {
	store, _ := newTestStore()
	c := newTestCart(store)
	ctx := context.Background()

	var counts []int
	c.Subscribe(func(s models.CartSnapshot) { counts = append(counts, s.Count) })

	p := product(1, 2, "1")
	_, _ = c.AddItem(ctx, p, 1)
	_, _ = c.AddItem(ctx, p, 1)
	_, _ = c.AddItem(ctx, p, 1) // already at stock
	_, _ = c.SetQuantity(ctx, 1, 2)
	_, _ = c.RemoveItem(ctx, 7)
	_, _ = c.RemoveItem(ctx, 1)
	_ = c.Clear(ctx)

	assert.Equal(t, []int{1, 2, 0}, counts)
}

func TestCartService_StoreErrors(t *testing.T) {
	base, _ := newTestStore()
	ctx := context.Background()
	fs := &flakyStore{Store: base, failWrite: map[string]bool{storage.KeyCart: true}}
	c := newTestCart(fs)

	_, err := c.AddItem(ctx, product(1, 1, "1"), 1)
	assert.ErrorIs(t, err, errBoom)

	fs.failRead = map[string]bool{storage.KeyCart: true}
	_, err = c.Count(ctx)
	assert.ErrorIs(t, err, errBoom)
	_, err = c.Total(ctx)
	assert.ErrorIs(t, err, errBoom)
	_, err = c.SetQuantity(ctx, 1, 1)
	assert.ErrorIs(t, err, errBoom)
	_, err = c.RemoveItem(ctx, 1)
	assert.ErrorIs(t, err, errBoom)
}

func TestCartService_Metrics(t *testing.T) {
	store, _ := newTestStore()
	m := metrics.New()
	c := newTestCart(store, WithMetrics(m))

	_, err := c.AddItem(context.Background(), product(1, 9, "1"), 4)
	require.NoError(t, err)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "storefront_cart_items" {
			assert.Equal(t, 4.0, f.GetMetric()[0].GetGauge().GetValue())
			return
		}
	}
	t.Fatal("cart gauge not gathered")
}
