package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/accessflow/internal/credentials"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/repositories/kv"
	"github.com/dmitrijs2005/accessflow/internal/storage"
	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

// fixedClock returns t and advances it by one millisecond per call.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time {
		now := t
		t = t.Add(time.Millisecond)
		return now
	}
}

var testEpoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() (*storage.Adapter, *kv.MemoryRepository) {
	repo := kv.NewMemoryRepository()
	return storage.New(repo, ""), repo
}

func newTestAccounts(t *testing.T, store Store, opts ...Option) *AccountService {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(testEpoch))}, opts...)
	return NewAccountService(store, credentials.Plaintext{}, logging.NewNop(), opts...)
}

// flakyStore wraps a Store and fails the selected calls.
type flakyStore struct {
	Store
	failRead      map[string]bool
	failWrite     map[string]bool
	failRemove    bool
	failWriteMany bool
	writes        int
}

func (f *flakyStore) Read(ctx context.Context, key string, dest any) (bool, error) {
	if f.failRead[key] {
		return false, errBoom
	}
	return f.Store.Read(ctx, key, dest)
}

func (f *flakyStore) Write(ctx context.Context, key string, v any) error {
	f.writes++
	if f.failWrite[key] {
		return errBoom
	}
	return f.Store.Write(ctx, key, v)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	if f.failRemove {
		return errBoom
	}
	return f.Store.Remove(ctx, key)
}

func (f *flakyStore) WriteMany(ctx context.Context, records ...storage.Record) error {
	f.writes++
	if f.failWriteMany {
		return errBoom
	}
	return f.Store.WriteMany(ctx, records...)
}

type staticCatalog map[int]models.Product

func (c staticCatalog) Lookup(id int) (models.Product, bool) {
	p, ok := c[id]
	return p, ok
}

func product(id, stock int, price string) models.Product {
	return models.Product{
		ID:    id,
		Name:  "product",
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}
