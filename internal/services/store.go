package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accessflow/internal/metrics"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/storage"
)

// Store is the persistence adapter the services read and write through.
// *storage.Adapter implements it.
type Store interface {
	Read(ctx context.Context, key string, dest any) (bool, error)
	Write(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, key string) error
	WriteMany(ctx context.Context, records ...storage.Record) error
}

// ProductLookup resolves live catalog data for a product id.
type ProductLookup interface {
	Lookup(id int) (models.Product, bool)
}

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
	lookup  ProductLookup
}

// Option configures a service.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics records operation metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithProductLookup lets the cart read current stock from the catalog.
func WithProductLookup(l ProductLookup) Option {
	return func(o *options) { o.lookup = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
