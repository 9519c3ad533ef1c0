package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/metrics"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/storage"
)

// CartStore manages the shopping cart. Quantities are clamped to stock
// instead of failing, and every mutation returns the resulting snapshot.
type CartStore interface {
	AddItem(ctx context.Context, p models.Product, qty int) (models.CartSnapshot, error)
	AddProduct(ctx context.Context, productID, qty int) (models.CartSnapshot, error)
	SetQuantity(ctx context.Context, productID, qty int) (models.CartSnapshot, error)
	RemoveItem(ctx context.Context, productID int) (models.CartSnapshot, error)
	Clear(ctx context.Context) error
	Snapshot(ctx context.Context) (models.CartSnapshot, error)
	Count(ctx context.Context) (int, error)
	Total(ctx context.Context) (decimal.Decimal, error)
	Subscribe(fn func(models.CartSnapshot)) (unsubscribe func())
}

// CartService is the CartStore backed by a Store. The cart is shared by
// whoever uses the store; it is not tied to the session.
type CartService struct {
	store   Store
	lookup  ProductLookup
	log     logging.Logger
	metrics *metrics.Metrics
	subs    notifier[models.CartSnapshot]
}

var _ CartStore = (*CartService)(nil)

func NewCartService(store Store, log logging.Logger, opts ...Option) *CartService {
	o := buildOptions(opts)
	return &CartService{
		store:   store,
		lookup:  o.lookup,
		log:     log.With("component", "cart"),
		metrics: o.metrics,
	}
}

func (s *CartService) observe(op string, start time.Time, err error) {
	s.metrics.ObserveOp("cart", op, start, err)
}

func (s *CartService) load(ctx context.Context) ([]models.CartLine, error) {
	var lines []models.CartLine
	if _, err := s.store.Read(ctx, storage.KeyCart, &lines); err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return lines, nil
}

// save persists lines in display order and notifies subscribers.
func (s *CartService) save(ctx context.Context, lines []models.CartLine) (models.CartSnapshot, error) {
	if lines == nil {
		lines = []models.CartLine{}
	}
	if err := s.store.Write(ctx, storage.KeyCart, lines); err != nil {
		return models.CartSnapshot{}, fmt.Errorf("failed to save cart: %w", err)
	}

	snap := models.NewCartSnapshot(lines)
	s.metrics.SetCartItems(snap.Count)
	s.subs.emit(snap)
	return snap, nil
}

func lineIndex(lines []models.CartLine, productID int) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// stock prefers the live catalog and falls back to the snapshot stored on
// the line.
func (s *CartService) stock(line models.CartLine) int {
	if s.lookup != nil {
		if p, ok := s.lookup.Lookup(line.ProductID); ok {
			return p.Stock
		}
	}
	return line.Product.Stock
}

// AddItem adds qty units of p, or one unit when qty is not positive. The
// line quantity never exceeds p.Stock; a product without stock is ignored.
func (s *CartService) AddItem(ctx context.Context, p models.Product, qty int) (snap models.CartSnapshot, err error) {
	defer func(start time.Time) { s.observe("add", start, err) }(time.Now())

	if qty <= 0 {
		qty = 1
	}

	lines, err := s.load(ctx)
	if err != nil {
		return models.CartSnapshot{}, err
	}

	if p.Stock <= 0 {
		s.log.Debug(ctx, "out of stock product not added", "product", p.ID)
		return models.NewCartSnapshot(lines), nil
	}

	qty = min(qty, p.Stock)

	if i := lineIndex(lines, p.ID); i >= 0 {
		// add at most the remaining headroom
		q := lines[i].Quantity + min(qty, p.Stock-lines[i].Quantity)
		if q == lines[i].Quantity {
			return models.NewCartSnapshot(lines), nil
		}
		lines[i].Quantity = q
	} else {
		lines = append(lines, models.CartLine{
			ProductID: p.ID,
			Product:   p,
			Quantity:  qty,
		})
	}

	return s.save(ctx, lines)
}

// AddProduct adds a catalog product by id. It fails with ErrUnknownProduct
// when no catalog is configured or the id is not in it.
func (s *CartService) AddProduct(ctx context.Context, productID, qty int) (models.CartSnapshot, error) {
	if s.lookup == nil {
		return models.CartSnapshot{}, common.ErrUnknownProduct
	}
	p, ok := s.lookup.Lookup(productID)
	if !ok {
		return models.CartSnapshot{}, fmt.Errorf("product %d: %w", productID, common.ErrUnknownProduct)
	}
	return s.AddItem(ctx, p, qty)
}

// SetQuantity sets a line to qty clamped into [1, stock]. A non-positive qty
// or an exhausted stock removes the line. Unknown products are ignored.
func (s *CartService) SetQuantity(ctx context.Context, productID, qty int) (snap models.CartSnapshot, err error) {
	defer func(start time.Time) { s.observe("set_quantity", start, err) }(time.Now())

	lines, err := s.load(ctx)
	if err != nil {
		return models.CartSnapshot{}, err
	}

	i := lineIndex(lines, productID)
	if i < 0 {
		return models.NewCartSnapshot(lines), nil
	}

	stock := s.stock(lines[i])
	if qty <= 0 || stock <= 0 {
		return s.save(ctx, append(lines[:i], lines[i+1:]...))
	}

	q := min(qty, stock)
	if q == lines[i].Quantity {
		return models.NewCartSnapshot(lines), nil
	}
	lines[i].Quantity = q

	return s.save(ctx, lines)
}

// RemoveItem drops the line for productID if there is one.
func (s *CartService) RemoveItem(ctx context.Context, productID int) (snap models.CartSnapshot, err error) {
	defer func(start time.Time) { s.observe("remove", start, err) }(time.Now())

	lines, err := s.load(ctx)
	if err != nil {
		return models.CartSnapshot{}, err
	}

	i := lineIndex(lines, productID)
	if i < 0 {
		return models.NewCartSnapshot(lines), nil
	}

	return s.save(ctx, append(lines[:i], lines[i+1:]...))
}

// Clear empties the cart. It also recovers a cart record that no longer
// parses.
func (s *CartService) Clear(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("clear", start, err) }(time.Now())

	lines, loadErr := s.load(ctx)
	if loadErr == nil && len(lines) == 0 {
		return nil
	}
	if loadErr != nil {
		s.log.Warn(ctx, "discarding unreadable cart", "error", loadErr)
	}

	_, err = s.save(ctx, nil)
	return err
}

// Snapshot recomputes the cart view from the persisted lines.
func (s *CartService) Snapshot(ctx context.Context) (models.CartSnapshot, error) {
	lines, err := s.load(ctx)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	return models.NewCartSnapshot(lines), nil
}

// Count is the sum of all line quantities.
func (s *CartService) Count(ctx context.Context) (int, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return snap.Count, nil
}

// Total is the sum of price × quantity using the prices stored on the lines.
func (s *CartService) Total(ctx context.Context) (decimal.Decimal, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.Total, nil
}

// Subscribe registers fn for cart changes. Calls that leave the cart as it
// was do not notify.
func (s *CartService) Subscribe(fn func(models.CartSnapshot)) (unsubscribe func()) {
	return s.subs.subscribe(fn)
}
