package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/metrics"
	"github.com/dmitrijs2005/accessflow/internal/models"
)

// Checkout turns the cart into an order on the logged-in account.
type Checkout interface {
	PlaceOrder(ctx context.Context, ship models.ShippingInfo) (*models.Order, error)
}

// CheckoutService records orders; it does not take payment.
type CheckoutService struct {
	sessions SessionStore
	cart     CartStore
	log      logging.Logger
	metrics  *metrics.Metrics
	newRef   func() string
}

var _ Checkout = (*CheckoutService)(nil)

func NewCheckoutService(sessions SessionStore, cart CartStore, log logging.Logger, opts ...Option) *CheckoutService {
	o := buildOptions(opts)
	return &CheckoutService{
		sessions: sessions,
		cart:     cart,
		log:      log.With("component", "checkout"),
		metrics:  o.metrics,
		newRef:   uuid.NewString,
	}
}

func validateShipping(ship models.ShippingInfo) error {
	fields := []struct {
		name, value string
	}{
		{"full name", ship.FullName},
		{"address", ship.Address},
		{"city", ship.City},
		{"postal code", ship.PostalCode},
		{"country", ship.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%s is required: %w", f.name, common.ErrInvalidInput)
		}
	}
	return nil
}

// PlaceOrder appends the cart as an order to the session's account and then
// empties the cart. If clearing fails the order is still returned with the
// error.
func (s *CheckoutService) PlaceOrder(ctx context.Context, ship models.ShippingInfo) (order *models.Order, err error) {
	defer func(start time.Time) { s.metrics.ObserveOp("checkout", "place_order", start, err) }(time.Now())

	cur, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, common.ErrUnauthorized
	}

	if err := validateShipping(ship); err != nil {
		return nil, err
	}

	snap, err := s.cart.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Empty() {
		return nil, common.ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
		})
	}

	order, err = s.sessions.AddOrder(ctx, models.OrderInput{
		Reference: s.newRef(),
		Items:     items,
		Total:     snap.Total,
		Shipping:  &ship,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "order placed", "order", order.ID, "reference", order.Reference, "total", order.Total.StringFixed(2))

	if err := s.cart.Clear(ctx); err != nil {
		return order, fmt.Errorf("order %s placed but cart not cleared: %w", order.Reference, err)
	}
	return order, nil
}
