package models

import "github.com/shopspring/decimal"

// CartLine is one product in the cart. Product is the snapshot taken when the
// line was first added; its price is used for totals.
type CartLine struct {
	ProductID int     `json:"productId"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the cart state handed to callers and subscribers.
type CartSnapshot struct {
	Lines []CartLine
	Count int
	Total decimal.Decimal
}

// NewCartSnapshot copies lines and computes the badge count and total.
func NewCartSnapshot(lines []CartLine) CartSnapshot {
	s := CartSnapshot{
		Lines: append([]CartLine{}, lines...),
		Total: decimal.Zero,
	}
	for _, l := range lines {
		s.Count += l.Quantity
		s.Total = s.Total.Add(l.Subtotal())
	}
	return s
}

// Empty reports whether the cart has no lines.
func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}
