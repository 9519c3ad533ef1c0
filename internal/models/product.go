package models

import "github.com/shopspring/decimal"

// Product is a read-only catalog record.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Rating      float64         `json:"rating"`
}

// InStock reports whether at least one unit can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}
