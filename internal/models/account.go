// Package models holds the records persisted by the storefront state layer:
// accounts with their orders, cart lines and catalog products.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a registered user as stored in the account directory.
// Password holds whatever the configured credentials.Verifier sealed; it is
// omitted from the session copy.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Orders    []Order   `json:"orders"`
}

// Stripped returns a deep copy of a with the password removed.
func (a Account) Stripped() *Account {
	c := a.Clone()
	c.Password = ""
	return c
}

// Clone returns a deep copy of a.
func (a Account) Clone() *Account {
	c := a
	c.Orders = make([]Order, len(a.Orders))
	for i, o := range a.Orders {
		c.Orders[i] = o.Clone()
	}
	return &c
}

// NewAccountInput carries the registration form.
type NewAccountInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate lists the fields a user may change. Nil fields are left as is.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// Order is an immutable record appended to an account on checkout.
type Order struct {
	ID        int64           `json:"id"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Shipping  *ShippingInfo   `json:"shipping,omitempty"`
}

// Clone returns a deep copy of o.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.Shipping != nil {
		s := *o.Shipping
		c.Shipping = &s
	}
	return c
}

// OrderInput is the payload passed to AddOrder. ID and Date are assigned by
// the account service.
type OrderInput struct {
	Reference string
	Items     []OrderItem
	Total     decimal.Decimal
	Shipping  *ShippingInfo
}

// OrderItem is a purchased product line frozen at checkout time.
type OrderItem struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ShippingInfo is the delivery address captured by the checkout form.
type ShippingInfo struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}
