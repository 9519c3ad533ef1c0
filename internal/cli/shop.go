package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/storage"
)

func (a *App) Products(category string) error {
	products := a.catalog.Filter(category)
	if len(products) == 0 {
		a.printf("No products in category %q. Categories: %s\n", category, strings.Join(a.catalog.Categories(), ", "))
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), stockLabel(p.Stock))
	}
	return tw.Flush()
}

func stockLabel(stock int) string {
	switch {
	case stock == 0:
		return "out of stock"
	case stock < 10:
		return fmt.Sprintf("only %d left", stock)
	default:
		return fmt.Sprintf("%d", stock)
	}
}

func (a *App) printCart(s models.CartSnapshot) error {
	if s.Empty() {
		a.println("Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t$%s\t$%s\n",
			l.ProductID, l.Product.Name, l.Quantity, l.Product.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printf("%d item(s), total $%s\n", s.Count, s.Total.StringFixed(2))
	return nil
}

func (a *App) CartShow(ctx context.Context) error {
	s, err := a.cart.Snapshot(ctx)
	if err != nil {
		return err
	}
	return a.printCart(s)
}

func (a *App) CartAdd(ctx context.Context, productID, qty int) error {
	if p, ok := a.catalog.Lookup(productID); ok && !p.InStock() {
		a.printf("%s is out of stock.\n", p.Name)
		return nil
	}

	s, err := a.cart.AddProduct(ctx, productID, qty)
	if err != nil {
		return err
	}
	return a.printCart(s)
}

func (a *App) CartSet(ctx context.Context, productID, qty int) error {
	s, err := a.cart.SetQuantity(ctx, productID, qty)
	if err != nil {
		return err
	}
	return a.printCart(s)
}

func (a *App) CartRemove(ctx context.Context, productID int) error {
	s, err := a.cart.RemoveItem(ctx, productID)
	if err != nil {
		return err
	}
	return a.printCart(s)
}

func (a *App) CartClear(ctx context.Context) error {
	if err := a.cart.Clear(ctx); err != nil {
		return err
	}
	a.println("Cart cleared.")
	return nil
}

// shippingPrompts lists the checkout form in display order.
var shippingPrompts = []struct {
	prompt string
	field  func(*models.ShippingInfo) *string
}{
	{"Full name", func(s *models.ShippingInfo) *string { return &s.FullName }},
	{"Address", func(s *models.ShippingInfo) *string { return &s.Address }},
	{"City", func(s *models.ShippingInfo) *string { return &s.City }},
	{"Postal code", func(s *models.ShippingInfo) *string { return &s.PostalCode }},
	{"Country", func(s *models.ShippingInfo) *string { return &s.Country }},
}

// Checkout places the order, prompting for the shipping fields not given.
func (a *App) Checkout(ctx context.Context, ship models.ShippingInfo) error {
	for _, p := range shippingPrompts {
		f := p.field(&ship)
		v, err := a.askText(*f, p.prompt)
		if err != nil {
			return err
		}
		*f = v
	}

	order, err := a.checkout.PlaceOrder(ctx, ship)
	if order != nil {
		a.printf("Order placed! Confirmation number: %s (total $%s)\n", order.Reference, order.Total.StringFixed(2))
	}
	return err
}

// Reset removes stored records: accounts, session, cart or all. The session
// and the cart are reset through their services so subscribers and metrics
// see the change.
func (a *App) Reset(ctx context.Context, what string) error {
	var keys []string
	switch what {
	case "accounts":
		keys = []string{storage.KeyAccounts, storage.KeySession}
	case "session":
		keys = []string{storage.KeySession}
	case "cart":
		keys = []string{storage.KeyCart}
	case "", "all":
		keys = []string{storage.KeyAccounts, storage.KeySession, storage.KeyCart}
	default:
		return fmt.Errorf("unknown reset target %q (want accounts, session, cart or all)", what)
	}

	for _, k := range keys {
		var err error
		switch k {
		case storage.KeyAccounts:
			err = a.store.Remove(ctx, k)
		case storage.KeySession:
			err = a.accounts.Logout(ctx)
		case storage.KeyCart:
			err = a.cart.Clear(ctx)
		}
		if err != nil {
			return err
		}
	}

	a.log.Info(ctx, "storage reset", "keys", keys)
	a.printf("Removed: %s\n", strings.Join(keys, ", "))
	return nil
}
