// Package catalog holds the read-only product list offered by the storefront.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/accessflow/internal/models"
)

//go:embed products.yaml
var defaultCatalog []byte

// productDTO mirrors the file layout. Price is a string so that "19.99"
// is never rounded through float64.
type productDTO struct {
	ID          int     `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Price       string  `yaml:"price" json:"price"`
	Stock       int     `yaml:"stock" json:"stock"`
	Category    string  `yaml:"category" json:"category"`
	Image       string  `yaml:"image" json:"image"`
	Description string  `yaml:"description" json:"description"`
	Rating      float64 `yaml:"rating" json:"rating"`
}

type catalogDTO struct {
	Products []productDTO `yaml:"products" json:"products"`
}

// Catalog is an immutable, id-ordered set of products.
type Catalog struct {
	products []models.Product
	byID     map[int]int
}

// Default returns the embedded demo catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. YAML is a superset of JSON, so both formats are
// accepted.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var dto catalogDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		products: make([]models.Product, 0, len(dto.Products)),
		byID:     make(map[int]int, len(dto.Products)),
	}

	for _, p := range dto.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d: invalid price %q: %w", p.ID, p.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("product %d: negative price %s", p.ID, p.Price)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %d: negative stock %d", p.ID, p.Stock)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id", p.ID)
		}

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, models.Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       price,
			Stock:       p.Stock,
			Category:    p.Category,
			Image:       p.Image,
			Description: p.Description,
			Rating:      p.Rating,
		})
	}

	sort.Slice(c.products, func(i, j int) bool { return c.products[i].ID < c.products[j].ID })
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c, nil
}

// All returns every product ordered by id.
func (c *Catalog) All() []models.Product {
	return append([]models.Product(nil), c.products...)
}

// Lookup finds a product by id.
func (c *Catalog) Lookup(id int) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Filter returns the products of one category. An empty category matches all.
func (c *Catalog) Filter(category string) []models.Product {
	if category == "" {
		return c.All()
	}
	var out []models.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists the distinct categories in alphabetical order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
