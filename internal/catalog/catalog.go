// Package catalog holds the read-only product list the cart is built from.
package catalog

import (
	"errors"
	"fmt"

	"github.com/fjod/go_cart/shop-cart/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Catalog is fixed at construction and safe for concurrent reads.
type Catalog struct {
	products []domain.Product
}

// New validates products and keeps them in the given order.
func New(products []domain.Product) (*Catalog, error) {
	seen := make(map[int64]struct{}, len(products))
	for _, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: non-positive id %d", ErrInvalidProduct, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidProduct, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: negative price for id %d", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return &Catalog{products: cp}, nil
}

// FindProduct scans the catalog for id.
func (c *Catalog) FindProduct(id int64) (domain.Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
}

func (c *Catalog) Products() []domain.Product {
	cp := make([]domain.Product, len(c.products))
	copy(cp, c.products)
	return cp
}

func (c *Catalog) Len() int {
	return len(c.products)
}
