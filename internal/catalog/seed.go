package catalog

import (
	"github.com/fjod/go_cart/shop-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// Keep in sync with migrations/000002_seed_products.up.sql.
var seedProducts = []domain.Product{
	{
		ID:          1,
		Title:       "Laptop",
		Price:       decimal.RequireFromString("1299.99"),
		Image:       "https://example.com/laptop.jpg",
		Description: "A powerful laptop",
	},
	{
		ID:          2,
		Title:       "Mouse",
		Price:       decimal.RequireFromString("29.99"),
		Image:       "https://example.com/mouse.jpg",
		Description: "Wireless mouse",
	},
	{
		ID:          3,
		Title:       "Keyboard",
		Price:       decimal.RequireFromString("89.50"),
		Image:       "https://example.com/keyboard.jpg",
		Description: "Mechanical keyboard",
	},
	{
		ID:          4,
		Title:       "Monitor",
		Price:       decimal.RequireFromString("349.00"),
		Image:       "https://example.com/monitor.jpg",
		Description: "27 inch 4K monitor",
	},
	{
		ID:          5,
		Title:       "Headphones",
		Price:       decimal.RequireFromString("149.95"),
		Image:       "https://example.com/headphones.jpg",
		Description: "Noise cancelling headphones",
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(seedProducts)
	if err != nil {
		panic(err)
	}
	return c
}
