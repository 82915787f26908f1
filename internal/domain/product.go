package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Image       string
	Description string
}
