package cart

import (
	"errors"
	"fmt"
	"math"

	"github.com/fjod/go_cart/shop-cart/internal/catalog"
	"github.com/fjod/go_cart/shop-cart/internal/domain"
)

var (
	ErrProductNotFound  = catalog.ErrProductNotFound
	ErrLineItemNotFound = errors.New("line item not found")
	ErrUnknownAction    = errors.New("unknown action")
	ErrQuantityOverflow = errors.New("quantity overflow")
)

// ProductFinder is the part of the catalog the reducer needs.
type ProductFinder interface {
	FindProduct(id int64) (domain.Product, error)
}

// Reduce computes the state that follows action. It never modifies state; on
// error the returned State is state itself.
func Reduce(state domain.State, action Action, products ProductFinder) (domain.State, error) {
	switch a := action.(type) {
	case AddItem:
		return addItem(state, a, products)
	case UpdateQuantity:
		return updateQuantity(state, a)
	default:
		return state, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func addItem(state domain.State, a AddItem, products ProductFinder) (domain.State, error) {
	if existing, idx := state.Find(a.ProductID); idx >= 0 {
		if existing.Quantity == math.MaxInt {
			return state, fmt.Errorf("%w: product %d", ErrQuantityOverflow, a.ProductID)
		}
		existing.Quantity++
		return state.Replace(idx, existing), nil
	}

	p, err := products.FindProduct(a.ProductID)
	if err != nil {
		return state, err
	}

	return state.Append(domain.LineItem{
		ID:       a.ProductID,
		Name:     p.Title,
		Price:    p.Price,
		Quantity: 1,
	}), nil
}

func updateQuantity(state domain.State, a UpdateQuantity) (domain.State, error) {
	existing, idx := state.Find(a.ProductID)
	if idx < 0 {
		return state, fmt.Errorf("%w: product %d", ErrLineItemNotFound, a.ProductID)
	}

	if a.Delta > 0 && existing.Quantity > math.MaxInt-a.Delta {
		return state, fmt.Errorf("%w: product %d", ErrQuantityOverflow, a.ProductID)
	}
	existing.Quantity += a.Delta
	if existing.Quantity <= 0 {
		return state.Remove(idx), nil
	}
	return state.Replace(idx, existing), nil
}
