package domain

import "github.com/shopspring/decimal"

// LineItem is one row of the cart. Name and Price are copied from the product
// when the line is created and never follow later catalog changes.
type LineItem struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Quantity int
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// State is an immutable cart snapshot. Every "modifying" method returns a new
// State backed by a fresh slice, so a State handed to a reader never changes.
type State struct {
	items []LineItem
}

func NewState(items ...LineItem) State {
	if len(items) == 0 {
		return State{}
	}
	cp := make([]LineItem, len(items))
	copy(cp, items)
	return State{items: cp}
}

// Items returns a copy of the line items in display order.
func (s State) Items() []LineItem {
	cp := make([]LineItem, len(s.items))
	copy(cp, s.items)
	return cp
}

func (s State) Len() int {
	return len(s.items)
}

// Find returns the line for productID and its position, or -1.
func (s State) Find(productID int64) (LineItem, int) {
	for i, item := range s.items {
		if item.ID == productID {
			return item, i
		}
	}
	return LineItem{}, -1
}

func (s State) TotalQuantity() int {
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Append returns a new State with item added at the end.
func (s State) Append(item LineItem) State {
	cp := make([]LineItem, len(s.items), len(s.items)+1)
	copy(cp, s.items)
	return State{items: append(cp, item)}
}

// Replace returns a new State with the line at i swapped for item.
func (s State) Replace(i int, item LineItem) State {
	cp := s.Items()
	cp[i] = item
	return State{items: cp}
}

// Remove returns a new State without the line at i.
func (s State) Remove(i int) State {
	cp := make([]LineItem, 0, len(s.items)-1)
	cp = append(cp, s.items[:i]...)
	cp = append(cp, s.items[i+1:]...)
	if len(cp) == 0 {
		return State{}
	}
	return State{items: cp}
}
