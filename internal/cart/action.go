package cart

// Action is a cart mutation. The set is closed: AddItem and UpdateQuantity.
type Action interface {
	Kind() string
	Product() int64
	isAction()
}

// AddItem puts one more unit of a catalog product into the cart.
type AddItem struct {
	ProductID int64
}

// UpdateQuantity shifts a line's quantity by Delta, which may be negative.
type UpdateQuantity struct {
	ProductID int64
	Delta     int
}

const (
	KindAddItem        = "add_item"
	KindUpdateQuantity = "update_quantity"
)

func (AddItem) Kind() string { return KindAddItem }

func (a AddItem) Product() int64 { return a.ProductID }

func (AddItem) isAction() {}

func (UpdateQuantity) Kind() string { return KindUpdateQuantity }

func (a UpdateQuantity) Product() int64 { return a.ProductID }

func (UpdateQuantity) isAction() {}
