package cart

import "time"

// CartLine is ephemeral: it exists from "add to cart" until the order that
// consumes it is created, at which point it is deleted in the same
// transaction.
type CartLine struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalized for list views; not stored on the cart row.
	ProductName     string
	ProductImageURL string
	Price           int64
	DiscountPercent int
	Stock           int
}

type AddParams struct {
	UserID    int64
	ProductID int64
	Quantity  int
}

type UpdateParams struct {
	UserID   int64
	LineID   int64
	Quantity int
}
