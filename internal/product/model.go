package product

import "time"

type Product struct {
	ID              int64
	Name            string
	Slug            string
	Brand           string
	Description     string
	ImageURL        string
	Price           int64
	DiscountPercent int
	QuantityInStock int
	QuantitySold    int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DiscountedPrice is the effective unit price after discount, truncated to
// the currency's native unit.
func (p *Product) DiscountedPrice() int64 {
	return p.Price * int64(100-p.DiscountPercent) / 100
}

type FilterInput struct {
	Search   *string
	Brand    *string
	MinPrice *int64
	MaxPrice *int64
	InStock  *bool
}

type SortField string

const (
	SortFieldPrice     SortField = "price"
	SortFieldName      SortField = "name"
	SortFieldCreatedAt SortField = "created_at"
	SortFieldSold      SortField = "sold"
)

type SortInput struct {
	Field     SortField
	Direction string
}
