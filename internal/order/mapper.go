package order

import "time"

// View is the JSON shape returned to clients.
type View struct {
	ID                   int64         `json:"id"`
	OrderNumber          string        `json:"orderNumber"`
	UserID               int64         `json:"userId"`
	AddressID            int64         `json:"addressId"`
	TotalAmount          int64         `json:"totalAmount"`
	Status               OrderStatus   `json:"status"`
	PaymentMethod        string        `json:"paymentMethod"`
	PaymentStatus        PaymentStatus `json:"paymentStatus"`
	PaymentTransactionID string        `json:"paymentTransactionId,omitempty"`
	Notes                string        `json:"notes,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
	Items                []ItemView    `json:"items,omitempty"`
	History              []HistoryView `json:"statusHistory,omitempty"`
}

type ItemView struct {
	ID              int64      `json:"id"`
	ProductID       int64      `json:"productId"`
	ProductName     string     `json:"productName"`
	Price           int64      `json:"price"`
	DiscountPercent int        `json:"discountPercent"`
	Quantity        int        `json:"quantity"`
	Subtotal        int64      `json:"subtotal"`
	Status          ItemStatus `json:"status"`
}

type HistoryView struct {
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note"`
	CreatedAt time.Time   `json:"createdAt"`
}

func ToView(o *Order) *View {
	if o == nil {
		return nil
	}

	items := make([]ItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemView{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Price:           it.Price,
			DiscountPercent: it.DiscountPercent,
			Quantity:        it.Quantity,
			Subtotal:        it.Subtotal,
			Status:          it.Status,
		})
	}

	history := make([]HistoryView, 0, len(o.History))
	for _, h := range o.History {
		history = append(history, HistoryView{
			Status:    h.Status,
			Note:      h.Note,
			CreatedAt: h.CreatedAt,
		})
	}

	return &View{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		UserID:               o.UserID,
		AddressID:            o.AddressID,
		TotalAmount:          o.TotalAmount,
		Status:               o.Status,
		PaymentMethod:        string(o.PaymentMethod),
		PaymentStatus:        o.PaymentStatus,
		PaymentTransactionID: o.PaymentTransactionID,
		Notes:                o.Notes,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Items:                items,
		History:              history,
	}
}

func ToViews(orders []*Order) []*View {
	views := make([]*View, 0, len(orders))
	for _, o := range orders {
		views = append(views, ToView(o))
	}
	return views
}
