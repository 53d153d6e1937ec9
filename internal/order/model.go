package order

import (
	"fmt"
	"time"

	"laptopshop-be/internal/payment"
)

type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "PENDING"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusProcessing        OrderStatus = "PROCESSING"
	OrderStatusShipping          OrderStatus = "SHIPPING"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusCanceled          OrderStatus = "CANCELED"
	OrderStatusPartiallyReturned OrderStatus = "PARTIALLY_RETURNED"
	OrderStatusFullyReturned     OrderStatus = "FULLY_RETURNED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipping, OrderStatusDelivered, OrderStatusCanceled,
		OrderStatusPartiallyReturned, OrderStatusFullyReturned:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusCODPending PaymentStatus = "COD_PENDING"
	PaymentStatusPaid       PaymentStatus = "PAID"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusCODPending, PaymentStatusPaid, PaymentStatusRefunded:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "PENDING"
	ItemStatusConfirmed  ItemStatus = "CONFIRMED"
	ItemStatusProcessing ItemStatus = "PROCESSING"
	ItemStatusShipping   ItemStatus = "SHIPPING"
	ItemStatusDelivered  ItemStatus = "DELIVERED"
	ItemStatusReturned   ItemStatus = "RETURNED"
	ItemStatusCanceled   ItemStatus = "CANCELED"
)

func ParseItemStatus(s string) (ItemStatus, error) {
	switch ItemStatus(s) {
	case ItemStatusPending, ItemStatusConfirmed, ItemStatusProcessing,
		ItemStatusShipping, ItemStatusDelivered, ItemStatusReturned, ItemStatusCanceled:
		return ItemStatus(s), nil
	}
	return "", fmt.Errorf("unknown order item status %q", s)
}

// Order is the aggregate root: all status mutation goes through the state
// machine plans applied by the repository, and items plus history are
// persisted with it. Orders are never physically deleted.
type Order struct {
	ID                   int64
	OrderNumber          string
	UserID               int64
	AddressID            int64
	TotalAmount          int64
	Status               OrderStatus
	PaymentMethod        payment.Method
	PaymentStatus        PaymentStatus
	PaymentTransactionID string
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Items                []OrderItem
	History              []StatusHistory
}

// OrderItem captures product name, price and discount at order time, so
// later catalog edits never change what the customer bought.
type OrderItem struct {
	ID              int64
	OrderID         int64
	ProductID       int64
	ProductName     string
	Price           int64
	DiscountPercent int
	Quantity        int
	Subtotal        int64
	Status          ItemStatus
}

// StatusHistory is the append-only audit trail; one row at creation and one
// per transition. Never mutated or deleted.
type StatusHistory struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	Note      string
	CreatedAt time.Time
}

type FilterInput struct {
	Search   *string
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

type SortField string

const (
	SortFieldTotal     SortField = "total"
	SortFieldCreatedAt SortField = "created_at"
)

type SortInput struct {
	Field     SortField
	Direction string
}

type CreateOrderParams struct {
	AddressID     int64
	PaymentMethod payment.Method
	Notes         string
	CartLineIDs   []int64
	ClientIP      string
}
