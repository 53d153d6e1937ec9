package order

import (
	"fmt"

	"laptopshop-be/internal/payment"
)

// The state machine is a set of pure planning functions over an immutable
// snapshot. Each returns a Plan describing the resulting statuses, the
// inventory releases owed, and the single history entry to append; the
// repository applies a plan in one transaction. No transition logic lives
// on entity mutation methods.

// Snapshot is the immutable view of an order the planner works on.
type Snapshot struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod payment.Method
	Items         []ItemSnapshot
}

type ItemSnapshot struct {
	ID        int64
	ProductID int64
	Quantity  int
	Status    ItemStatus
}

// Snapshot extracts the state-machine view of an order.
func (o *Order) Snapshot() Snapshot {
	items := make([]ItemSnapshot, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemSnapshot{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Status:    it.Status,
		})
	}
	return Snapshot{
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
	}
}

// InventoryRelease reverses exactly one earlier reservation.
type InventoryRelease struct {
	ProductID int64
	Quantity  int
}

// Plan is the full effect of one transition. Status and PaymentStatus are
// always populated with the resulting values; ItemStatuses holds only the
// items that change.
type Plan struct {
	From          OrderStatus
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TransactionID string
	ItemStatuses  map[int64]ItemStatus
	Releases      []InventoryRelease
	HistoryNote   string
}

// validNext is the complete order-status machine, including the
// system-derived return states.
var validNext = map[OrderStatus][]OrderStatus{
	OrderStatusPending:           {OrderStatusConfirmed, OrderStatusCanceled},
	OrderStatusConfirmed:         {OrderStatusProcessing, OrderStatusCanceled},
	OrderStatusProcessing:        {OrderStatusShipping, OrderStatusCanceled},
	OrderStatusShipping:          {OrderStatusDelivered, OrderStatusCanceled},
	OrderStatusDelivered:         {OrderStatusPartiallyReturned, OrderStatusFullyReturned},
	OrderStatusPartiallyReturned: {OrderStatusFullyReturned},
}

func canTransition(from, to OrderStatus) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isActive(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipping:
		return true
	}
	return false
}

// mirrorItemStatus maps an order status to the item status items carry when
// progressing in lockstep.
func mirrorItemStatus(s OrderStatus) ItemStatus {
	switch s {
	case OrderStatusPending:
		return ItemStatusPending
	case OrderStatusConfirmed:
		return ItemStatusConfirmed
	case OrderStatusProcessing:
		return ItemStatusProcessing
	case OrderStatusShipping:
		return ItemStatusShipping
	case OrderStatusDelivered:
		return ItemStatusDelivered
	}
	return ItemStatus(s)
}

// PlanOrderTransition validates a caller-requested order-status change and
// computes its full effect. The derived return states can never be
// requested directly.
func PlanOrderTransition(s Snapshot, target OrderStatus, note string) (*Plan, error) {
	if target == OrderStatusPartiallyReturned || target == OrderStatusFullyReturned {
		// Derived only, via per-item returns.
		return nil, invalidOrderTransition(s.Status, target)
	}
	if !canTransition(s.Status, target) {
		return nil, invalidOrderTransition(s.Status, target)
	}

	plan := &Plan{
		From:          s.Status,
		Status:        target,
		PaymentStatus: s.PaymentStatus,
		ItemStatuses:  map[int64]ItemStatus{},
		HistoryNote:   note,
	}

	if target == OrderStatusCanceled {
		// Cancel every non-canceled item and release its reservation.
		for _, it := range s.Items {
			if it.Status == ItemStatusCanceled {
				continue
			}
			plan.ItemStatuses[it.ID] = ItemStatusCanceled
			plan.Releases = append(plan.Releases, InventoryRelease{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			})
		}
		if s.PaymentStatus == PaymentStatusPaid {
			plan.PaymentStatus = PaymentStatusRefunded
		}
		if plan.HistoryNote == "" {
			plan.HistoryNote = "order canceled"
		}
		return plan, nil
	}

	// Forward progression: all non-canceled items move in lockstep.
	mirror := mirrorItemStatus(target)
	for _, it := range s.Items {
		if it.Status == ItemStatusCanceled {
			continue
		}
		if it.Status != mirror {
			plan.ItemStatuses[it.ID] = mirror
		}
	}

	// COD settles at the door.
	if target == OrderStatusDelivered &&
		s.PaymentMethod.IsCashOnDelivery() &&
		s.PaymentStatus == PaymentStatusCODPending {
		plan.PaymentStatus = PaymentStatusPaid
	}

	if plan.HistoryNote == "" {
		plan.HistoryNote = fmt.Sprintf("status changed from %s to %s", s.Status, target)
	}
	return plan, nil
}

// PlanItemTransition validates a per-item change (cancel or return) and
// derives the order-level consequence.
func PlanItemTransition(s Snapshot, itemID int64, target ItemStatus) (*Plan, error) {
	var item *ItemSnapshot
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			item = &s.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	switch target {
	case ItemStatusCanceled:
		return planItemCancel(s, item)
	case ItemStatusReturned:
		return planItemReturn(s, item)
	default:
		// Items never progress independently of the order.
		return nil, invalidItemTransition(item.Status, target)
	}
}

func planItemCancel(s Snapshot, item *ItemSnapshot) (*Plan, error) {
	// A delivered item can never be canceled, and the order must still be
	// in flight.
	if item.Status == ItemStatusDelivered || item.Status == ItemStatusReturned ||
		item.Status == ItemStatusCanceled || !isActive(s.Status) {
		return nil, invalidItemTransition(item.Status, ItemStatusCanceled)
	}

	plan := &Plan{
		From:          s.Status,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		ItemStatuses:  map[int64]ItemStatus{item.ID: ItemStatusCanceled},
		Releases: []InventoryRelease{{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}},
		HistoryNote: fmt.Sprintf("item %d canceled", item.ID),
	}

	// If that was the last live item, the whole order collapses to
	// CANCELED.
	allCanceled := true
	for _, it := range s.Items {
		status := it.Status
		if it.ID == item.ID {
			status = ItemStatusCanceled
		}
		if status != ItemStatusCanceled {
			allCanceled = false
			break
		}
	}
	if allCanceled {
		if !canTransition(s.Status, OrderStatusCanceled) {
			return nil, invalidOrderTransition(s.Status, OrderStatusCanceled)
		}
		plan.Status = OrderStatusCanceled
		if s.PaymentStatus == PaymentStatusPaid {
			plan.PaymentStatus = PaymentStatusRefunded
		}
		plan.HistoryNote = "order canceled: all items canceled"
	}

	return plan, nil
}

func planItemReturn(s Snapshot, item *ItemSnapshot) (*Plan, error) {
	if item.Status != ItemStatusDelivered {
		return nil, invalidItemTransition(item.Status, ItemStatusReturned)
	}
	if s.Status != OrderStatusDelivered && s.Status != OrderStatusPartiallyReturned {
		return nil, invalidItemTransition(item.Status, ItemStatusReturned)
	}

	plan := &Plan{
		From:          s.Status,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		ItemStatuses:  map[int64]ItemStatus{item.ID: ItemStatusReturned},
		Releases: []InventoryRelease{{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}},
		HistoryNote: fmt.Sprintf("item %d returned", item.ID),
	}

	// Derive the order status from the items as they will be after this
	// change: all non-canceled returned -> FULLY_RETURNED, some ->
	// PARTIALLY_RETURNED.
	returned, live := 0, 0
	for _, it := range s.Items {
		status := it.Status
		if it.ID == item.ID {
			status = ItemStatusReturned
		}
		if status == ItemStatusCanceled {
			continue
		}
		live++
		if status == ItemStatusReturned {
			returned++
		}
	}

	derived := OrderStatusPartiallyReturned
	if returned == live {
		derived = OrderStatusFullyReturned
	}

	if derived != s.Status {
		if !canTransition(s.Status, derived) {
			return nil, invalidOrderTransition(s.Status, derived)
		}
		plan.Status = derived
		if derived == OrderStatusFullyReturned && s.PaymentStatus == PaymentStatusPaid {
			plan.PaymentStatus = PaymentStatusRefunded
		}
	}

	return plan, nil
}

// PlanPaymentStatusUpdate validates a manual (admin) payment-status change.
func PlanPaymentStatusUpdate(s Snapshot, target PaymentStatus, transactionID string) (*Plan, error) {
	switch target {
	case PaymentStatusPaid:
		if s.PaymentStatus != PaymentStatusPending && s.PaymentStatus != PaymentStatusCODPending {
			return nil, invalidPaymentTransition(s.PaymentStatus, target)
		}
	case PaymentStatusRefunded:
		if s.PaymentStatus != PaymentStatusPaid {
			return nil, invalidPaymentTransition(s.PaymentStatus, target)
		}
	default:
		return nil, invalidPaymentTransition(s.PaymentStatus, target)
	}

	return &Plan{
		From:          s.Status,
		Status:        s.Status,
		PaymentStatus: target,
		TransactionID: transactionID,
		ItemStatuses:  map[int64]ItemStatus{},
		HistoryNote:   fmt.Sprintf("payment status changed from %s to %s", s.PaymentStatus, target),
	}, nil
}

// PlanPaymentSuccess settles a verified gateway confirmation: payment goes
// PAID and the order advances PENDING -> CONFIRMED. An already-paid order
// yields a nil plan: replayed callbacks are no-ops, not errors.
func PlanPaymentSuccess(s Snapshot, transactionID string) (*Plan, error) {
	if s.PaymentStatus == PaymentStatusPaid {
		return nil, nil
	}
	if s.PaymentStatus != PaymentStatusPending {
		return nil, invalidPaymentTransition(s.PaymentStatus, PaymentStatusPaid)
	}
	if !canTransition(s.Status, OrderStatusConfirmed) {
		return nil, invalidOrderTransition(s.Status, OrderStatusConfirmed)
	}

	plan := &Plan{
		From:          s.Status,
		Status:        OrderStatusConfirmed,
		PaymentStatus: PaymentStatusPaid,
		TransactionID: transactionID,
		ItemStatuses:  map[int64]ItemStatus{},
		HistoryNote:   "payment confirmed",
	}
	for _, it := range s.Items {
		if it.Status == ItemStatusCanceled {
			continue
		}
		if it.Status != ItemStatusConfirmed {
			plan.ItemStatuses[it.ID] = ItemStatusConfirmed
		}
	}
	return plan, nil
}
