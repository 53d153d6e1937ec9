package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"laptopshop-be/internal/inventory"
	"laptopshop-be/internal/logger"
	"laptopshop-be/internal/payment"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrConcurrentModification is returned when a plan no longer matches the
// stored order status at apply time; the caller should re-read and retry.
var ErrConcurrentModification = errors.New("order was modified concurrently")

type CreateOrderTxParams struct {
	UserID        int64
	AddressID     int64
	OrderNumber   string
	PaymentMethod payment.Method
	PaymentStatus PaymentStatus
	Notes         string
	CartLineIDs   []int64
}

type Repository interface {
	CreateOrderTx(ctx context.Context, params CreateOrderTxParams) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context, userID int64, isAdmin bool, filter *FilterInput, sort *SortInput, limit, page int32) ([]*Order, error)
	ApplyPlanTx(ctx context.Context, orderID int64, plan *Plan) error
}

type repository struct {
	db     *sql.DB
	ledger *inventory.Ledger
}

func NewRepository(db *sql.DB, ledger *inventory.Ledger) Repository {
	return &repository{db: db, ledger: ledger}
}

// CreateOrderTx converts the selected cart lines into an order inside one
// transaction: resolve lines with their products locked, reserve stock per
// line, write the order, its items and the initial history row, and delete
// the consumed cart lines. Any failure rolls the whole conversion back.
func (r *repository) CreateOrderTx(ctx context.Context, params CreateOrderTxParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.Int64("user_id", params.UserID),
		zap.String("order_number", params.OrderNumber),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// 1. Resolve the selected cart lines with current product price and
	// discount, locking the product rows for the stock adjustments below.
	rows, err := tx.QueryContext(ctx, `
		SELECT c.id, c.product_id, c.quantity,
		       p.name, p.price, p.discount_percent
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.id = ANY($1) AND c.user_id = $2
		ORDER BY c.id
		FOR UPDATE OF p
	`, pq.Array(params.CartLineIDs), params.UserID)
	if err != nil {
		log.Error("failed to resolve cart lines", zap.Error(err))
		return nil, err
	}

	type resolvedLine struct {
		cartLineID int64
		item       OrderItem
	}

	var lines []resolvedLine
	for rows.Next() {
		var l resolvedLine
		if err := rows.Scan(
			&l.cartLineID, &l.item.ProductID, &l.item.Quantity,
			&l.item.ProductName, &l.item.Price, &l.item.DiscountPercent,
		); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrEmptySelection
	}
	if len(lines) != len(params.CartLineIDs) {
		return nil, ErrCartLineNotFound
	}

	// 2. Subtotals use the product's current price and discount, not a
	// cart-time snapshot: price may move between add-to-cart and checkout.
	var total int64
	for i := range lines {
		item := &lines[i].item
		item.Subtotal = item.Price * int64(100-item.DiscountPercent) / 100 * int64(item.Quantity)
		item.Status = ItemStatusPending
		total += item.Subtotal
	}

	// 3. Insert the order header.
	order := &Order{
		OrderNumber:   params.OrderNumber,
		UserID:        params.UserID,
		AddressID:     params.AddressID,
		TotalAmount:   total,
		Status:        OrderStatusPending,
		PaymentMethod: params.PaymentMethod,
		PaymentStatus: params.PaymentStatus,
		Notes:         params.Notes,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, user_id, address_id, total_amount,
			status, payment_method, payment_status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		order.OrderNumber, order.UserID, order.AddressID, order.TotalAmount,
		order.Status, order.PaymentMethod, order.PaymentStatus, order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateOrderNumber
		}
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	// 4. Reserve stock and insert items. A single failed reservation
	// aborts the whole order.
	for i := range lines {
		item := &lines[i].item

		if err := r.ledger.Reserve(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				log.Warn("insufficient stock",
					zap.Int64("product_id", item.ProductID),
					zap.Int("quantity", item.Quantity),
				)
			}
			return nil, err
		}

		item.OrderID = order.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, price,
				discount_percent, quantity, subtotal, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`,
			item.OrderID, item.ProductID, item.ProductName, item.Price,
			item.DiscountPercent, item.Quantity, item.Subtotal, item.Status,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item", zap.Error(err))
			return nil, err
		}

		order.Items = append(order.Items, *item)
	}

	// 5. Initial history row is part of construction.
	var history StatusHistory
	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_status_history (order_id, status, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, order.ID, OrderStatusPending, "order created").Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		log.Error("failed to insert history", zap.Error(err))
		return nil, err
	}
	history.OrderID = order.ID
	history.Status = OrderStatusPending
	history.Note = "order created"
	order.History = append(order.History, history)

	// 6. The consumed cart lines are deleted the instant the order exists.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cart_lines WHERE id = ANY($1) AND user_id = $2
	`, pq.Array(params.CartLineIDs), params.UserID); err != nil {
		log.Error("failed to delete cart lines", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("total_amount", order.TotalAmount),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// ApplyPlanTx applies a state-machine plan atomically: order row, changed
// item rows, inventory releases and the history entry commit together or
// not at all. The conditional WHERE on the current status rejects plans
// computed from a stale snapshot.
func (r *repository) ApplyPlanTx(ctx context.Context, orderID int64, plan *Plan) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApplyPlanTx"),
		zap.Int64("order_id", orderID),
		zap.String("from", string(plan.From)),
		zap.String("to", string(plan.Status)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// 1. Order header, guarded by the status the plan was computed from.
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_status = $2,
		    payment_transaction_id = COALESCE(NULLIF($3, ''), payment_transaction_id),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, plan.Status, plan.PaymentStatus, plan.TransactionID, orderID, plan.From)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConcurrentModification
	}

	// 2. Changed items.
	for itemID, status := range plan.ItemStatuses {
		res, err := tx.ExecContext(ctx, `
			UPDATE order_items
			SET status = $1
			WHERE id = $2 AND order_id = $3
		`, status, itemID, orderID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrItemNotFound
		}
	}

	// 3. Inventory releases commit with the statuses that caused them, so
	// a reader never sees a returned item with stock not yet restored.
	for _, release := range plan.Releases {
		if err := r.ledger.Release(ctx, tx, release.ProductID, release.Quantity); err != nil {
			log.Error("inventory release failed",
				zap.Int64("product_id", release.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	// 4. Exactly one history row per transition.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, note)
		VALUES ($1, $2, $3)
	`, orderID, plan.Status, plan.HistoryNote); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Info("transition applied", zap.String("note", plan.HistoryNote))
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	return r.getOrder(ctx, "o.id = $1", id)
}

func (r *repository) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return r.getOrder(ctx, "o.order_number = $1", orderNumber)
}

func (r *repository) getOrder(ctx context.Context, where string, arg any) (*Order, error) {
	query := `
		SELECT
			o.id, o.order_number, o.user_id, o.address_id, o.total_amount,
			o.status, o.payment_method, o.payment_status,
			o.payment_transaction_id, o.notes, o.created_at, o.updated_at
		FROM orders o
		WHERE ` + where

	var o Order
	var txnID sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.AddressID, &o.TotalAmount,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus,
		&txnID, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.PaymentTransactionID = txnID.String

	// Items.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, price,
		       discount_percent, quantity, subtotal, status
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Price,
			&it.DiscountPercent, &it.Quantity, &it.Subtotal, &it.Status,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// History, in transition order.
	histRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at, id
	`, o.ID)
	if err != nil {
		return nil, err
	}
	defer histRows.Close()

	for histRows.Next() {
		var h StatusHistory
		if err := histRows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.CreatedAt); err != nil {
			return nil, err
		}
		o.History = append(o.History, h)
	}
	if err := histRows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

// List returns order headers. Non-admins are always scoped to their own
// orders.
func (r *repository) List(
	ctx context.Context,
	userID int64,
	isAdmin bool,
	filter *FilterInput,
	sort *SortInput,
	limit, page int32,
) ([]*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Bool("is_admin", isAdmin),
	)

	// ---------- pagination ----------
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if !isAdmin {
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)+1))
		args = append(args, userID)
	}

	if filter != nil {
		if filter.Search != nil && *filter.Search != "" {
			where = append(where, fmt.Sprintf(
				"(o.order_number ILIKE $%d OR o.id::text ILIKE $%d)",
				len(args)+1, len(args)+1,
			))
			args = append(args, "%"+*filter.Search+"%")
		}

		if filter.Status != nil && *filter.Status != "" {
			where = append(where, fmt.Sprintf("o.status = $%d", len(args)+1))
			args = append(args, *filter.Status)
		}

		if filter.DateFrom != nil {
			where = append(where, fmt.Sprintf("o.created_at >= $%d", len(args)+1))
			args = append(args, *filter.DateFrom)
		}

		if filter.DateTo != nil {
			where = append(where, fmt.Sprintf("o.created_at <= $%d", len(args)+1))
			args = append(args, *filter.DateTo)
		}
	}

	// ---------- sort ----------
	orderBy := "o.created_at DESC"
	if sort != nil {
		field := "o.created_at"
		if sort.Field == SortFieldTotal {
			field = "o.total_amount"
		}

		dir := "DESC"
		if strings.EqualFold(sort.Direction, "asc") {
			dir = "ASC"
		}
		orderBy = field + " " + dir
	}

	// ---------- query ----------
	query := `
		SELECT
			o.id, o.order_number, o.user_id, o.address_id, o.total_amount,
			o.status, o.payment_method, o.payment_status,
			o.payment_transaction_id, o.notes, o.created_at, o.updated_at
		FROM orders o
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + orderBy + `
		LIMIT $` + fmt.Sprint(len(args)+1) + `
		OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		var txnID sql.NullString
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.AddressID, &o.TotalAmount,
			&o.Status, &o.PaymentMethod, &o.PaymentStatus,
			&txnID, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		o.PaymentTransactionID = txnID.String
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	log.Debug("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
