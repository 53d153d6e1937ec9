package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// Execer is the subset of *sql.DB / *sql.Tx the ledger needs. Callers pass
// their open transaction so counter adjustments always commit or roll back
// with the order write that caused them.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Ledger owns the quantity_in_stock / quantity_sold counters on product
// rows. There is no separate reserved state: reserving decrements stock and
// increments sold in one statement, and releasing reverses both.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve moves qty units from stock to sold. The conditional WHERE clause
// is the concurrency guard: two simultaneous checkouts cannot both pass a
// stock check that was only valid at read time.
func (l *Ledger) Reserve(ctx context.Context, q Execer, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", qty)
	}

	res, err := q.ExecContext(ctx, `
		UPDATE products
		SET quantity_in_stock = quantity_in_stock - $1,
		    quantity_sold = quantity_sold + $1,
		    updated_at = NOW()
		WHERE id = $2 AND quantity_in_stock >= $1
	`, qty, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// Release is the exact inverse of Reserve, applied on cancellation or
// return. Every release must pair with exactly one earlier reserve.
func (l *Ledger) Release(ctx context.Context, q Execer, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", qty)
	}

	res, err := q.ExecContext(ctx, `
		UPDATE products
		SET quantity_in_stock = quantity_in_stock + $1,
		    quantity_sold = quantity_sold - $1,
		    updated_at = NOW()
		WHERE id = $2 AND quantity_sold >= $1
	`, qty, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("release of %d units for product %d exceeds sold count", qty, productID)
	}

	return nil
}
