package inventory

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Reserve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewLedger()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products`).
			WithArgs(3, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.Reserve(ctx, db, 10, 3)
		assert.NoError(t, err)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products`).
			WithArgs(5, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := ledger.Reserve(ctx, db, 10, 5)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		assert.Error(t, ledger.Reserve(ctx, db, 10, 0))
		assert.Error(t, ledger.Reserve(ctx, db, 10, -1))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewLedger()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products`).
			WithArgs(2, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.Release(ctx, db, 10, 2)
		assert.NoError(t, err)
	})

	t.Run("release exceeding sold count", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products`).
			WithArgs(99, int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := ledger.Release(ctx, db, 10, 99)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInsufficientStock)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
