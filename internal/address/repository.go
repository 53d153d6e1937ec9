package address

import (
	"context"
	"database/sql"
	"errors"

	"laptopshop-be/internal/logger"

	"go.uber.org/zap"
)

var ErrAddressNotFound = errors.New("address not found")

type Repository interface {
	GetByID(ctx context.Context, id, userID int64) (*Address, error)
	GetByUserID(ctx context.Context, userID int64) ([]*Address, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetByID returns the address only when it belongs to userID, so a foreign
// address behaves exactly like a missing one.
func (r *repository) GetByID(ctx context.Context, id, userID int64) (*Address, error) {
	const q = `
		SELECT
			id, user_id, receiver_name, phone,
			address_line, ward, district, city,
			is_default, created_at, updated_at
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`

	var a Address
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&a.ID, &a.UserID, &a.ReceiverName, &a.Phone,
		&a.AddressLine, &a.Ward, &a.District, &a.City,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int64) ([]*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "GetByUserID"),
		zap.Int64("user_id", userID),
	)

	const q = `
		SELECT
			id, user_id, receiver_name, phone,
			address_line, ward, district, city,
			is_default, created_at, updated_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ReceiverName, &a.Phone,
			&a.AddressLine, &a.Ward, &a.District, &a.City,
			&a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, &a)
	}

	return res, rows.Err()
}
