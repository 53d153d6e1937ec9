package cart

import (
	"context"
	"database/sql"
	"errors"

	"laptopshop-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*CartLine, error)
	Create(ctx context.Context, params AddParams) (*CartLine, error)
	UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) error
	Remove(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]*CartLine, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*CartLine, error) {
	const q = `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_lines
		WHERE user_id = $1 AND product_id = $2
	`

	var line CartLine
	err := r.db.QueryRowContext(ctx, q, userID, productID).Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
		&line.CreatedAt, &line.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *repository) Create(ctx context.Context, params AddParams) (*CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.Int64("user_id", params.UserID),
		zap.Int64("product_id", params.ProductID),
	)

	const q = `
		INSERT INTO cart_lines (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, product_id, quantity, created_at, updated_at
	`

	var line CartLine
	err := r.db.QueryRowContext(ctx, q,
		params.UserID, params.ProductID, params.Quantity,
	).Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
		&line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create cart line", zap.Error(err))
		return nil, err
	}

	log.Info("cart line created", zap.Int64("cart_line_id", line.ID))
	return &line, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_lines
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, quantity, lineID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (r *repository) Remove(ctx context.Context, userID, lineID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines
		WHERE id = $1 AND user_id = $2
	`, lineID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	return nil
}

func (r *repository) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	return err
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*CartLine, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByUser"),
		zap.Int64("user_id", userID),
	)

	const q = `
		SELECT
			c.id, c.user_id, c.product_id, c.quantity,
			c.created_at, c.updated_at,
			p.name, p.image_url, p.price, p.discount_percent, p.quantity_in_stock
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []*CartLine
	for rows.Next() {
		var line CartLine
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
			&line.CreatedAt, &line.UpdatedAt,
			&line.ProductName, &line.ProductImageURL, &line.Price,
			&line.DiscountPercent, &line.Stock,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		lines = append(lines, &line)
	}

	return lines, rows.Err()
}
