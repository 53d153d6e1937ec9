package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"laptopshop-be/internal/logger"

	"go.uber.org/zap"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, page int32) ([]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	const q = `
		SELECT
			id, name, slug, brand, description, image_url,
			price, discount_percent, quantity_in_stock, quantity_sold,
			is_active, created_at, updated_at
		FROM products
		WHERE id = $1 AND is_active = true
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Description, &p.ImageURL,
		&p.Price, &p.DiscountPercent, &p.QuantityInStock, &p.QuantitySold,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(
	ctx context.Context,
	filter *FilterInput,
	sort *SortInput,
	limit, page int32,
) ([]*Product, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
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
	where := []string{"is_active = true"}
	args := []any{}

	if filter != nil {
		if filter.Search != nil && *filter.Search != "" {
			where = append(where, fmt.Sprintf(
				"(name ILIKE $%d OR brand ILIKE $%d)",
				len(args)+1, len(args)+1,
			))
			args = append(args, "%"+*filter.Search+"%")
		}

		if filter.Brand != nil && *filter.Brand != "" {
			where = append(where, fmt.Sprintf("brand = $%d", len(args)+1))
			args = append(args, *filter.Brand)
		}

		if filter.MinPrice != nil {
			where = append(where, fmt.Sprintf("price >= $%d", len(args)+1))
			args = append(args, *filter.MinPrice)
		}

		if filter.MaxPrice != nil {
			where = append(where, fmt.Sprintf("price <= $%d", len(args)+1))
			args = append(args, *filter.MaxPrice)
		}

		if filter.InStock != nil {
			if *filter.InStock {
				where = append(where, "quantity_in_stock > 0")
			} else {
				where = append(where, "quantity_in_stock = 0")
			}
		}
	}

	// ---------- sort ----------
	orderBy := "created_at DESC"
	if sort != nil {
		field := "created_at"
		switch sort.Field {
		case SortFieldPrice:
			field = "price"
		case SortFieldName:
			field = "name"
		case SortFieldSold:
			field = "quantity_sold"
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
			id, name, slug, brand, description, image_url,
			price, discount_percent, quantity_in_stock, quantity_sold,
			is_active, created_at, updated_at
		FROM products
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + orderBy + `
		LIMIT $` + fmt.Sprint(len(args)+1) + `
		OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := make([]*Product, 0, limit)
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Description, &p.ImageURL,
			&p.Price, &p.DiscountPercent, &p.QuantityInStock, &p.QuantitySold,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("products listed", zap.Int("count", len(result)))
	return result, nil
}
