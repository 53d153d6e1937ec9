package cart

import (
	"context"
	"errors"

	"laptopshop-be/internal/product"
)

// Service defines the business logic for carts.
type Service interface {
	AddToCart(ctx context.Context, params AddParams) (*CartLine, error)
	GetCart(ctx context.Context, userID int64) ([]*CartLine, error)
	UpdateQuantity(ctx context.Context, params UpdateParams) error
	Remove(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// AddToCart adds a product to the user's cart, merging with an existing
// line for the same product.
func (s *service) AddToCart(ctx context.Context, params AddParams) (*CartLine, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 1. Product must exist and be active
	p, err := s.productRepo.GetByID(ctx, params.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// 2. Merge with an existing line for the same product
	existing, err := s.repo.GetByUserAndProduct(ctx, params.UserID, params.ProductID)
	if err != nil {
		return nil, err
	}

	finalQty := params.Quantity
	if existing != nil {
		finalQty += existing.Quantity
	}

	// 3. Soft stock check. The authoritative check is the conditional
	// update at checkout; this only keeps obviously-unfulfillable lines
	// out of the cart.
	if p.QuantityInStock < finalQty {
		return nil, ErrInsufficientStock
	}

	// 4. Create or bump
	if existing == nil {
		return s.repo.Create(ctx, params)
	}

	if err := s.repo.UpdateQuantity(ctx, params.UserID, existing.ID, finalQty); err != nil {
		return nil, err
	}
	existing.Quantity = finalQty
	return existing, nil
}

func (s *service) GetCart(ctx context.Context, userID int64) ([]*CartLine, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UpdateQuantity(ctx context.Context, params UpdateParams) error {
	if params.Quantity <= 0 {
		// Zero or negative quantity removes the line.
		return s.repo.Remove(ctx, params.UserID, params.LineID)
	}
	return s.repo.UpdateQuantity(ctx, params.UserID, params.LineID, params.Quantity)
}

func (s *service) Remove(ctx context.Context, userID, lineID int64) error {
	return s.repo.Remove(ctx, userID, lineID)
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}
