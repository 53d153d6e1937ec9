package product

import "context"

// Service exposes the catalog read side. Stock and sold counters on product
// rows are mutated only by the inventory ledger inside order transactions.
type Service interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, page int32) ([]*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, page int32) ([]*Product, error) {
	return s.repo.List(ctx, filter, sort, limit, page)
}
