package warehouses

import (
	"context"

	"github.com/stockledger/stockledger/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Warehouse, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, code string) (Warehouse, error) {
	if code == "" {
		return Warehouse{}, shared.ErrRequiredField
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	if err := validate(warehouse); err != nil {
		return Warehouse{}, err
	}
	return s.repo.Create(ctx, warehouse)
}

func (s *Service) Update(ctx context.Context, code string, warehouse Warehouse) error {
	if code == "" {
		return shared.ErrRequiredField
	}
	if err := validate(warehouse); err != nil {
		return err
	}
	return s.repo.Update(ctx, code, warehouse)
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if code == "" {
		return shared.ErrRequiredField
	}
	return s.repo.Delete(ctx, code)
}
