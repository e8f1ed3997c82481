package items

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, code string) (Item, error) {
	if code == "" {
		return Item{}, shared.ErrRequiredField
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, code string, item Item) error {
	if code == "" {
		return shared.ErrRequiredField
	}
	if err := validate(item); err != nil {
		return err
	}
	return s.repo.Update(ctx, code, item)
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if code == "" {
		return shared.ErrRequiredField
	}
	return s.repo.Delete(ctx, code)
}
