// Package providers expone el catálogo público de providers.
package providers

import (
	"context"

	"github.com/dropDatabas3/authhub/internal/store/core"
)

type Service interface {
	List(ctx context.Context) ([]core.Provider, error)
	Get(ctx context.Context, id int64) (*core.Provider, error)
}

type service struct {
	repo core.ProviderRepository
}

func NewService(repo core.ProviderRepository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]core.Provider, error) {
	ps, err := s.repo.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []core.Provider{}
	}
	return ps, nil
}

func (s *service) Get(ctx context.Context, id int64) (*core.Provider, error) {
	return s.repo.GetProviderByID(ctx, id)
}
