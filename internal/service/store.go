package service

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// StoreService resolves store context for incoming requests.
type StoreService interface {
	GetStore(ctx context.Context, id pgtype.UUID) (*domain.Store, error)
	GetStoreByCode(ctx context.Context, code string) (*domain.Store, error)
}

type storeService struct {
	stores domain.StoreReader
}

// NewStoreService creates a new StoreService instance.
func NewStoreService(stores domain.StoreReader) StoreService {
	return &storeService{stores: stores}
}

func (s *storeService) GetStore(ctx context.Context, id pgtype.UUID) (*domain.Store, error) {
	const op = "service.store.get"

	store, err := s.stores.GetStoreByID(ctx, id)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load store")
	}
	return store, nil
}

func (s *storeService) GetStoreByCode(ctx context.Context, code string) (*domain.Store, error) {
	const op = "service.store.get_by_code"

	store, err := s.stores.GetStoreByCode(ctx, code)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load store")
	}
	return store, nil
}
