package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tiendas-api/internal/application/dto"
	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

// LocationUseCase alta y consulta de almacenes y tiendas.
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// CreateStore crea un almacén. Sin ID se genera un uuid.
func (uc *LocationUseCase) CreateStore(ctx context.Context, in dto.CreateStoreRequest) (*dto.LocationResponse, error) {
	now := time.Now()
	store := &entity.Store{
		ID:        orNewID(in.ID),
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// CreateShop crea una tienda.
func (uc *LocationUseCase) CreateShop(ctx context.Context, in dto.CreateShopRequest) (*dto.LocationResponse, error) {
	now := time.Now()
	shop := &entity.Shop{
		ID:        orNewID(in.ID),
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateShop(ctx, shop); err != nil {
		return nil, err
	}
	return toShopResponse(shop), nil
}

// Get obtiene un almacén o tienda según la referencia.
func (uc *LocationUseCase) Get(ctx context.Context, ref entity.LocationRef) (*dto.LocationResponse, error) {
	switch ref.Kind {
	case entity.LocationStore:
		s, err := uc.repo.GetStore(ctx, ref.ID)
		if err != nil || s == nil {
			return nil, err
		}
		return toStoreResponse(s), nil
	case entity.LocationShop:
		s, err := uc.repo.GetShop(ctx, ref.ID)
		if err != nil || s == nil {
			return nil, err
		}
		return toShopResponse(s), nil
	default:
		return nil, domain.ErrInvalidInput
	}
}

// ListStores lista almacenes con paginación.
func (uc *LocationUseCase) ListStores(ctx context.Context, limit, offset int) (*dto.LocationListResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.ListStores(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStoreResponse(s))
	}
	return &dto.LocationListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// ListShops lista tiendas con paginación.
func (uc *LocationUseCase) ListShops(ctx context.Context, limit, offset int) (*dto.LocationListResponse, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := uc.repo.ListShops(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toShopResponse(s))
	}
	return &dto.LocationListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func toStoreResponse(s *entity.Store) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        s.ID,
		Kind:      string(entity.LocationStore),
		Name:      s.Name,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toShopResponse(s *entity.Shop) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        s.ID,
		Kind:      string(entity.LocationShop),
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
