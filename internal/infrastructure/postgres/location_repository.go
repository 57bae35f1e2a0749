package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo almacenes y tiendas; cada tipo en su tabla (espacios de identidad separados).
type LocationRepo struct {
	q Querier
}

func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) CreateStore(ctx context.Context, s *entity.Store) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO stores (id, name, address, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, s.Address, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (r *LocationRepo) CreateShop(ctx context.Context, s *entity.Shop) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO shops (id, name, address, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.Address, s.Phone, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetStore(ctx context.Context, id string) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx, `SELECT id, name, address, created_at, updated_at FROM stores WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

func (r *LocationRepo) GetShop(ctx context.Context, id string) (*entity.Shop, error) {
	var s entity.Shop
	err := r.q.QueryRow(ctx, `SELECT id, name, address, phone, created_at, updated_at FROM shops WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return &s, nil
}

func (r *LocationRepo) ListStores(ctx context.Context, limit, offset int) ([]*entity.Store, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, address, created_at, updated_at FROM stores ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *LocationRepo) ListShops(ctx context.Context, limit, offset int) ([]*entity.Shop, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, address, phone, created_at, updated_at FROM shops ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()
	var list []*entity.Shop
	for rows.Next() {
		var s entity.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Exists consulta la tabla que corresponde al tipo de ubicación.
func (r *LocationRepo) Exists(ctx context.Context, ref entity.LocationRef) (bool, error) {
	var query string
	switch ref.Kind {
	case entity.LocationStore:
		query = `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1)`
	case entity.LocationShop:
		query = `SELECT EXISTS (SELECT 1 FROM shops WHERE id = $1)`
	default:
		return false, nil
	}
	var ok bool
	if err := r.q.QueryRow(ctx, query, ref.ID).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists %s: %w", ref, err)
	}
	return ok, nil
}
