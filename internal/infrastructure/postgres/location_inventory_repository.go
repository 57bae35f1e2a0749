package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

var _ repository.LocationInventoryRepository = (*LocationInventoryRepo)(nil)

// LocationInventoryRepo registro de stock por (producto, ubicación) con los lotes en JSONB.
type LocationInventoryRepo struct {
	q Querier
}

// NewLocationInventoryRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewLocationInventoryRepository(q Querier) *LocationInventoryRepo {
	return &LocationInventoryRepo{q: q}
}

const inventorySelect = `
	SELECT product_id, location_kind, location_id, total_quantity, entries, updated_at
	FROM location_inventory`

func scanInventory(row pgx.Row) (*entity.LocationInventory, error) {
	var rec entity.LocationInventory
	err := row.Scan(&rec.ProductID, &rec.Location.Kind, &rec.Location.ID, &rec.TotalQuantity, &rec.Entries, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if rec.Entries == nil {
		rec.Entries = []entity.BatchEntry{}
	}
	return &rec, nil
}

// Get obtiene el registro sin bloquearlo (nil si no existe).
func (r *LocationInventoryRepo) Get(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error) {
	rec, err := scanInventory(r.q.QueryRow(ctx,
		inventorySelect+` WHERE location_kind = $1 AND location_id = $2 AND product_id = $3`,
		loc.Kind, loc.ID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location inventory: %w", err)
	}
	return rec, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *LocationInventoryRepo) GetForUpdate(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error) {
	rec, err := scanInventory(r.q.QueryRow(ctx,
		inventorySelect+` WHERE location_kind = $1 AND location_id = $2 AND product_id = $3 FOR UPDATE`,
		loc.Kind, loc.ID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location inventory for update: %w", err)
	}
	return rec, nil
}

// LockOrCreate inserta el registro vacío si falta y lo bloquea.
func (r *LocationInventoryRepo) LockOrCreate(ctx context.Context, productID string, loc entity.LocationRef) (*entity.LocationInventory, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_inventory (product_id, location_kind, location_id, total_quantity, entries, updated_at)
		VALUES ($1, $2, $3, 0, '[]', now())
		ON CONFLICT (location_kind, location_id, product_id) DO NOTHING`,
		productID, loc.Kind, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("upsert location inventory: %w", err)
	}
	rec, err := r.GetForUpdate(ctx, productID, loc)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("location inventory %s/%s desapareció tras el upsert", loc, productID)
	}
	return rec, nil
}

// Save escribe total y lotes en la misma sentencia.
func (r *LocationInventoryRepo) Save(ctx context.Context, rec *entity.LocationInventory) error {
	entries := rec.Entries
	if entries == nil {
		entries = []entity.BatchEntry{}
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE location_inventory SET total_quantity = $4, entries = $5, updated_at = $6
		WHERE location_kind = $1 AND location_id = $2 AND product_id = $3`,
		rec.Location.Kind, rec.Location.ID, rec.ProductID, rec.TotalQuantity, entries, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save location inventory: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("save location inventory %s/%s: registro inexistente", rec.Location, rec.ProductID)
	}
	return nil
}

// ListByLocation registros de una ubicación ordenados por producto.
func (r *LocationInventoryRepo) ListByLocation(ctx context.Context, loc entity.LocationRef, limit, offset int) ([]*entity.LocationInventory, error) {
	rows, err := r.q.Query(ctx,
		inventorySelect+` WHERE location_kind = $1 AND location_id = $2 ORDER BY product_id LIMIT $3 OFFSET $4`,
		loc.Kind, loc.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list location inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.LocationInventory
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location inventory: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
