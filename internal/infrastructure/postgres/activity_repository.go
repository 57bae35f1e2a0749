package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo historial de movimientos (solo INSERT).
type ActivityRepo struct {
	q Querier
}

func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

// Append inserta la actividad. No bloquea registros de stock.
func (r *ActivityRepo) Append(ctx context.Context, a *entity.Activity) error {
	var cpKind, cpID *string
	if a.Counterparty != nil {
		k, id := string(a.Counterparty.Kind), a.Counterparty.ID
		cpKind, cpID = &k, &id
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO activities (id, type, direction, location_kind, location_id, counterparty_kind, counterparty_id,
			product_id, packs, pieces, pack_size, quantity, batch_number, movement_id, user_id, date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		a.ID, a.Type, a.Direction, a.Location.Kind, a.Location.ID, cpKind, cpID,
		a.ProductID, a.Packs, a.Pieces, a.PackSize, a.Quantity, a.BatchNumber, a.MovementID, a.UserID, a.Date, a.Description,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List filtra por ubicación, producto y rango de fechas; lo más reciente primero.
func (r *ActivityRepo) List(ctx context.Context, f entity.ActivityFilter) ([]*entity.Activity, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Location != nil {
		conds = append(conds, "location_kind = "+arg(f.Location.Kind)+" AND location_id = "+arg(f.Location.ID))
	}
	if f.ProductID != "" {
		conds = append(conds, "product_id = "+arg(f.ProductID))
	}
	if f.From != nil {
		conds = append(conds, "date >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "date <= "+arg(*f.To))
	}
	query := `
		SELECT id, type, direction, location_kind, location_id, counterparty_kind, counterparty_id,
			product_id, packs, pieces, pack_size, quantity, batch_number, movement_id, user_id, date, description
		FROM activities`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, seq DESC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	var list []*entity.Activity
	for rows.Next() {
		var (
			a            entity.Activity
			cpKind, cpID *string
		)
		if err := rows.Scan(&a.ID, &a.Type, &a.Direction, &a.Location.Kind, &a.Location.ID, &cpKind, &cpID,
			&a.ProductID, &a.Packs, &a.Pieces, &a.PackSize, &a.Quantity, &a.BatchNumber, &a.MovementID,
			&a.UserID, &a.Date, &a.Description); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if cpKind != nil && cpID != nil {
			a.Counterparty = &entity.LocationRef{Kind: entity.LocationKind(*cpKind), ID: *cpID}
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
