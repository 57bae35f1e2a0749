package repository

import (
	"context"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// ActivityRepository historial de movimientos (solo anexar).
type ActivityRepository interface {
	Append(ctx context.Context, activity *entity.Activity) error
	List(ctx context.Context, filter entity.ActivityFilter) ([]*entity.Activity, error)
}
