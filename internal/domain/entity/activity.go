package entity

import (
	"time"

	"github.com/jhoicas/Tiendas-api/internal/domain"
)

// ActivityType tipo de movimiento registrado en el historial.
type ActivityType string

const (
	ActivityPlacement  ActivityType = "placement"  // colocación desde factura de proveedor (almacén, entrada)
	ActivityTransfer   ActivityType = "transfer"   // salida de almacén hacia tienda
	ActivityReceipt    ActivityType = "receipt"    // recepción en tienda
	ActivitySale       ActivityType = "sale"       // venta en tienda
	ActivityAdjustment ActivityType = "adjustment" // reversiones y ajustes
)

// Direction sentido del movimiento respecto de la ubicación.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Activity registro de auditoría (solo anexado) de un lado de un movimiento.
type Activity struct {
	ID           string
	Type         ActivityType
	Direction    Direction
	Location     LocationRef
	Counterparty *LocationRef
	ProductID    string
	Packs        int64
	Pieces       int64
	PackSize     int64
	Quantity     int64 // total en piezas
	BatchNumber  string
	MovementID   string
	UserID       string
	Date         time.Time
	Description  string
}

// activityRules combinaciones válidas tipo -> (tipo de ubicación, sentido).
// "adjustment" admite ambos tipos y sentidos.
var activityRules = map[ActivityType]struct {
	kind LocationKind
	dir  Direction
}{
	ActivityPlacement: {LocationStore, DirectionIn},
	ActivityTransfer:  {LocationStore, DirectionOut},
	ActivityReceipt:   {LocationShop, DirectionIn},
	ActivitySale:      {LocationShop, DirectionOut},
}

// ValidateActivity rechaza combinaciones imposibles (p. ej. una recepción en un almacén).
func ValidateActivity(a *Activity) error {
	if a == nil || !a.Location.Valid() || a.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if a.Direction != DirectionIn && a.Direction != DirectionOut {
		return domain.ErrInvalidInput
	}
	if a.Quantity < 0 || a.PackSize < 1 {
		return domain.ErrInvalidQuantity
	}
	if a.Type == ActivityAdjustment {
		return nil
	}
	rule, ok := activityRules[a.Type]
	if !ok || rule.kind != a.Location.Kind || rule.dir != a.Direction {
		return domain.ErrInvalidInput
	}
	return nil
}

// ActivityFilter filtros para listar el historial.
type ActivityFilter struct {
	Location  *LocationRef
	ProductID string
	From, To  *time.Time
	Limit     int
	Offset    int
}
