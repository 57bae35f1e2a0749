package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Motor de movimientos.
	ErrInvalidQuantity         = errors.New("cantidad inválida")
	ErrProductNotFound         = errors.New("producto no encontrado")
	ErrLocationNotFound        = errors.New("ubicación no encontrada")
	ErrMovementNotFound        = errors.New("movimiento no encontrado")
	ErrPlacementExceedsInvoice = errors.New("la colocación excede lo facturado")
	ErrDuplicateRequest        = errors.New("solicitud ya procesada")

	// ErrDeductionInvariant indica inconsistencia entre totalQuantity y la suma de lotes.
	// Es un fallo interno; no debe exponerse al usuario final.
	ErrDeductionInvariant = errors.New("violación de invariante en deducción de lotes")

	ErrPersistenceTimeout  = errors.New("tiempo de espera agotado en persistencia")
	ErrPersistenceConflict = errors.New("conflicto de concurrencia en persistencia")
)

// MovementError agrega contexto (ítem, producto, ubicación, cantidades) a un error sentinela.
// errors.Is(err, ErrInsufficientStock) sigue funcionando vía Unwrap.
type MovementError struct {
	Err         error
	Item        int // índice del ítem en la solicitud; -1 si no aplica
	ProductID   string
	ProductName string
	Location    string
	Requested   int64
	Available   int64
}

func (e *MovementError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInsufficientStock):
		name := e.ProductName
		if name == "" {
			name = e.ProductID
		}
		return fmt.Sprintf("%v: %s en %s (solicitado %d, disponible %d, faltan %d)",
			e.Err, name, e.Location, e.Requested, e.Available, e.Shortfall())
	case e.Item >= 0:
		return fmt.Sprintf("ítem %d: %v", e.Item+1, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *MovementError) Unwrap() error { return e.Err }

// Shortfall devuelve las piezas faltantes (0 si hay suficiente).
func (e *MovementError) Shortfall() int64 {
	if e.Requested <= e.Available {
		return 0
	}
	return e.Requested - e.Available
}

// ItemError envuelve err con el índice del ítem. Si err ya es *MovementError solo completa el índice.
func ItemError(item int, err error) error {
	var me *MovementError
	if errors.As(err, &me) {
		if me.Item < 0 {
			me.Item = item
		}
		return me
	}
	return &MovementError{Err: err, Item: item}
}
