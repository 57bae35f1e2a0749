package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

// Nombres de secuencia.
const (
	seqSale     = "sale"
	seqTransfer = "transfer"
)

// SequenceNames consecutivos que usa el servicio (para sembrar generadores externos).
var SequenceNames = []string{seqSale, seqTransfer}

// ServiceConfig parámetros del orquestador de movimientos.
type ServiceConfig struct {
	Timeout              time.Duration // tope de una solicitud completa (0 = sin tope)
	SaleNumberPrefix     string
	TransferNumberPrefix string
	Locale               string
}

// MovementService orquesta colocaciones, traslados, ventas y reversiones.
// Cada solicitud (todos sus ítems) se ejecuta en una sola transacción: o se aplica completa o nada.
type MovementService struct {
	txRunner TxRunner
	seq      SequenceGenerator
	idem     IdempotencyGuard
	log      zerolog.Logger
	cfg      ServiceConfig
	desc     *describer
	now      func() time.Time
	newID    func() string
}

// NewMovementService construye el orquestador. idem puede ser nil (sin deduplicación).
func NewMovementService(txRunner TxRunner, seq SequenceGenerator, idem IdempotencyGuard, log zerolog.Logger, cfg ServiceConfig) *MovementService {
	if cfg.SaleNumberPrefix == "" {
		cfg.SaleNumberPrefix = "SALE"
	}
	if cfg.TransferNumberPrefix == "" {
		cfg.TransferNumberPrefix = "TRF"
	}
	return &MovementService{
		txRunner: txRunner,
		seq:      seq,
		idem:     idem,
		log:      log,
		cfg:      cfg,
		desc:     newDescriber(cfg.Locale),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// MovementResult id del documento persistido y estado final de los registros tocados.
type MovementResult struct {
	ID        string
	Number    string
	Records   []*entity.LocationInventory
	Sale      *entity.Sale
	Placement *entity.Placement
}

// LineInput ítem de traslado o venta tal como lo envía el llamador.
// PackSize > 0 sobrescribe el packSize del producto.
type LineInput struct {
	ProductID string
	Packs     int64
	Pieces    int64
	PackSize  int64
}

type pendingLine struct {
	idx int
	LineInput
}

type resolvedLine struct {
	idx     int
	product *entity.Product
	qty     entity.Quantity
	total   int64
}

// pendingLines valida lo que no requiere I/O y descarta ítems sin cantidad (no son error).
func pendingLines(items []LineInput) ([]pendingLine, error) {
	out := make([]pendingLine, 0, len(items))
	for i, it := range items {
		if it.ProductID == "" {
			return nil, domain.ItemError(i, domain.ErrInvalidInput)
		}
		if it.Packs < 0 || it.Pieces < 0 || it.PackSize < 0 {
			return nil, domain.ItemError(i, domain.ErrInvalidQuantity)
		}
		if (entity.Quantity{Packs: it.Packs, Pieces: it.Pieces}).IsZero() {
			continue
		}
		out = append(out, pendingLine{idx: i, LineInput: it})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: ningún ítem tiene cantidad", domain.ErrInvalidInput)
	}
	return out, nil
}

// resolveLines busca cada producto y convierte la cantidad a piezas con su packSize.
func resolveLines(ctx context.Context, repos TxRepos, lines []pendingLine) ([]resolvedLine, error) {
	out := make([]resolvedLine, 0, len(lines))
	cache := make(map[string]*entity.Product)
	for _, l := range lines {
		product, ok := cache[l.ProductID]
		if !ok {
			p, err := repos.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, domain.ItemError(l.idx, &domain.MovementError{Err: domain.ErrProductNotFound, Item: l.idx, ProductID: l.ProductID})
			}
			cache[l.ProductID], product = p, p
		}
		packSize := product.PackSize()
		if l.PackSize > 0 {
			packSize = l.PackSize
		}
		q, err := entity.NewQuantity(l.Packs, l.Pieces, packSize)
		if err != nil {
			return nil, domain.ItemError(l.idx, err)
		}
		out = append(out, resolvedLine{idx: l.idx, product: product, qty: q.Normalize(), total: q.Total()})
	}
	return out, nil
}

// ensureLocations verifica que cada ubicación exista en su espacio de identidad.
func ensureLocations(ctx context.Context, repos TxRepos, locs ...entity.LocationRef) error {
	for _, loc := range locs {
		ok, err := repos.Locations.Exists(ctx, loc)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.MovementError{Err: domain.ErrLocationNotFound, Item: -1, Location: loc.String()}
		}
	}
	return nil
}

// lineError agrega índice y nombre de producto al error de un ítem.
func lineError(l resolvedLine, err error) error {
	err = domain.ItemError(l.idx, err)
	var me *domain.MovementError
	if errors.As(err, &me) {
		me.ProductID = l.product.ID
		me.ProductName = l.product.Name
	}
	return err
}

func (s *MovementService) nextNumber(ctx context.Context, name, prefix string) (string, error) {
	n, err := s.seq.Next(ctx, name)
	if err != nil {
		return "", fmt.Errorf("secuencia %s: %w", name, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

func (s *MovementService) activity(
	typ entity.ActivityType, dir entity.Direction,
	loc entity.LocationRef, counterparty *entity.LocationRef,
	productID string, q entity.Quantity, manifest entity.Manifest,
	movementID, userID string, date time.Time, description string,
) *entity.Activity {
	a := &entity.Activity{
		ID:           s.newID(),
		Type:         typ,
		Direction:    dir,
		Location:     loc,
		Counterparty: counterparty,
		ProductID:    productID,
		Packs:        q.Packs,
		Pieces:       q.Pieces,
		PackSize:     q.PackSize,
		Quantity:     q.Total(),
		MovementID:   movementID,
		UserID:       userID,
		Date:         date,
		Description:  description,
	}
	if len(manifest) == 1 {
		a.BatchNumber = manifest[0].BatchNumber
	}
	return a
}

func appendActivities(ctx context.Context, repos TxRepos, acts []*entity.Activity) error {
	for _, a := range acts {
		if err := entity.ValidateActivity(a); err != nil {
			return fmt.Errorf("actividad %s/%s en %s: %w", a.Type, a.Direction, a.Location, err)
		}
		if err := repos.Activities.Append(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// execute aplica deduplicación, tope de tiempo y registro de fallos alrededor de una transacción.
func (s *MovementService) execute(ctx context.Context, kind, requestID string, fn func(ctx context.Context, repos TxRepos) error) (err error) {
	key := ""
	if requestID != "" && s.idem != nil {
		key = kind + ":" + requestID
		if err := s.idem.Acquire(ctx, key); err != nil {
			s.logFailure(kind, err)
			return err
		}
	}
	defer func() {
		if err != nil && key != "" {
			if rerr := s.idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				s.log.Warn().Err(rerr).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
			}
		}
	}()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if err = s.txRunner.Run(ctx, fn); err != nil {
		err = classify(err)
		s.logFailure(kind, err)
		return err
	}
	return nil
}

// classify traduce errores de contexto a la taxonomía de persistencia.
func classify(err error) error {
	if errors.Is(err, domain.ErrPersistenceTimeout) || errors.Is(err, domain.ErrPersistenceConflict) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceTimeout, err)
	}
	return err
}

// IsRecoverable errores reportables al usuario (validación); el resto son fallos internos.
func IsRecoverable(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrInvalidQuantity, domain.ErrProductNotFound,
		domain.ErrLocationNotFound, domain.ErrInsufficientStock, domain.ErrMovementNotFound,
		domain.ErrNotFound, domain.ErrConflict, domain.ErrPlacementExceedsInvoice, domain.ErrDuplicateRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *MovementService) logFailure(kind string, err error) {
	switch {
	case errors.Is(err, domain.ErrDeductionInvariant):
		s.log.Error().Err(err).Str("movement", kind).Str("fault", "deduction_invariant").
			Msg("inconsistencia entre total y lotes; solicitud abortada")
	case errors.Is(err, domain.ErrPersistenceTimeout), errors.Is(err, domain.ErrPersistenceConflict):
		s.log.Error().Err(err).Str("movement", kind).Msg("la transacción no pudo confirmarse")
	case IsRecoverable(err):
		s.log.Warn().Err(err).Str("movement", kind).Msg("movimiento rechazado")
	default:
		s.log.Error().Err(err).Str("movement", kind).Msg("movimiento fallido")
	}
}

func (s *MovementService) logCommitted(kind, id, number, userID string, items int) {
	s.log.Info().Str("movement", kind).Str("id", id).Str("number", number).
		Str("user", userID).Int("items", items).Msg("movimiento registrado")
}
