package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tiendas-api/internal/application/inventory"
	"github.com/jhoicas/Tiendas-api/internal/domain"
	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
	"github.com/jhoicas/Tiendas-api/internal/infrastructure/memory"
)

var (
	store1 = entity.StoreRef("store-1")
	shop1  = entity.ShopRef("shop-1")
)

type fixture struct {
	db  *memory.Store
	svc *inventory.MovementService
}

func newFixture(t *testing.T, cfg inventory.ServiceConfig) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.NewStore()
	repos := db.Repos()

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: "p-1", SKU: "SKU-1", Name: "Cuaderno", PiecesPerPack: 10,
		Price: decimal.RequireFromString("2.10"), TaxRate: decimal.RequireFromString("0.16"),
	}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: "p-2", SKU: "SKU-2", Name: "Lápiz", PiecesPerPack: 12,
		Price: decimal.RequireFromString("0.50"), TaxRate: decimal.Zero,
	}))
	require.NoError(t, repos.Locations.CreateStore(ctx, &entity.Store{ID: store1.ID, Name: "Bodega central"}))
	require.NoError(t, repos.Locations.CreateShop(ctx, &entity.Shop{ID: shop1.ID, Name: "Tienda centro"}))
	require.NoError(t, repos.Invoices.Create(ctx, &entity.SupplierInvoice{
		ID: "inv-1", Number: "FP-100", SupplierName: "Papelera SA",
		Items: []entity.InvoiceItem{
			{ID: "item-1", InvoiceID: "inv-1", ProductID: "p-1", BatchNumber: "L-1", PackSize: 10, InvoicedPieces: 30},
		},
	}))

	svc := inventory.NewMovementService(db, memory.NewSequence(), memory.NewIdempotency(time.Hour), zerolog.Nop(), cfg)
	return &fixture{db: db, svc: svc}
}

func (f *fixture) seed(t *testing.T, productID string, loc entity.LocationRef, entries ...entity.BatchEntry) {
	t.Helper()
	err := f.db.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
		rec, err := repos.Stock.LockOrCreate(ctx, productID, loc)
		if err != nil {
			return err
		}
		rec.Append(entries...)
		return repos.Stock.Save(ctx, rec)
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, productID string, loc entity.LocationRef) *entity.LocationInventory {
	t.Helper()
	rec, err := f.db.Repos().Stock.Get(context.Background(), productID, loc)
	require.NoError(t, err)
	return rec
}

func (f *fixture) activities(t *testing.T, loc entity.LocationRef) []*entity.Activity {
	t.Helper()
	acts, err := f.db.Repos().Activities.List(context.Background(), entity.ActivityFilter{Location: &loc})
	require.NoError(t, err)
	return acts
}

func total(t *testing.T, rec *entity.LocationInventory) int64 {
	t.Helper()
	if rec == nil {
		return 0
	}
	require.True(t, rec.Consistent(), "total=%d suma=%d", rec.TotalQuantity, rec.EntriesTotal())
	return rec.TotalQuantity
}

func transferIn(items ...inventory.LineInput) inventory.TransferInput {
	return inventory.TransferInput{UserID: "u-1", From: store1, To: shop1, Items: items}
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_Escenario(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})

	res, err := f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1", Packs: 1, Pieces: 5}))
	require.NoError(t, err)
	assert.Equal(t, "TRF-000001", res.Number)
	require.Len(t, res.Records, 2)

	src := f.stock(t, "p-1", store1)
	assert.Equal(t, int64(5), total(t, src))
	assert.Equal(t, []entity.BatchEntry{{BatchNumber: "B1", PackSize: 10, Packs: 0, Pieces: 5}}, src.Entries)

	dst := f.stock(t, "p-1", shop1)
	assert.Equal(t, int64(15), total(t, dst))
	require.Len(t, dst.Entries, 1)
	assert.Equal(t, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 1, Pieces: 5, SourceTransferID: res.ID}, dst.Entries[0])

	out := f.activities(t, store1)
	require.Len(t, out, 1)
	assert.Equal(t, entity.ActivityTransfer, out[0].Type)
	assert.Equal(t, entity.DirectionOut, out[0].Direction)
	assert.Equal(t, int64(15), out[0].Quantity)
	assert.Equal(t, "B1", out[0].BatchNumber)

	in := f.activities(t, shop1)
	require.Len(t, in, 1)
	assert.Equal(t, entity.ActivityReceipt, in[0].Type)
	assert.Equal(t, entity.DirectionIn, in[0].Direction)
	assert.Equal(t, int64(15), in[0].Quantity)
	require.NotNil(t, in[0].Counterparty)
	assert.Equal(t, store1, *in[0].Counterparty)

	tr, err := f.db.Repos().Transfers.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	require.Len(t, tr.Items, 1)
	assert.Equal(t, int64(15), tr.Items[0].Manifest.TotalPieces())
	assert.Equal(t, 1, tr.Version)
}

func TestTransfer_ConservaCantidadesConVariosLotes(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1,
		entity.BatchEntry{BatchNumber: "A", PackSize: 10, Packs: 1},
		entity.BatchEntry{BatchNumber: "B", PackSize: 12, Packs: 1},
	)

	_, err := f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 15}))
	require.NoError(t, err)

	assert.Equal(t, int64(7), total(t, f.stock(t, "p-1", store1)))
	dst := f.stock(t, "p-1", shop1)
	assert.Equal(t, int64(15), total(t, dst))
	require.Len(t, dst.Entries, 2)
	assert.Equal(t, "A", dst.Entries[0].BatchNumber)
	assert.Equal(t, int64(10), dst.Entries[0].TotalPieces())
	assert.Equal(t, "B", dst.Entries[1].BatchNumber)
	assert.Equal(t, int64(12), dst.Entries[1].PackSize)
}

func TestTransfer_MismoProductoEnVariosItems(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})

	_, err := f.svc.Transfer(context.Background(), transferIn(
		inventory.LineInput{ProductID: "p-1", Pieces: 8},
		inventory.LineInput{ProductID: "p-1", Pieces: 8},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total(t, f.stock(t, "p-1", store1)))
	assert.Equal(t, int64(16), total(t, f.stock(t, "p-1", shop1)))
}

func TestTransfer_TodoONada(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	f.seed(t, "p-2", store1, entity.BatchEntry{BatchNumber: "L", PackSize: 12, Pieces: 3})
	before := f.stock(t, "p-1", store1)

	_, err := f.svc.Transfer(context.Background(), transferIn(
		inventory.LineInput{ProductID: "p-1", Pieces: 5},
		inventory.LineInput{ProductID: "p-2", Pieces: 10},
	))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var me *domain.MovementError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 1, me.Item)
	assert.Equal(t, "Lápiz", me.ProductName)
	assert.Equal(t, int64(7), me.Shortfall())

	assert.Equal(t, before, f.stock(t, "p-1", store1), "el ítem válido no debe aplicarse")
	assert.Nil(t, f.stock(t, "p-1", shop1))
	assert.Empty(t, f.activities(t, store1))
	assert.Empty(t, f.activities(t, shop1))
}

func TestTransfer_StockInsuficienteNoCambiaElRegistro(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 1})
	before := f.stock(t, "p-1", store1)

	_, err := f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 15}))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var me *domain.MovementError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, int64(15), me.Requested)
	assert.Equal(t, int64(10), me.Available)
	assert.Equal(t, before, f.stock(t, "p-1", store1))
}

func TestTransfer_ItemSinCantidadEsNoOp(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	f.seed(t, "p-2", store1, entity.BatchEntry{BatchNumber: "L", PackSize: 12, Packs: 1})

	_, err := f.svc.Transfer(context.Background(), transferIn(
		inventory.LineInput{ProductID: "p-1"},
		inventory.LineInput{ProductID: "p-2", Pieces: 2},
	))
	require.NoError(t, err)

	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", store1)))
	assert.Nil(t, f.stock(t, "p-1", shop1))
	acts := f.activities(t, store1)
	require.Len(t, acts, 1)
	assert.Equal(t, "p-2", acts[0].ProductID)

	_, err = f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1"}))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_CantidadQueDesbordaSeRechaza(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})

	// 1844674407370955162 * 10 no cabe en int64
	_, err := f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1", Packs: 1844674407370955162}))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", store1)))
	assert.Nil(t, f.stock(t, "p-1", shop1))
	assert.Empty(t, f.activities(t, store1))
}

func TestTransfer_Validaciones(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	ctx := context.Background()

	_, err := f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "p-1", Pieces: -1}))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "nope", Pieces: 1}))
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	in := transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 1})
	in.To = entity.ShopRef("no-existe")
	_, err = f.svc.Transfer(ctx, in)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	in = transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 1})
	in.From, in.To = shop1, store1
	_, err = f.svc.Transfer(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// sin registro en el origen
	_, err = f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "p-2", Pieces: 1}))
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", store1)))
}

func TestTransfer_DescuadreEsViolacionDeInvariante(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	// descuadre forzado: el total dice 25 pero los lotes suman 20
	err := f.db.Run(context.Background(), func(ctx context.Context, repos inventory.TxRepos) error {
		rec, err := repos.Stock.GetForUpdate(ctx, "p-1", store1)
		if err != nil {
			return err
		}
		rec.TotalQuantity = 25
		return repos.Stock.Save(ctx, rec)
	})
	require.NoError(t, err)

	_, err = f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 22}))
	require.ErrorIs(t, err, domain.ErrDeductionInvariant)
	assert.False(t, inventory.IsRecoverable(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversión y edición de traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestRevertTransfer_RestauraLotesExactos(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1,
		entity.BatchEntry{BatchNumber: "A", PackSize: 10, Packs: 1},
		entity.BatchEntry{BatchNumber: "B", PackSize: 12, Packs: 1},
	)
	ctx := context.Background()

	res, err := f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 15}))
	require.NoError(t, err)

	_, err = f.svc.RevertTransfer(ctx, inventory.RevertTransferInput{UserID: "u-1", TransferID: res.ID})
	require.NoError(t, err)

	src := f.stock(t, "p-1", store1)
	assert.Equal(t, int64(22), total(t, src))
	tag := "REVERTED-" + res.ID
	assert.Equal(t, []entity.BatchEntry{
		{BatchNumber: "A", PackSize: 10, Packs: 1, Pieces: 0, SourceTransferID: tag},
		{BatchNumber: "B", PackSize: 12, Packs: 0, Pieces: 5, SourceTransferID: tag},
		{BatchNumber: "B", PackSize: 12, Packs: 0, Pieces: 7},
	}, src.Entries)

	dst := f.stock(t, "p-1", shop1)
	assert.Equal(t, int64(0), total(t, dst))
	assert.Empty(t, dst.Entries)

	tr, err := f.db.Repos().Transfers.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, tr.Status)
	assert.Equal(t, 2, tr.Version)

	acts := f.activities(t, shop1)
	require.Len(t, acts, 2)
	assert.Equal(t, entity.ActivityAdjustment, acts[0].Type)
	assert.Equal(t, entity.DirectionOut, acts[0].Direction)

	_, err = f.svc.RevertTransfer(ctx, inventory.RevertTransferInput{UserID: "u-1", TransferID: res.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.RevertTransfer(ctx, inventory.RevertTransferInput{UserID: "u-1", TransferID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

func TestRevertTransfer_ConVentaParcialDescuentaDelResto(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "A", PackSize: 10, Packs: 2})
	ctx := context.Background()

	res, err := f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 15}))
	require.NoError(t, err)
	f.seed(t, "p-1", shop1, entity.BatchEntry{BatchNumber: "C", PackSize: 1, Pieces: 10})

	_, err = f.svc.Sell(ctx, inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
		Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-1", Pieces: 4}}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(21), total(t, f.stock(t, "p-1", shop1)))

	_, err = f.svc.RevertTransfer(ctx, inventory.RevertTransferInput{UserID: "u-1", TransferID: res.ID})
	require.NoError(t, err)

	dst := f.stock(t, "p-1", shop1)
	assert.Equal(t, int64(6), total(t, dst))
	assert.Equal(t, []entity.BatchEntry{{BatchNumber: "C", PackSize: 1, Packs: 6}}, dst.Entries)
	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", store1)))
}

func TestRevertTransfer_DestinoSinStockSuficiente(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "A", PackSize: 10, Packs: 2})
	ctx := context.Background()

	res, err := f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 15}))
	require.NoError(t, err)
	_, err = f.svc.Sell(ctx, inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCard,
		Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-1", Pieces: 15}}},
	})
	require.NoError(t, err)

	_, err = f.svc.RevertTransfer(ctx, inventory.RevertTransferInput{UserID: "u-1", TransferID: res.ID})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	tr, err := f.db.Repos().Transfers.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusActive, tr.Status)
	assert.Equal(t, int64(5), total(t, f.stock(t, "p-1", store1)))
}

func TestUpdateTransfer_RevierteYAplica(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "A", PackSize: 10, Packs: 2})
	f.seed(t, "p-2", store1, entity.BatchEntry{BatchNumber: "L", PackSize: 12, Packs: 1})
	ctx := context.Background()

	res, err := f.svc.Transfer(ctx, transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 15}))
	require.NoError(t, err)

	upd, err := f.svc.UpdateTransfer(ctx, inventory.UpdateTransferInput{
		TransferID: res.ID,
		TransferInput: transferIn(
			inventory.LineInput{ProductID: "p-1", Pieces: 5},
			inventory.LineInput{ProductID: "p-2", Pieces: 12},
		),
	})
	require.NoError(t, err)
	assert.Equal(t, res.Number, upd.Number)

	assert.Equal(t, int64(15), total(t, f.stock(t, "p-1", store1)))
	assert.Equal(t, int64(5), total(t, f.stock(t, "p-1", shop1)))
	assert.Equal(t, int64(0), total(t, f.stock(t, "p-2", store1)))
	assert.Equal(t, int64(12), total(t, f.stock(t, "p-2", shop1)))

	tr, err := f.db.Repos().Transfers.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Version)
	assert.Equal(t, entity.TransferStatusActive, tr.Status)
	require.Len(t, tr.Items, 2)

	// una edición imposible no deja rastro
	_, err = f.svc.UpdateTransfer(ctx, inventory.UpdateTransferInput{
		TransferID:    res.ID,
		TransferInput: transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 100}),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), total(t, f.stock(t, "p-1", shop1)))
	assert.Equal(t, int64(12), total(t, f.stock(t, "p-2", shop1)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSell_DescuentaYCalculaImportes(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{SaleNumberPrefix: "V"})
	f.seed(t, "p-1", shop1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})

	res, err := f.svc.Sell(context.Background(), inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
		Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-1", Packs: 1, Pieces: 5}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "V-000001", res.Number)
	require.NotNil(t, res.Sale)
	assert.Equal(t, "31.5", res.Sale.Subtotal.String())
	assert.Equal(t, "5.04", res.Sale.VAT.String())
	assert.Equal(t, "36.54", res.Sale.Total.String())
	assert.True(t, res.Sale.BalanceDue.IsZero())
	require.Len(t, res.Sale.Items, 1)
	assert.Equal(t, int64(15), res.Sale.Items[0].Manifest.TotalPieces())

	assert.Equal(t, int64(5), total(t, f.stock(t, "p-1", shop1)))
	acts := f.activities(t, shop1)
	require.Len(t, acts, 1)
	assert.Equal(t, entity.ActivitySale, acts[0].Type)
	assert.Equal(t, entity.DirectionOut, acts[0].Direction)
	assert.Equal(t, int64(15), acts[0].Quantity)
}

func TestSell_ItemSinCantidadEsNoOp(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", shop1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	f.seed(t, "p-2", shop1, entity.BatchEntry{BatchNumber: "L", PackSize: 12, Packs: 1})

	res, err := f.svc.Sell(context.Background(), inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
		Items: []inventory.SaleLineInput{
			{LineInput: inventory.LineInput{ProductID: "p-1"}},
			{LineInput: inventory.LineInput{ProductID: "p-2", Pieces: 2}},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Sale.Items, 1)
	assert.Equal(t, "p-2", res.Sale.Items[0].ProductID)
	assert.Equal(t, "1", res.Sale.Total.String())

	p1 := f.stock(t, "p-1", shop1)
	assert.Equal(t, int64(20), total(t, p1))
	assert.Equal(t, []entity.BatchEntry{{BatchNumber: "B1", PackSize: 10, Packs: 2}}, p1.Entries)
	assert.Equal(t, int64(10), total(t, f.stock(t, "p-2", shop1)))

	acts := f.activities(t, shop1)
	require.Len(t, acts, 1)
	assert.Equal(t, "p-2", acts[0].ProductID)
}

func TestSell_Credito(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", shop1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	ctx := context.Background()
	line := []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-1", Pieces: 15}}}

	_, err := f.svc.Sell(ctx, inventory.SaleInput{UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCredit, Items: line})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "crédito requiere cliente")
	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", shop1)))

	paid := decimal.NewFromInt(10)
	res, err := f.svc.Sell(ctx, inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCredit,
		CustomerName: "Ana", AmountPaid: &paid, Items: line,
	})
	require.NoError(t, err)
	assert.Equal(t, "26.54", res.Sale.BalanceDue.String())
	assert.Equal(t, "10", res.Sale.AmountPaid.String())
}

func TestSell_PrecioExplicitoYStockInsuficiente(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-2", shop1, entity.BatchEntry{BatchNumber: "L", PackSize: 12, Packs: 1})
	ctx := context.Background()
	price := decimal.RequireFromString("0.75")

	res, err := f.svc.Sell(ctx, inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
		Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-2", Pieces: 4}, UnitPrice: &price}},
	})
	require.NoError(t, err)
	assert.Equal(t, "3", res.Sale.Total.String())

	_, err = f.svc.Sell(ctx, inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
		Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-2", Pieces: 9}}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, inventory.IsRecoverable(err))
	assert.Equal(t, int64(8), total(t, f.stock(t, "p-2", shop1)))

	// sin registro del producto en la tienda
	_, err = f.svc.Sell(ctx, inventory.SaleInput{
		UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
		Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-1", Pieces: 1}}},
	})
	require.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestSell_ConcurrenciaNoSobrevende(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", shop1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 1})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Sell(context.Background(), inventory.SaleInput{
				UserID: "u-1", ShopID: shop1.ID, PaymentMethod: entity.PaymentCash,
				Items: []inventory.SaleLineInput{{LineInput: inventory.LineInput{ProductID: "p-1", Pieces: 1}}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, fail)
	assert.Equal(t, int64(0), total(t, f.stock(t, "p-1", shop1)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Colocaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestPlace_CreaLoteYRespetaLoFacturado(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	ctx := context.Background()

	res, err := f.svc.Place(ctx, inventory.PlacementInput{
		UserID: "u-1", InvoiceID: "inv-1",
		Items: []inventory.PlacementItemInput{
			{InvoiceItemID: "item-1", StoreID: store1.ID, Packs: 2},
			{InvoiceItemID: "item-1", StoreID: store1.ID},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := f.stock(t, "p-1", store1)
	assert.Equal(t, int64(20), total(t, rec))
	assert.Equal(t, []entity.BatchEntry{{BatchNumber: "L-1", PackSize: 10, Packs: 2}}, rec.Entries)

	acts := f.activities(t, store1)
	require.Len(t, acts, 1)
	assert.Equal(t, entity.ActivityPlacement, acts[0].Type)
	assert.Equal(t, "L-1", acts[0].BatchNumber)

	inv, err := f.db.Repos().Invoices.GetByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), inv.Items[0].PlacedPieces)

	_, err = f.svc.Place(ctx, inventory.PlacementInput{
		UserID: "u-1", InvoiceID: "inv-1",
		Items: []inventory.PlacementItemInput{{InvoiceItemID: "item-1", StoreID: store1.ID, Packs: 1, Pieces: 5}},
	})
	require.ErrorIs(t, err, domain.ErrPlacementExceedsInvoice)
	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", store1)))

	_, err = f.svc.Place(ctx, inventory.PlacementInput{
		UserID: "u-1", InvoiceID: "inv-1",
		Items: []inventory.PlacementItemInput{{InvoiceItemID: "item-1", StoreID: "no-existe", Pieces: 1}},
	})
	require.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestPlace_ItemSinCantidadEsNoOp(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	ctx := context.Background()

	res, err := f.svc.Place(ctx, inventory.PlacementInput{
		UserID: "u-1", InvoiceID: "inv-1",
		Items: []inventory.PlacementItemInput{
			{InvoiceItemID: "item-1", StoreID: store1.ID},
			{InvoiceItemID: "item-1", StoreID: store1.ID, Pieces: 5},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Placement)
	require.Len(t, res.Placement.Items, 1)
	assert.Equal(t, int64(5), res.Placement.Items[0].Quantity)

	rec := f.stock(t, "p-1", store1)
	assert.Equal(t, int64(5), total(t, rec))
	assert.Len(t, rec.Entries, 1)
	assert.Len(t, f.activities(t, store1), 1)

	inv, err := f.db.Repos().Invoices.GetByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), inv.Items[0].PlacedPieces)

	_, err = f.svc.Place(ctx, inventory.PlacementInput{
		UserID: "u-1", InvoiceID: "inv-1",
		Items: []inventory.PlacementItemInput{{InvoiceItemID: "item-1", StoreID: store1.ID}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlace_CantidadQueDesbordaSeRechaza(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	ctx := context.Background()

	_, err := f.svc.Place(ctx, inventory.PlacementInput{
		UserID: "u-1", InvoiceID: "inv-1",
		Items: []inventory.PlacementItemInput{{InvoiceItemID: "item-1", StoreID: store1.ID, Packs: 1844674407370955162}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Nil(t, f.stock(t, "p-1", store1))
	assert.Empty(t, f.activities(t, store1))
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia y tiempos de espera
// ──────────────────────────────────────────────────────────────────────────────

func TestMovement_IdempotenciaPorRequestID(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})
	ctx := context.Background()

	in := transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 30})
	in.RequestID = "req-1"
	_, err := f.svc.Transfer(ctx, in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// el fallo libera la clave: se puede reintentar con datos corregidos
	in.Items[0].Pieces = 5
	_, err = f.svc.Transfer(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Transfer(ctx, in)
	require.ErrorIs(t, err, domain.ErrDuplicateRequest)
	assert.Equal(t, int64(15), total(t, f.stock(t, "p-1", store1)))
}

func TestMovement_TiempoDeEsperaAgotado(t *testing.T) {
	f := newFixture(t, inventory.ServiceConfig{Timeout: 30 * time.Millisecond})
	f.seed(t, "p-1", store1, entity.BatchEntry{BatchNumber: "B1", PackSize: 10, Packs: 2})

	started, release := make(chan struct{}), make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.db.Run(context.Background(), func(context.Context, inventory.TxRepos) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	_, err := f.svc.Transfer(context.Background(), transferIn(inventory.LineInput{ProductID: "p-1", Pieces: 5}))
	close(release)
	<-done

	require.ErrorIs(t, err, domain.ErrPersistenceTimeout)
	assert.Equal(t, int64(20), total(t, f.stock(t, "p-1", store1)))
}
