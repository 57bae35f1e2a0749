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

var (
	_ repository.InvoiceRepository   = (*InvoiceRepo)(nil)
	_ repository.PlacementRepository = (*PlacementRepo)(nil)
)

// InvoiceRepo facturas de proveedor (cabecera + ítems) usable con pool o tx.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera y sus ítems; llamar dentro de una transacción.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.SupplierInvoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO supplier_invoices (id, number, supplier_name, invoice_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.Number, inv.SupplierName, inv.InvoiceDate, inv.CreatedBy, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier invoice: %w", err)
	}
	for _, it := range inv.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO supplier_invoice_items (id, invoice_id, product_id, batch_number, pack_size,
				invoiced_pieces, placed_pieces, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, inv.ID, it.ProductID, it.BatchNumber, it.PackSize, it.InvoicedPieces, it.PlacedPieces, it.UnitCost)
		if err != nil {
			return fmt.Errorf("insert supplier invoice item: %w", err)
		}
	}
	return nil
}

const invoiceItemColumns = `id, invoice_id, product_id, batch_number, pack_size, invoiced_pieces, placed_pieces, unit_cost`

func scanInvoiceItem(row pgx.Row) (entity.InvoiceItem, error) {
	var it entity.InvoiceItem
	err := row.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.BatchNumber, &it.PackSize,
		&it.InvoicedPieces, &it.PlacedPieces, &it.UnitCost)
	return it, err
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.SupplierInvoice, error) {
	var inv entity.SupplierInvoice
	err := r.q.QueryRow(ctx, `
		SELECT id, number, supplier_name, invoice_date, created_by, created_at
		FROM supplier_invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.Number, &inv.SupplierName, &inv.InvoiceDate, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier invoice: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+invoiceItemColumns+` FROM supplier_invoice_items WHERE invoice_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list supplier invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanInvoiceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier invoice item: %w", err)
		}
		inv.Items = append(inv.Items, it)
	}
	return &inv, rows.Err()
}

// GetItemForUpdate bloquea el ítem para acumular lo colocado sin carreras (nil si no pertenece a la factura).
func (r *InvoiceRepo) GetItemForUpdate(ctx context.Context, invoiceID, itemID string) (*entity.InvoiceItem, error) {
	it, err := scanInvoiceItem(r.q.QueryRow(ctx,
		`SELECT `+invoiceItemColumns+` FROM supplier_invoice_items WHERE invoice_id = $1 AND id = $2 FOR UPDATE`,
		invoiceID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier invoice item for update: %w", err)
	}
	return &it, nil
}

func (r *InvoiceRepo) UpdateItemPlaced(ctx context.Context, itemID string, placed int64) error {
	cmd, err := r.q.Exec(ctx, `UPDATE supplier_invoice_items SET placed_pieces = $2 WHERE id = $1`, itemID, placed)
	if err != nil {
		return fmt.Errorf("update placed pieces: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PlacementRepo documentos de colocación.
type PlacementRepo struct {
	q Querier
}

func NewPlacementRepository(q Querier) *PlacementRepo {
	return &PlacementRepo{q: q}
}

func (r *PlacementRepo) Create(ctx context.Context, p *entity.Placement) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO placements (id, invoice_id, items, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.InvoiceID, p.Items, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert placement: %w", err)
	}
	return nil
}
