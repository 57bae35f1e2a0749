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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas; importes en NUMERIC vía pgx-shopspring-decimal.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, number, shop_id, items, payment_method, customer_name,
			subtotal, vat, total, amount_paid, balance_due, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.Number, s.Shop.ID, s.Items, s.PaymentMethod, s.CustomerName,
		s.Subtotal, s.VAT, s.Total, s.AmountPaid, s.BalanceDue, s.CreatedBy, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s := entity.Sale{Shop: entity.LocationRef{Kind: entity.LocationShop}}
	err := r.q.QueryRow(ctx, `
		SELECT id, number, shop_id, items, payment_method, customer_name,
			subtotal, vat, total, amount_paid, balance_due, created_by, created_at
		FROM sales WHERE id = $1`, id).Scan(
		&s.ID, &s.Number, &s.Shop.ID, &s.Items, &s.PaymentMethod, &s.CustomerName,
		&s.Subtotal, &s.VAT, &s.Total, &s.AmountPaid, &s.BalanceDue, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}
