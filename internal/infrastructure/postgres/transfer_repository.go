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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados; los ítems y sus manifiestos se guardan en JSONB.
type TransferRepo struct {
	q Querier
}

func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferSelect = `
	SELECT id, number, from_kind, from_id, to_kind, to_id, items, status, notes, transfer_date,
		version, created_by, created_at, updated_at
	FROM transfers WHERE id = $1`

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (id, number, from_kind, from_id, to_kind, to_id, items, status, notes, transfer_date,
			version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.Number, t.From.Kind, t.From.ID, t.To.Kind, t.To.ID, t.Items, t.Status, t.Notes, t.TransferDate,
		t.Version, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.Transfer, error) {
	var t entity.Transfer
	err := r.q.QueryRow(ctx, query, id).Scan(&t.ID, &t.Number, &t.From.Kind, &t.From.ID, &t.To.Kind, &t.To.ID,
		&t.Items, &t.Status, &t.Notes, &t.TransferDate, &t.Version, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return &t, nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, transferSelect, id)
}

// GetForUpdate bloquea el documento: dos ediciones del mismo traslado se serializan.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, transferSelect+` FOR UPDATE`, id)
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transfers SET from_kind = $2, from_id = $3, to_kind = $4, to_id = $5, items = $6, status = $7,
			notes = $8, transfer_date = $9, version = $10, updated_at = $11
		WHERE id = $1`,
		t.ID, t.From.Kind, t.From.ID, t.To.Kind, t.To.ID, t.Items, t.Status, t.Notes, t.TransferDate, t.Version, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}
