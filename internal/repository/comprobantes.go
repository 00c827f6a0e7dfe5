package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mfigueredo/comprobantes-tracker/internal/common"
	"github.com/mfigueredo/comprobantes-tracker/internal/entity"
)

// ComprobanteRepository persists extraction results.
type ComprobanteRepository interface {
	Create(ctx context.Context, c *entity.Comprobante) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Comprobante, error)
	List(ctx context.Context, limit, offset int) ([]entity.Comprobante, error)
	ListCreatedBetween(ctx context.Context, from, to *time.Time) ([]entity.Comprobante, error)
}

type comprobanteRepository struct {
	db *sqlx.DB
}

func NewComprobanteRepository(db *sqlx.DB) ComprobanteRepository {
	return &comprobanteRepository{db: db}
}

func (r *comprobanteRepository) Create(ctx context.Context, c *entity.Comprobante) error {
	query := `
		INSERT INTO comprobantes (
			id, filename, file_format, tipo, numero, fecha_emision,
			total, subtotal, iva, cuit_emisor, razon_social,
			confidence, raw_text, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID.String(),
		c.Filename,
		c.FileFormat,
		c.Tipo,
		c.Numero,
		c.FechaEmision,
		c.Total,
		c.Subtotal,
		c.IVA,
		c.CUITEmisor,
		c.RazonSocial,
		c.Confidence,
		c.RawText,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comprobante %s: %w: %w", c.ID, common.ErrDatabase, err)
	}
	return nil
}

func (r *comprobanteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Comprobante, error) {
	var c entity.Comprobante

	query := `
		SELECT id, filename, file_format, tipo, numero, fecha_emision,
		       total, subtotal, iva, cuit_emisor, razon_social,
		       confidence, raw_text, created_at
		FROM comprobantes
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &c, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("get comprobante %s: %w: %w", id, common.ErrDatabase, err)
	}
	return &c, nil
}

func (r *comprobanteRepository) List(ctx context.Context, limit, offset int) ([]entity.Comprobante, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var out []entity.Comprobante

	query := `
		SELECT id, filename, file_format, tipo, numero, fecha_emision,
		       total, subtotal, iva, cuit_emisor, razon_social,
		       confidence, raw_text, created_at
		FROM comprobantes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &out, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list comprobantes: %w: %w", common.ErrDatabase, err)
	}
	return out, nil
}

// ListCreatedBetween returns every record stored inside the window, newest
// first. Nil bounds leave that side of the window open.
func (r *comprobanteRepository) ListCreatedBetween(ctx context.Context, from, to *time.Time) ([]entity.Comprobante, error) {
	query := `
		SELECT id, filename, file_format, tipo, numero, fecha_emision,
		       total, subtotal, iva, cuit_emisor, razon_social,
		       confidence, raw_text, created_at
		FROM comprobantes
	`

	var conds []string
	var args []any
	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var out []entity.Comprobante
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list comprobantes by window: %w: %w", common.ErrDatabase, err)
	}
	return out, nil
}
