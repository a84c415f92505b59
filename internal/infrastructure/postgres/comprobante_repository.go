package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

var _ repository.ComprobanteRepository = (*ComprobanteRepo)(nil)

// ComprobanteRepo implementación de ComprobanteRepository sobre PostgreSQL (usable con pool o tx).
type ComprobanteRepo struct {
	q Querier
}

// NewComprobanteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComprobanteRepository(q Querier) *ComprobanteRepo {
	return &ComprobanteRepo{q: q}
}

const comprobanteColumns = `id, tipo, branch_id, client_id, operator_id, numero, fecha,
	subtotal, ajuste_tipo, ajuste_pct, neto_ajustado, total_iva, total,
	estado, cae, cae_vencimiento, medio_pago, pago_referencia, created_at, updated_at`

func scanComprobante(row pgx.Row) (*entity.Comprobante, error) {
	var c entity.Comprobante
	err := row.Scan(&c.ID, &c.Tipo, &c.BranchID, &c.ClientID, &c.OperatorID, &c.Numero, &c.Fecha,
		&c.Subtotal, &c.AjusteTipo, &c.AjustePct, &c.NetoAjustado, &c.TotalIVA, &c.Total,
		&c.Estado, &c.CAE, &c.CAEVencimiento, &c.MedioPago, &c.PagoReferencia, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste la cabecera del comprobante. La constraint única sobre
// (tipo, branch_id, numero) es la última defensa contra numeración duplicada.
func (r *ComprobanteRepo) Create(comp *entity.Comprobante) error {
	query := `
		INSERT INTO comprobantes (` + comprobanteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		comp.ID, comp.Tipo, comp.BranchID, comp.ClientID, comp.OperatorID, comp.Numero, comp.Fecha,
		comp.Subtotal, comp.AjusteTipo, comp.AjustePct, comp.NetoAjustado, comp.TotalIVA, comp.Total,
		comp.Estado, comp.CAE, comp.CAEVencimiento, comp.MedioPago, comp.PagoReferencia,
		comp.CreatedAt, comp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: numero %d ya emitido", domain.ErrNumberingConflict, comp.Numero)
		}
		return fmt.Errorf("create comprobante: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea del comprobante.
func (r *ComprobanteRepo) CreateDetail(det *entity.ComprobanteDetail) error {
	query := `
		INSERT INTO comprobante_details (id, comprobante_id, product_id, codigo, nombre, cantidad, precio_unitario, tasa_iva, subtotal, manual)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		det.ID, det.ComprobanteID, det.ProductID, det.Codigo, det.Nombre,
		det.Cantidad, det.PrecioUnitario, det.TasaIVA, det.Subtotal, det.Manual,
	)
	if err != nil {
		return fmt.Errorf("create comprobante detail: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera. nil si no existe.
func (r *ComprobanteRepo) GetByID(id string) (*entity.Comprobante, error) {
	query := `SELECT ` + comprobanteColumns + ` FROM comprobantes WHERE id = $1`
	c, err := scanComprobante(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comprobante: %w", err)
	}
	return c, nil
}

// GetDetails obtiene el detalle de un comprobante en orden de inserción.
func (r *ComprobanteRepo) GetDetails(comprobanteID string) ([]*entity.ComprobanteDetail, error) {
	query := `
		SELECT id, comprobante_id, product_id, codigo, nombre, cantidad, precio_unitario, tasa_iva, subtotal, manual
		FROM comprobante_details
		WHERE comprobante_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, comprobanteID)
	if err != nil {
		return nil, fmt.Errorf("get comprobante details: %w", err)
	}
	defer rows.Close()

	var out []*entity.ComprobanteDetail
	for rows.Next() {
		var d entity.ComprobanteDetail
		if err := rows.Scan(&d.ID, &d.ComprobanteID, &d.ProductID, &d.Codigo, &d.Nombre,
			&d.Cantidad, &d.PrecioUnitario, &d.TasaIVA, &d.Subtotal, &d.Manual); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// ListByBranch lista comprobantes de una sucursal en un rango de fechas,
// más recientes primero.
func (r *ComprobanteRepo) ListByBranch(branchID string, desde, hasta time.Time, limit, offset int) ([]*entity.Comprobante, error) {
	query := `
		SELECT ` + comprobanteColumns + `
		FROM comprobantes
		WHERE branch_id = $1 AND fecha >= $2 AND fecha < $3
		ORDER BY fecha DESC, numero DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, branchID, desde, hasta, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comprobantes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Comprobante
	for rows.Next() {
		c, err := scanComprobante(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comprobante: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
