package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

var _ repository.PaymentLedgerRepository = (*PaymentLedgerRepo)(nil)

// PaymentLedgerRepo libro de caja sobre PostgreSQL (usable con pool o tx).
type PaymentLedgerRepo struct {
	q Querier
}

// NewPaymentLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentLedgerRepository(q Querier) *PaymentLedgerRepo {
	return &PaymentLedgerRepo{q: q}
}

// Record registra el asiento y devuelve su ID.
func (r *PaymentLedgerRepo) Record(entry *entity.PaymentEntry) (string, error) {
	query := `
		INSERT INTO payment_ledger (id, comprobante_id, branch_id, medio, monto, referencia, fecha, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ComprobanteID, entry.BranchID, entry.Medio,
		entry.Monto, entry.Referencia, entry.Fecha, entry.CreatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("record payment: %w", err)
	}
	return entry.ID, nil
}

// ListByBranchAndDate lista los asientos de una sucursal para un día calendario.
func (r *PaymentLedgerRepo) ListByBranchAndDate(branchID string, dia time.Time) ([]*entity.PaymentEntry, error) {
	desde := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, dia.Location())
	hasta := desde.AddDate(0, 0, 1)
	query := `
		SELECT id, comprobante_id, branch_id, medio, monto, referencia, fecha, created_by
		FROM payment_ledger
		WHERE branch_id = $1 AND fecha >= $2 AND fecha < $3
		ORDER BY fecha`
	rows, err := r.q.Query(context.Background(), query, branchID, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*entity.PaymentEntry
	for rows.Next() {
		var e entity.PaymentEntry
		if err := rows.Scan(&e.ID, &e.ComprobanteID, &e.BranchID, &e.Medio,
			&e.Monto, &e.Referencia, &e.Fecha, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
