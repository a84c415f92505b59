package repository

import (
	"time"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
)

// PaymentLedgerRepository define el puerto del libro de caja.
type PaymentLedgerRepository interface {
	// Record registra el pago y devuelve el ID del asiento.
	Record(entry *entity.PaymentEntry) (string, error)
	ListByBranchAndDate(branchID string, dia time.Time) ([]*entity.PaymentEntry, error)
}
