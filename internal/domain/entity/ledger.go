package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEntry es un asiento del libro de caja: un pago registrado contra un
// comprobante emitido.
type PaymentEntry struct {
	ID            string
	ComprobanteID string
	BranchID      string
	Medio         string
	Monto         decimal.Decimal
	Referencia    string
	Fecha         time.Time
	CreatedBy     string
}
