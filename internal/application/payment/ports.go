package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway define el puerto de salida hacia la pasarela de pagos QR.
// La implementación concreta (Mercado Pago) vive en infrastructure; para
// tests se inyecta un fake.
type Gateway interface {
	// CreateQrOperation registra la operación y devuelve el payload del QR
	// a mostrar en pantalla.
	CreateQrOperation(ctx context.Context, monto decimal.Decimal, operationID string) (qrPayload string, err error)
	// PollStatus consulta si la operación fue pagada. details es el payload
	// crudo de confirmación cuando paid es true.
	PollStatus(ctx context.Context, operationID string) (paid bool, details string, err error)
}

// BankVerifier define el puerto de verificación de transferencias bancarias.
type BankVerifier interface {
	// Verify consulta al banco si entró una transferencia por el monto.
	Verify(ctx context.Context, bancoID string, monto decimal.Decimal) (verified bool, referencia string, err error)
}
