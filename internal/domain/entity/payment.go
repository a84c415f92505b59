package entity

import "github.com/shopspring/decimal"

// Medios de pago soportados.
const (
	MedioEfectivo         = "EFECTIVO"
	MedioTarjeta          = "TARJETA"
	MedioTransferencia    = "TRANSFERENCIA"
	MedioBilleteraDigital = "BILLETERA_DIGITAL"
)

// PaymentSelection es la variante etiquetada del medio de pago de una venta.
// Medio indica qué campos son significativos; exactamente una selección queda
// asociada a la venta al momento de confirmarse.
type PaymentSelection struct {
	Medio string

	// Efectivo
	Entregado decimal.Decimal
	Vuelto    decimal.Decimal

	// Tarjeta
	Red            string
	Cuotas         int
	UltimosDigitos string

	// Transferencia
	BancoID    string
	Verificada bool
	Referencia string

	// Billetera digital (QR)
	OperationID  string
	Confirmada   bool
	Confirmacion string // payload crudo devuelto por la pasarela
}

// Descripcion devuelve el resumen persistible del medio de pago.
func (p PaymentSelection) Descripcion() string {
	return p.Medio
}

// ReferenciaPago devuelve la referencia externa según la variante.
func (p PaymentSelection) ReferenciaPago() string {
	switch p.Medio {
	case MedioTransferencia:
		return p.Referencia
	case MedioBilleteraDigital:
		return p.OperationID
	case MedioTarjeta:
		return p.UltimosDigitos
	}
	return ""
}
