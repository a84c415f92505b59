package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de comprobante. Los tipos A/B/C requieren autorización de la autoridad
// fiscal (CAE); X y Presupuesto son documentos internos sin valor fiscal.
const (
	TipoFacturaA    = "FACTURA_A"
	TipoFacturaB    = "FACTURA_B"
	TipoFacturaC    = "FACTURA_C"
	TipoComprobX    = "COMPROBANTE_X"
	TipoPresupuesto = "PRESUPUESTO"
)

// Estados del comprobante persistido.
const (
	EstadoAutorizado = "AUTORIZADO" // CAE obtenido de la autoridad fiscal
	// EstadoNoAutorizado marca la emisión en contingencia: la autoridad fiscal no
	// respondió y el operador eligió emitir igual, sin CAE. No es pérdida de datos
	// silenciosa: el comprobante queda identificable para regularizar después.
	EstadoNoAutorizado  = "NO_AUTORIZADO"
	EstadoInterno       = "INTERNO"     // comprobante X, nunca pasa por la autoridad
	EstadoPresupuestado = "PRESUPUESTO" // presupuesto, sin efectos de stock ni caja
)

// TipoRequiereAutorizacion indica si el tipo debe pasar por la autoridad fiscal.
func TipoRequiereAutorizacion(tipo string) bool {
	switch tipo {
	case TipoFacturaA, TipoFacturaB, TipoFacturaC:
		return true
	}
	return false
}

// TipoValido valida que el tipo pertenezca a la enumeración cerrada.
func TipoValido(tipo string) bool {
	switch tipo {
	case TipoFacturaA, TipoFacturaB, TipoFacturaC, TipoComprobX, TipoPresupuesto:
		return true
	}
	return false
}

// Comprobante es la cabecera del documento comercial emitido (factura, X o
// presupuesto) con sus totales finales ya calculados.
type Comprobante struct {
	ID         string
	Tipo       string
	BranchID   string
	ClientID   string
	OperatorID string
	Numero     int64
	Fecha      time.Time

	Subtotal     decimal.Decimal // suma de líneas, antes de ajuste
	AjusteTipo   string          // AjusteNinguno | AjusteDescuento | AjusteRecargo
	AjustePct    decimal.Decimal
	NetoAjustado decimal.Decimal
	TotalIVA     decimal.Decimal
	Total        decimal.Decimal

	Estado         string
	CAE            string // vacío en NO_AUTORIZADO / INTERNO / PRESUPUESTO
	CAEVencimiento *time.Time

	MedioPago      string // resumen del medio de pago confirmado
	PagoReferencia string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ComprobanteDetail es una línea persistida del comprobante: snapshot del
// producto al momento de la venta (el catálogo puede cambiar después).
type ComprobanteDetail struct {
	ID             string
	ComprobanteID  string
	ProductID      string // vacío en ítems manuales
	Codigo         string
	Nombre         string
	Cantidad       int64
	PrecioUnitario decimal.Decimal
	TasaIVA        decimal.Decimal
	Subtotal       decimal.Decimal
	Manual         bool
}
