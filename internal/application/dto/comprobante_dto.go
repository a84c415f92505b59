package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettleRequest body para liquidar la venta en curso.
// Offline=true emite en contingencia (solo válido tras una falla fiscal).
type SettleRequest struct {
	Offline bool `json:"offline,omitempty"`
}

// PromoteRequest body para promover un presupuesto a comprobante fiscal. El
// pago se registra como confirmado en el acto, sin pasar por el negociador.
type PromoteRequest struct {
	PresupuestoID string          `json:"presupuesto_id" validate:"required"`
	Medio         string          `json:"medio" validate:"required,oneof=EFECTIVO TARJETA TRANSFERENCIA BILLETERA_DIGITAL"`
	Entregado     decimal.Decimal `json:"entregado,omitempty"`
	Referencia    string          `json:"referencia,omitempty"`
}

// ComprobanteResponse comprobante emitido con sus totales finales.
type ComprobanteResponse struct {
	ID             string          `json:"id"`
	Tipo           string          `json:"tipo"`
	Numero         int64           `json:"numero"`
	PuntoVenta     int             `json:"punto_venta,omitempty"`
	Fecha          time.Time       `json:"fecha"`
	ClienteNombre  string          `json:"cliente_nombre,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	AjusteTipo     string          `json:"ajuste_tipo,omitempty"`
	AjustePct      decimal.Decimal `json:"ajuste_pct,omitempty"`
	NetoAjustado   decimal.Decimal `json:"neto_ajustado"`
	TotalIVA       decimal.Decimal `json:"total_iva"`
	Total          decimal.Decimal `json:"total"`
	Estado         string          `json:"estado"`
	CAE            string          `json:"cae,omitempty"`
	CAEVencimiento *time.Time      `json:"cae_vencimiento,omitempty"`
	MedioPago      string          `json:"medio_pago,omitempty"`
}

// ComprobanteDetailResponse línea persistida del comprobante.
type ComprobanteDetailResponse struct {
	Codigo         string          `json:"codigo,omitempty"`
	Nombre         string          `json:"nombre"`
	Cantidad       int64           `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	TasaIVA        decimal.Decimal `json:"tasa_iva"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// ComprobanteFullResponse cabecera más detalle para GET /comprobantes/:id.
type ComprobanteFullResponse struct {
	ComprobanteResponse
	Detalle []ComprobanteDetailResponse `json:"detalle"`
}

// PaymentEntryResponse asiento del libro de caja.
type PaymentEntryResponse struct {
	ID            string          `json:"id"`
	ComprobanteID string          `json:"comprobante_id"`
	Medio         string          `json:"medio"`
	Monto         decimal.Decimal `json:"monto"`
	Referencia    string          `json:"referencia,omitempty"`
	Fecha         time.Time       `json:"fecha"`
}
