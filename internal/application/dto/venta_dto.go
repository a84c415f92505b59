package dto

import "github.com/shopspring/decimal"

// AddItemRequest body para agregar una línea a la venta en curso. Se acepta
// código, barcode o product_id; exactamente uno debe venir.
type AddItemRequest struct {
	ProductID string `json:"product_id,omitempty"`
	Codigo    string `json:"codigo,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	Cantidad  int64  `json:"cantidad" validate:"min=1"`
}

// AddManualItemRequest línea manual: descripción y precio tipeados, sin
// producto de catálogo ni control de stock.
type AddManualItemRequest struct {
	Nombre         string          `json:"nombre" validate:"required"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int64           `json:"cantidad" validate:"min=1"`
	TasaIVA        decimal.Decimal `json:"tasa_iva"`
}

// UpdateItemRequest cambios parciales sobre una línea. Los punteros distinguen
// "no tocar" de "poner en cero".
type UpdateItemRequest struct {
	Cantidad        *int64           `json:"cantidad,omitempty"`
	Precio          *decimal.Decimal `json:"precio,omitempty"`
	TasaIVA         *decimal.Decimal `json:"tasa_iva,omitempty"`
	RestaurarPrecio bool             `json:"restaurar_precio,omitempty"`
}

// SetAdjustmentRequest ajuste global de la venta.
type SetAdjustmentRequest struct {
	Tipo string          `json:"tipo" validate:"required,oneof=NINGUNO DESCUENTO RECARGO"`
	Pct  decimal.Decimal `json:"pct"`
}

// SetClientRequest asigna el cliente de la venta por ID o por CUIT/DNI.
type SetClientRequest struct {
	ClientID    string `json:"client_id,omitempty"`
	Identifier  string `json:"identifier,omitempty"`
}

// SetDocumentTypeRequest fija el tipo de comprobante manualmente.
type SetDocumentTypeRequest struct {
	Tipo string `json:"tipo" validate:"required"`
}

// SetTaxRequest habilita o deshabilita el IVA de la venta.
type SetTaxRequest struct {
	IVAAplicable bool `json:"iva_aplicable"`
}

// LineItemResponse línea de la venta en curso.
type LineItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id,omitempty"`
	Codigo         string          `json:"codigo,omitempty"`
	Nombre         string          `json:"nombre"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	PrecioOriginal decimal.Decimal `json:"precio_original"`
	Cantidad       int64           `json:"cantidad"`
	TasaIVA        decimal.Decimal `json:"tasa_iva"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Manual         bool            `json:"manual,omitempty"`
}

// TotalsResponse snapshot de totales emitido tras cada mutación.
type TotalsResponse struct {
	Subtotal     decimal.Decimal            `json:"subtotal"`
	NetoAjustado decimal.Decimal            `json:"neto_ajustado"`
	IVAPorTasa   map[string]decimal.Decimal `json:"iva_por_tasa"`
	TotalIVA     decimal.Decimal            `json:"total_iva"`
	Total        decimal.Decimal            `json:"total"`
}

// VentaResponse estado completo de la venta en curso.
type VentaResponse struct {
	ID           string             `json:"id"`
	Estado       string             `json:"estado"`
	Tipo         string             `json:"tipo"`
	Cliente      ClientResponse     `json:"cliente"`
	Lines        []LineItemResponse `json:"lines"`
	AjusteTipo   string             `json:"ajuste_tipo"`
	AjustePct    decimal.Decimal    `json:"ajuste_pct"`
	IVAAplicable bool               `json:"iva_aplicable"`
	Totales      TotalsResponse     `json:"totales"`
	PasoFallido  string             `json:"paso_fallido,omitempty"`
}

// SelectCashRequest pago en efectivo con monto entregado.
type SelectCashRequest struct {
	Entregado decimal.Decimal `json:"entregado"`
}

// SelectCardRequest pago con tarjeta.
type SelectCardRequest struct {
	Red            string `json:"red" validate:"required"`
	Cuotas         int    `json:"cuotas" validate:"min=1"`
	UltimosDigitos string `json:"ultimos_digitos,omitempty"`
}

// SelectTransferRequest pago por transferencia a una cuenta propia.
type SelectTransferRequest struct {
	BancoID string `json:"banco_id" validate:"required"`
}

// AttestTransferRequest confirmación manual de una transferencia no verificada.
type AttestTransferRequest struct {
	Referencia string `json:"referencia,omitempty"`
}

// PaymentStateResponse estado de la negociación de pago.
type PaymentStateResponse struct {
	Estado    string          `json:"estado"`
	Medio     string          `json:"medio,omitempty"`
	Vuelto    decimal.Decimal `json:"vuelto,omitempty"`
	QrPayload string          `json:"qr_payload,omitempty"`
}
