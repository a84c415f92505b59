package entity

import "github.com/shopspring/decimal"

// LineItem es una línea del carrito en composición. El subtotal nunca se
// almacena: se deriva siempre de PrecioUnitario × Cantidad (ver Subtotal).
type LineItem struct {
	ID        string
	ProductID string // vacío si Manual
	Codigo    string
	Nombre    string
	// PrecioUnitario puede ser editado por el operador durante la venta;
	// PrecioOriginal conserva el de catálogo para "restaurar precio".
	PrecioUnitario decimal.Decimal
	PrecioOriginal decimal.Decimal
	Cantidad       int64           // entero ≥ 1
	TasaIVA        decimal.Decimal // porcentaje (21, 10.5, 0)
	// Manual indica un ítem cargado sin match de catálogo: exento de control
	// y descuento de stock.
	Manual bool
}

// Subtotal deriva el subtotal de la línea de sus insumos.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(l.Cantidad))
}

// RestaurarPrecio vuelve al precio de catálogo.
func (l *LineItem) RestaurarPrecio() {
	l.PrecioUnitario = l.PrecioOriginal
}
