package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El stock se maneja por sucursal
// en la tabla stock (entity.Stock), nunca como campo del producto.
type Product struct {
	ID          string
	Codigo      string // código interno, único
	Barcode     string // código de barras EAN (puede ser vacío)
	Nombre      string
	Descripcion string
	Precio      decimal.Decimal // precio de venta unitario
	TasaIVA     decimal.Decimal // porcentaje: 21, 10.5, 0
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
