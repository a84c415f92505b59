package entity

import "github.com/shopspring/decimal"

// Polaridad del ajuste global de la venta. Descuento y recargo son mutuamente
// excluyentes: fijar uno limpia el otro (lo garantiza el manager de composición).
const (
	AjusteNinguno   = "NINGUNO"
	AjusteDescuento = "DESCUENTO"
	AjusteRecargo   = "RECARGO"
)

// Ajuste es un único porcentaje con signo aplicado al neto y, con el mismo
// factor, al IVA total.
type Ajuste struct {
	Tipo string
	Pct  decimal.Decimal
}

// SinAjuste devuelve el ajuste neutro.
func SinAjuste() Ajuste {
	return Ajuste{Tipo: AjusteNinguno, Pct: decimal.Zero}
}

// Factor devuelve -pct/100, +pct/100 o 0 según la polaridad.
func (a Ajuste) Factor() decimal.Decimal {
	cien := decimal.NewFromInt(100)
	switch a.Tipo {
	case AjusteDescuento:
		return a.Pct.Div(cien).Neg()
	case AjusteRecargo:
		return a.Pct.Div(cien)
	}
	return decimal.Zero
}
