// Package totals implementa el cálculo puro de totales e impuestos de una
// venta: subtotal, ajuste (descuento/recargo), IVA por tasa y total final.
// Sin estado ni efectos: mismas entradas producen siempre la misma salida.
package totals

import (
	"sort"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Result agrupa los montos calculados de la venta.
type Result struct {
	Subtotal     decimal.Decimal
	NetoAjustado decimal.Decimal
	// IVAPorTasa agrupa el IVA por tasa (clave: tasa en string, ej "21").
	IVAPorTasa map[string]decimal.Decimal
	TotalIVA   decimal.Decimal
	Total      decimal.Decimal
}

// Calculate computa los totales a partir de las líneas, el ajuste y el flag de
// aplicabilidad de IVA.
//
// El ajuste se aplica al IVA total con el mismo factor que al neto, no se
// recalcula el impuesto línea por línea sobre bases descontadas. Es el
// comportamiento histórico del sistema: equivale aritméticamente solo cuando
// todas las líneas comparten tasa, y se conserva a propósito.
func Calculate(lines []entity.LineItem, ajuste entity.Ajuste, ivaAplicable bool) Result {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	factor := ajuste.Factor()
	netoAjustado := subtotal.Mul(decimal.NewFromInt(1).Add(factor))

	ivaPorTasa := make(map[string]decimal.Decimal)
	totalIVA := decimal.Zero
	if ivaAplicable {
		cien := decimal.NewFromInt(100)
		for _, l := range lines {
			monto := l.Subtotal().Mul(l.TasaIVA).Div(cien)
			clave := l.TasaIVA.String()
			ivaPorTasa[clave] = ivaPorTasa[clave].Add(monto)
			totalIVA = totalIVA.Add(monto)
		}
		totalIVA = totalIVA.Mul(decimal.NewFromInt(1).Add(factor))
	}

	return Result{
		Subtotal:     subtotal,
		NetoAjustado: netoAjustado,
		IVAPorTasa:   ivaPorTasa,
		TotalIVA:     totalIVA,
		Total:        netoAjustado.Add(totalIVA),
	}
}

// Tasas devuelve las tasas presentes ordenadas, útil para render determinista.
func (r Result) Tasas() []string {
	tasas := make([]string, 0, len(r.IVAPorTasa))
	for t := range r.IVAPorTasa {
		tasas = append(tasas, t)
	}
	sort.Strings(tasas)
	return tasas
}
