package totals_test

import (
	"testing"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/totals"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linea(precio float64, cantidad int64, tasa float64) entity.LineItem {
	return entity.LineItem{
		PrecioUnitario: decimal.NewFromFloat(precio),
		PrecioOriginal: decimal.NewFromFloat(precio),
		Cantidad:       cantidad,
		TasaIVA:        decimal.NewFromFloat(tasa),
	}
}

// TestCalculate_EscenarioBase valida el escenario de referencia:
// una línea de precio 100 × 2 con IVA 21% → subtotal 200, IVA 42, total 242.
func TestCalculate_EscenarioBase(t *testing.T) {
	r := totals.Calculate(
		[]entity.LineItem{linea(100, 2, 21)},
		entity.SinAjuste(),
		true,
	)

	assert.True(t, r.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal: %s", r.Subtotal)
	assert.True(t, r.NetoAjustado.Equal(decimal.NewFromInt(200)))
	assert.True(t, r.TotalIVA.Equal(decimal.NewFromInt(42)), "IVA: %s", r.TotalIVA)
	assert.True(t, r.Total.Equal(decimal.NewFromInt(242)), "total: %s", r.Total)
}

// TestCalculate_ConDescuento aplica 10% de descuento al escenario base:
// neto 180, IVA 37.8 (42 × 0.9), total 217.8. El mismo factor del neto se
// aplica al IVA total.
func TestCalculate_ConDescuento(t *testing.T) {
	r := totals.Calculate(
		[]entity.LineItem{linea(100, 2, 21)},
		entity.Ajuste{Tipo: entity.AjusteDescuento, Pct: decimal.NewFromInt(10)},
		true,
	)

	assert.True(t, r.NetoAjustado.Equal(decimal.NewFromInt(180)), "neto: %s", r.NetoAjustado)
	assert.True(t, r.TotalIVA.Equal(decimal.NewFromFloat(37.8)), "IVA: %s", r.TotalIVA)
	assert.True(t, r.Total.Equal(decimal.NewFromFloat(217.8)), "total: %s", r.Total)
}

// TestCalculate_ConRecargo el recargo suma con el mismo mecanismo del descuento.
func TestCalculate_ConRecargo(t *testing.T) {
	r := totals.Calculate(
		[]entity.LineItem{linea(100, 2, 21)},
		entity.Ajuste{Tipo: entity.AjusteRecargo, Pct: decimal.NewFromInt(10)},
		true,
	)

	assert.True(t, r.NetoAjustado.Equal(decimal.NewFromInt(220)))
	assert.True(t, r.TotalIVA.Equal(decimal.NewFromFloat(46.2)))
	assert.True(t, r.Total.Equal(decimal.NewFromFloat(266.2)))
}

// TestCalculate_SinIVA con IVA no aplicable el impuesto es cero y el total
// coincide con el neto ajustado.
func TestCalculate_SinIVA(t *testing.T) {
	r := totals.Calculate(
		[]entity.LineItem{linea(100, 2, 21), linea(50, 1, 10.5)},
		entity.Ajuste{Tipo: entity.AjusteDescuento, Pct: decimal.NewFromInt(20)},
		false,
	)

	assert.True(t, r.TotalIVA.IsZero(), "sin IVA aplicable el impuesto debe ser 0")
	assert.True(t, r.Total.Equal(r.NetoAjustado))
	assert.Empty(t, r.IVAPorTasa)
}

// TestCalculate_IVAAgrupadoPorTasa varias líneas con tasas distintas se agrupan
// por tasa; el mapa guarda los montos sin ajustar (el factor se aplica al total).
func TestCalculate_IVAAgrupadoPorTasa(t *testing.T) {
	r := totals.Calculate(
		[]entity.LineItem{
			linea(100, 1, 21),
			linea(200, 1, 21),
			linea(100, 1, 10.5),
		},
		entity.SinAjuste(),
		true,
	)

	require.Len(t, r.IVAPorTasa, 2)
	assert.True(t, r.IVAPorTasa["21"].Equal(decimal.NewFromInt(63)))
	assert.True(t, r.IVAPorTasa["10.5"].Equal(decimal.NewFromFloat(10.5)))
	assert.True(t, r.TotalIVA.Equal(decimal.NewFromFloat(73.5)))
	assert.Equal(t, []string{"10.5", "21"}, r.Tasas())
}

// TestCalculate_DescuentoExacto para cualquier pct p, neto = subtotal × (1 - p/100).
func TestCalculate_DescuentoExacto(t *testing.T) {
	casos := []struct {
		pct      int64
		esperado float64
	}{
		{5, 190}, {10, 180}, {25, 150}, {50, 100}, {100, 0},
	}
	for _, c := range casos {
		r := totals.Calculate(
			[]entity.LineItem{linea(100, 2, 21)},
			entity.Ajuste{Tipo: entity.AjusteDescuento, Pct: decimal.NewFromInt(c.pct)},
			true,
		)
		assert.True(t, r.NetoAjustado.Equal(decimal.NewFromFloat(c.esperado)),
			"pct=%d: neto %s", c.pct, r.NetoAjustado)
	}
}

// TestCalculate_Determinista dos llamadas con el mismo input producen el mismo
// resultado y no mutan las líneas de entrada.
func TestCalculate_Determinista(t *testing.T) {
	lines := []entity.LineItem{linea(99.99, 3, 21)}
	aj := entity.Ajuste{Tipo: entity.AjusteDescuento, Pct: decimal.NewFromFloat(12.5)}

	r1 := totals.Calculate(lines, aj, true)
	r2 := totals.Calculate(lines, aj, true)

	assert.True(t, r1.Total.Equal(r2.Total))
	assert.True(t, r1.TotalIVA.Equal(r2.TotalIVA))
	assert.True(t, lines[0].PrecioUnitario.Equal(decimal.NewFromFloat(99.99)),
		"Calculate no debe mutar las líneas")
}

// TestCalculate_SinLineas carrito vacío: todo en cero.
func TestCalculate_SinLineas(t *testing.T) {
	r := totals.Calculate(nil, entity.SinAjuste(), true)
	assert.True(t, r.Subtotal.IsZero())
	assert.True(t, r.Total.IsZero())
}
