package draft_test

import (
	"errors"
	"testing"

	"github.com/puntosur/facturacion-api/internal/application/draft"
	"github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stockFake implementación en memoria del puerto de stock para tests.
type stockFake struct {
	cantidades map[string]int64 // productID → disponible
}

func (s *stockFake) Get(productID, branchID string) (*entity.Stock, error) {
	qty, ok := s.cantidades[productID]
	if !ok {
		return nil, nil
	}
	return &entity.Stock{ProductID: productID, BranchID: branchID, Cantidad: qty}, nil
}

func (s *stockFake) GetForUpdate(productID, branchID string) (*entity.Stock, error) {
	return s.Get(productID, branchID)
}

func (s *stockFake) Upsert(stock *entity.Stock) error {
	s.cantidades[stock.ProductID] = stock.Cantidad
	return nil
}

func productoGaseosa() *entity.Product {
	return &entity.Product{
		ID:      "p1",
		Codigo:  "GAS-500",
		Nombre:  "Gaseosa 500ml",
		Precio:  decimal.NewFromInt(100),
		TasaIVA: decimal.NewFromInt(21),
	}
}

func nuevoManager(stock map[string]int64) *draft.Manager {
	return draft.NewManager(&stockFake{cantidades: stock}, signal.NewBus(), "suc-1", "op-1")
}

// TestAddLineItem_MismoProductoAcumula agregar dos veces el mismo producto
// produce una sola línea con la cantidad sumada y subtotal precio×(q1+q2).
func TestAddLineItem_MismoProductoAcumula(t *testing.T) {
	m := nuevoManager(map[string]int64{"p1": 10})
	p := productoGaseosa()

	require.NoError(t, m.AddLineItem(p, 2))
	require.NoError(t, m.AddLineItem(p, 3))

	venta := m.Venta()
	require.Len(t, venta.Lines, 1, "el mismo producto no debe duplicar línea")
	assert.Equal(t, int64(5), venta.Lines[0].Cantidad)
	assert.True(t, venta.Lines[0].Subtotal().Equal(decimal.NewFromInt(500)))
}

// TestAddLineItem_StockInsuficiente rechaza con el disponible informado.
func TestAddLineItem_StockInsuficiente(t *testing.T) {
	m := nuevoManager(map[string]int64{"p1": 3})
	p := productoGaseosa()

	err := m.AddLineItem(p, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(3), ise.Available)
	assert.Empty(t, m.Venta().Lines, "la línea no debe agregarse")
}

// TestAddLineItem_StockAcumuladoCuentaLineaExistente el control de stock usa
// la cantidad acumulada, no solo la del agregado.
func TestAddLineItem_StockAcumuladoCuentaLineaExistente(t *testing.T) {
	m := nuevoManager(map[string]int64{"p1": 4})
	p := productoGaseosa()

	require.NoError(t, m.AddLineItem(p, 3))
	err := m.AddLineItem(p, 2) // 3+2 > 4
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), m.Venta().Lines[0].Cantidad)
}

// TestAddManualItem_ExentoDeStock los ítems manuales no consultan stock.
func TestAddManualItem_ExentoDeStock(t *testing.T) {
	m := nuevoManager(map[string]int64{})

	err := m.AddManualItem("Ítem varios", decimal.NewFromInt(250), 7, decimal.NewFromInt(21))
	require.NoError(t, err)

	venta := m.Venta()
	require.Len(t, venta.Lines, 1)
	assert.True(t, venta.Lines[0].Manual)
}

// TestAddManualItem_EntradaInvalida precio y tasa de IVA negativos se
// rechazan igual que en la edición de líneas.
func TestAddManualItem_EntradaInvalida(t *testing.T) {
	m := nuevoManager(map[string]int64{})

	err := m.AddManualItem("Ítem varios", decimal.NewFromInt(-1), 1, decimal.NewFromInt(21))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = m.AddManualItem("Ítem varios", decimal.NewFromInt(100), 1, decimal.NewFromInt(-21))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, m.Venta().Lines)
}

// TestSetAdjustment_Excluyentes fijar recargo limpia el descuento y viceversa.
func TestSetAdjustment_Excluyentes(t *testing.T) {
	m := nuevoManager(map[string]int64{})

	require.NoError(t, m.SetAdjustment(entity.AjusteDescuento, decimal.NewFromInt(10)))
	assert.Equal(t, entity.AjusteDescuento, m.Venta().Ajuste.Tipo)

	require.NoError(t, m.SetAdjustment(entity.AjusteRecargo, decimal.NewFromInt(5)))
	venta := m.Venta()
	assert.Equal(t, entity.AjusteRecargo, venta.Ajuste.Tipo)
	assert.True(t, venta.Ajuste.Pct.Equal(decimal.NewFromInt(5)))

	require.NoError(t, m.SetAdjustment(entity.AjusteNinguno, decimal.Zero))
	assert.Equal(t, entity.AjusteNinguno, m.Venta().Ajuste.Tipo)
}

// TestSetClient_DerivaTipo la categoría fiscal del cliente deriva el tipo.
func TestSetClient_DerivaTipo(t *testing.T) {
	m := nuevoManager(map[string]int64{})

	m.SetClient(&entity.Client{ID: "c1", CategoriaFiscal: entity.CategoriaResponsableInscripto})
	assert.Equal(t, entity.TipoFacturaA, m.Venta().Tipo)

	m.SetClient(&entity.Client{ID: "c2", CategoriaFiscal: entity.CategoriaExento})
	assert.Equal(t, entity.TipoFacturaC, m.Venta().Tipo)

	m.SetClient(nil)
	assert.Equal(t, entity.TipoFacturaB, m.Venta().Tipo)
	assert.Equal(t, entity.CategoriaConsumidorFinal, m.Venta().ClienteResuelto().CategoriaFiscal)
}

// TestUpdateLineItem_RestaurarPrecio editar precio y restaurar vuelve al
// precio de catálogo.
func TestUpdateLineItem_RestaurarPrecio(t *testing.T) {
	m := nuevoManager(map[string]int64{"p1": 10})
	require.NoError(t, m.AddLineItem(productoGaseosa(), 1))
	lineID := m.Venta().Lines[0].ID

	nuevo := decimal.NewFromInt(80)
	require.NoError(t, m.UpdateLineItem(lineID, draft.LinePatch{Precio: &nuevo}))
	assert.True(t, m.Venta().Lines[0].PrecioUnitario.Equal(nuevo))

	require.NoError(t, m.UpdateLineItem(lineID, draft.LinePatch{RestaurarPrecio: true}))
	assert.True(t, m.Venta().Lines[0].PrecioUnitario.Equal(decimal.NewFromInt(100)))
}

// TestRemoveLineItem y errores de línea inexistente.
func TestRemoveLineItem(t *testing.T) {
	m := nuevoManager(map[string]int64{"p1": 10})
	require.NoError(t, m.AddLineItem(productoGaseosa(), 1))
	lineID := m.Venta().Lines[0].ID

	require.NoError(t, m.RemoveLineItem(lineID))
	assert.Empty(t, m.Venta().Lines)
	assert.ErrorIs(t, m.RemoveLineItem(lineID), domain.ErrNotFound)
}

// TestReset vuelve la venta al estado inicial vacío con nuevo ID.
func TestReset(t *testing.T) {
	m := nuevoManager(map[string]int64{"p1": 10})
	require.NoError(t, m.AddLineItem(productoGaseosa(), 2))
	m.SetClient(&entity.Client{ID: "c1", CategoriaFiscal: entity.CategoriaMonotributo})
	idAnterior := m.Venta().ID

	m.Reset()

	venta := m.Venta()
	assert.NotEqual(t, idAnterior, venta.ID)
	assert.Empty(t, venta.Lines)
	assert.Nil(t, venta.Client)
	assert.Equal(t, draft.EstadoComposicion, venta.Estado)
}

// TestMutacionesPublicanTotales cada mutación emite la señal de totales.
func TestMutacionesPublicanTotales(t *testing.T) {
	bus := signal.NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	m := draft.NewManager(&stockFake{cantidades: map[string]int64{"p1": 10}}, bus, "suc-1", "op-1")
	require.NoError(t, m.AddLineItem(productoGaseosa(), 2))

	ev := <-ch
	assert.Equal(t, signal.TotalesActualizados, ev.Tipo)
}
