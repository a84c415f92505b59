// Package draft implementa la composición de la venta en curso: cliente,
// tipo de comprobante, líneas, ajuste y aplicabilidad de IVA. Cada mutación
// recalcula totales y publica la señal de totales actualizados.
package draft

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/internal/domain/totals"
	"github.com/shopspring/decimal"
)

// Manager es el dueño de la venta en composición. Sincronizado con mutex:
// desde la perspectiva del caller las operaciones son síncronas, pero el
// poller de billetera digital puede consultar totales en paralelo.
type Manager struct {
	mu        sync.Mutex
	venta     *Draft
	stockRepo repository.StockRepository
	bus       *signal.Bus
}

// NewManager crea el manager con una venta vacía para la sucursal/operador.
func NewManager(stockRepo repository.StockRepository, bus *signal.Bus, branchID, operatorID string) *Manager {
	m := &Manager{stockRepo: stockRepo, bus: bus}
	m.venta = nuevaVenta(branchID, operatorID)
	return m
}

func nuevaVenta(branchID, operatorID string) *Draft {
	return &Draft{
		ID:           uuid.New().String(),
		Tipo:         entity.TipoFacturaB, // consumidor final por defecto
		Ajuste:       entity.SinAjuste(),
		IVAAplicable: true,
		BranchID:     branchID,
		OperatorID:   operatorID,
		CreatedAt:    time.Now(),
		Estado:       EstadoComposicion,
	}
}

// Venta devuelve la venta actual. El orquestador la toma con este accessor;
// después de confirmar se debe llamar Reset para iniciar la siguiente.
func (m *Manager) Venta() *Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.venta
}

// Totales recalcula los totales desde las líneas actuales.
func (m *Manager) Totales() totals.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totals.Calculate(m.venta.Lines, m.venta.Ajuste, m.venta.IVAAplicable)
}

// SetClient asigna el cliente y re-deriva el tipo de comprobante por defecto
// a partir de su categoría fiscal. client nil vuelve a consumidor final.
func (m *Manager) SetClient(client *entity.Client) {
	m.mu.Lock()
	m.venta.Client = client
	if client != nil {
		m.venta.Tipo = client.TipoComprobantePorDefecto()
	} else {
		m.venta.Tipo = entity.TipoFacturaB
	}
	m.mu.Unlock()
	m.publicarTotales()
}

// SetDocumentType fija el tipo de comprobante explícitamente.
func (m *Manager) SetDocumentType(tipo string) error {
	if !entity.TipoValido(tipo) {
		return domain.ErrInvalidInput
	}
	m.mu.Lock()
	m.venta.Tipo = tipo
	m.mu.Unlock()
	m.publicarTotales()
	return nil
}

// AddLineItem agrega un producto de catálogo. Si el producto ya está en la
// venta incrementa su cantidad en lugar de duplicar la línea. Verifica stock
// disponible en la sucursal contra la cantidad acumulada; los ítems manuales
// (AddManualItem) quedan exentos de ese control.
func (m *Manager) AddLineItem(product *entity.Product, cantidad int64) error {
	if product == nil || cantidad < 1 {
		return domain.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	acumulada := cantidad
	var existente *entity.LineItem
	for i := range m.venta.Lines {
		if !m.venta.Lines[i].Manual && m.venta.Lines[i].ProductID == product.ID {
			existente = &m.venta.Lines[i]
			acumulada += existente.Cantidad
			break
		}
	}

	disponible, err := m.stockDisponible(product.ID)
	if err != nil {
		return err
	}
	if disponible < acumulada {
		return &domain.InsufficientStockError{
			ProductID: product.ID,
			Requested: acumulada,
			Available: disponible,
		}
	}

	if existente != nil {
		existente.Cantidad = acumulada
	} else {
		m.venta.Lines = append(m.venta.Lines, entity.LineItem{
			ID:             uuid.New().String(),
			ProductID:      product.ID,
			Codigo:         product.Codigo,
			Nombre:         product.Nombre,
			PrecioUnitario: product.Precio,
			PrecioOriginal: product.Precio,
			Cantidad:       cantidad,
			TasaIVA:        product.TasaIVA,
		})
	}
	m.publicarTotalesLocked()
	return nil
}

// AddManualItem agrega un ítem sin match de catálogo: exento de control y
// descuento de stock. La UI lo ofrece cuando AddLineItem rechaza por stock.
func (m *Manager) AddManualItem(nombre string, precio decimal.Decimal, cantidad int64, tasaIVA decimal.Decimal) error {
	if nombre == "" || cantidad < 1 || precio.IsNegative() || tasaIVA.IsNegative() {
		return domain.ErrInvalidInput
	}
	m.mu.Lock()
	m.venta.Lines = append(m.venta.Lines, entity.LineItem{
		ID:             uuid.New().String(),
		Nombre:         nombre,
		PrecioUnitario: precio,
		PrecioOriginal: precio,
		Cantidad:       cantidad,
		TasaIVA:        tasaIVA,
		Manual:         true,
	})
	m.mu.Unlock()
	m.publicarTotales()
	return nil
}

// LinePatch campos opcionales a modificar en una línea.
type LinePatch struct {
	Cantidad *int64
	Precio   *decimal.Decimal
	TasaIVA  *decimal.Decimal
	// RestaurarPrecio vuelve la línea al precio de catálogo.
	RestaurarPrecio bool
}

// UpdateLineItem aplica el patch sobre la línea. El subtotal se re-deriva
// siempre de precio × cantidad, nunca se fija directo.
func (m *Manager) UpdateLineItem(lineID string, patch LinePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.venta.Lines {
		l := &m.venta.Lines[i]
		if l.ID != lineID {
			continue
		}
		if patch.Cantidad != nil {
			if *patch.Cantidad < 1 {
				return domain.ErrInvalidInput
			}
			if !l.Manual {
				disponible, err := m.stockDisponible(l.ProductID)
				if err != nil {
					return err
				}
				if disponible < *patch.Cantidad {
					return &domain.InsufficientStockError{
						ProductID: l.ProductID,
						Requested: *patch.Cantidad,
						Available: disponible,
					}
				}
			}
			l.Cantidad = *patch.Cantidad
		}
		if patch.Precio != nil {
			if patch.Precio.IsNegative() {
				return domain.ErrInvalidInput
			}
			l.PrecioUnitario = *patch.Precio
		}
		if patch.RestaurarPrecio {
			l.RestaurarPrecio()
		}
		if patch.TasaIVA != nil {
			if patch.TasaIVA.IsNegative() {
				return domain.ErrInvalidInput
			}
			l.TasaIVA = *patch.TasaIVA
		}
		m.publicarTotalesLocked()
		return nil
	}
	return domain.ErrNotFound
}

// RemoveLineItem quita la línea de la venta.
func (m *Manager) RemoveLineItem(lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.venta.Lines {
		if m.venta.Lines[i].ID == lineID {
			m.venta.Lines = append(m.venta.Lines[:i], m.venta.Lines[i+1:]...)
			m.publicarTotalesLocked()
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetAdjustment fija descuento o recargo. Son mutuamente excluyentes: fijar
// uno reemplaza al otro; tipo NINGUNO limpia el ajuste.
func (m *Manager) SetAdjustment(tipo string, pct decimal.Decimal) error {
	switch tipo {
	case entity.AjusteNinguno:
		pct = decimal.Zero
	case entity.AjusteDescuento, entity.AjusteRecargo:
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	m.mu.Lock()
	m.venta.Ajuste = entity.Ajuste{Tipo: tipo, Pct: pct}
	m.mu.Unlock()
	m.publicarTotales()
	return nil
}

// SetTaxApplicability habilita o deshabilita el IVA de la venta completa.
func (m *Manager) SetTaxApplicability(aplicable bool) {
	m.mu.Lock()
	m.venta.IVAAplicable = aplicable
	m.mu.Unlock()
	m.publicarTotales()
}

// Reset descarta la venta actual y arranca una vacía. Es la única forma de
// iniciar una nueva transacción después de confirmar.
func (m *Manager) Reset() {
	m.mu.Lock()
	branchID, operatorID := m.venta.BranchID, m.venta.OperatorID
	m.venta = nuevaVenta(branchID, operatorID)
	m.mu.Unlock()
	m.publicarTotales()
}

// stockDisponible consulta existencias; fila ausente cuenta como cero.
// Caller debe tener el lock.
func (m *Manager) stockDisponible(productID string) (int64, error) {
	stock, err := m.stockRepo.Get(productID, m.venta.BranchID)
	if err != nil {
		return 0, err
	}
	if stock == nil {
		return 0, nil
	}
	return stock.Cantidad, nil
}

func (m *Manager) publicarTotales() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publicarTotalesLocked()
}

func (m *Manager) publicarTotalesLocked() {
	if m.bus == nil {
		return
	}
	r := totals.Calculate(m.venta.Lines, m.venta.Ajuste, m.venta.IVAAplicable)
	m.bus.Publish(signal.Event{
		Tipo:    signal.TotalesActualizados,
		VentaID: m.venta.ID,
		Payload: r,
	})
}
