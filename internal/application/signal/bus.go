// Package signal implementa el bus de señales que la capa de UI puede
// suscribir: cambios de totales durante la composición y confirmación de pago.
package signal

import "sync"

// Tipos de evento publicados por el motor de venta.
const (
	TotalesActualizados = "TOTALES_ACTUALIZADOS"
	PagoConfirmado      = "PAGO_CONFIRMADO"
)

// Event es una señal emitida por el motor hacia sus suscriptores.
type Event struct {
	Tipo    string
	VentaID string
	Payload any
}

// Bus es un pub/sub en memoria. El envío es no bloqueante: un suscriptor
// lento pierde eventos en lugar de frenar la caja.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

// NewBus construye el bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe devuelve un canal de eventos y la función para darse de baja.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish entrega el evento a todos los suscriptores sin bloquear.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
