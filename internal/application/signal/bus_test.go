package signal_test

import (
	"testing"
	"time"

	"github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBus_PublicaYRecibe un suscriptor recibe los eventos publicados.
func TestBus_PublicaYRecibe(t *testing.T) {
	bus := signal.NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(signal.Event{Tipo: signal.TotalesActualizados, VentaID: "v1"})

	select {
	case ev := <-ch:
		assert.Equal(t, signal.TotalesActualizados, ev.Tipo)
		assert.Equal(t, "v1", ev.VentaID)
	case <-time.After(time.Second):
		t.Fatal("no llegó el evento")
	}
}

// TestBus_BajaCierraCanal después de cancelar, el canal queda cerrado y no
// se reciben más eventos.
func TestBus_BajaCierraCanal(t *testing.T) {
	bus := signal.NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	_, abierto := <-ch
	require.False(t, abierto, "el canal debe cerrarse al darse de baja")

	// Publicar después de la baja no debe entrar en pánico.
	bus.Publish(signal.Event{Tipo: signal.PagoConfirmado})
}

// TestBus_SuscriptorLentoNoBloquea con el buffer lleno, Publish no se bloquea.
func TestBus_SuscriptorLentoNoBloquea(t *testing.T) {
	bus := signal.NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	hecho := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(signal.Event{Tipo: signal.TotalesActualizados})
		}
		close(hecho)
	}()

	select {
	case <-hecho:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish se bloqueó con un suscriptor lento")
	}
}
