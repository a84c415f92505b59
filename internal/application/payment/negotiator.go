// Package payment implementa la máquina de estados de selección y
// confirmación del medio de pago, incluido el protocolo asíncrono de
// confirmación por QR contra la pasarela externa.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Estados del negociador de pago.
const (
	EstadoSinSeleccion       = "SIN_SELECCION"
	EstadoEsperaConfirmacion = "ESPERA_CONFIRMACION"
	EstadoConfirmado         = "CONFIRMADO"
	EstadoCancelado          = "CANCELADO"
)

// ErrMontoInsuficiente el efectivo entregado no cubre el total. No hay
// transición de estado: el operador corrige y reintenta.
var ErrMontoInsuficiente = errors.New("monto entregado menor al total")

// ErrPagoYaConfirmado la venta ya tiene un pago confirmado.
var ErrPagoYaConfirmado = errors.New("el pago ya fue confirmado")

// Negotiator es la máquina de estados de pago de una venta. Independiente de
// la composición: la única pieza concurrente es el poller de billetera
// digital, que aplica su resultado con semántica compare-and-set.
type Negotiator struct {
	mu         sync.Mutex
	ventaID    string
	estado     string
	seleccion  *entity.PaymentSelection
	cancelPoll context.CancelFunc

	gateway Gateway
	banco   BankVerifier
	bus     *signal.Bus
	log     *logger.Logger

	// PollInterval intervalo entre consultas de estado del QR.
	PollInterval time.Duration
	// PollTimeout tope total del loop de polling.
	PollTimeout time.Duration
}

// NewNegotiator construye el negociador para una venta.
func NewNegotiator(ventaID string, gateway Gateway, banco BankVerifier, bus *signal.Bus, log *logger.Logger) *Negotiator {
	return &Negotiator{
		ventaID:      ventaID,
		estado:       EstadoSinSeleccion,
		gateway:      gateway,
		banco:        banco,
		bus:          bus,
		log:          log,
		PollInterval: 3 * time.Second,
		PollTimeout:  5 * time.Minute,
	}
}

// Estado devuelve el estado actual.
func (n *Negotiator) Estado() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.estado
}

// Confirmada devuelve la selección confirmada, si existe.
func (n *Negotiator) Confirmada() (entity.PaymentSelection, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado != EstadoConfirmado || n.seleccion == nil {
		return entity.PaymentSelection{}, false
	}
	return *n.seleccion, true
}

// SelectCash confirma pago en efectivo de forma síncrona. Válido solo si el
// entregado cubre el total; el vuelto es entregado - total.
func (n *Negotiator) SelectCash(entregado, total decimal.Decimal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado == EstadoConfirmado {
		return ErrPagoYaConfirmado
	}
	if entregado.LessThan(total) {
		return ErrMontoInsuficiente
	}
	n.descartarSeleccionLocked()
	n.seleccion = &entity.PaymentSelection{
		Medio:     entity.MedioEfectivo,
		Entregado: entregado,
		Vuelto:    entregado.Sub(total),
	}
	n.confirmarLocked()
	return nil
}

// SelectCard confirma pago con tarjeta de forma síncrona. El protocolo con el
// procesador de tarjetas es un colaborador externo fuera de este módulo.
func (n *Negotiator) SelectCard(red string, cuotas int, ultimosDigitos string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado == EstadoConfirmado {
		return ErrPagoYaConfirmado
	}
	if red == "" || cuotas < 0 {
		return domain.ErrInvalidInput
	}
	if cuotas == 0 {
		cuotas = 1
	}
	n.descartarSeleccionLocked()
	n.seleccion = &entity.PaymentSelection{
		Medio:          entity.MedioTarjeta,
		Red:            red,
		Cuotas:         cuotas,
		UltimosDigitos: ultimosDigitos,
	}
	n.confirmarLocked()
	return nil
}

// SelectTransfer selecciona transferencia y queda a la espera de confirmación
// (VerifyTransfer contra el banco o AttestTransfer manual).
func (n *Negotiator) SelectTransfer(bancoID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado == EstadoConfirmado {
		return ErrPagoYaConfirmado
	}
	if bancoID == "" {
		return domain.ErrInvalidInput
	}
	n.descartarSeleccionLocked()
	n.seleccion = &entity.PaymentSelection{Medio: entity.MedioTransferencia, BancoID: bancoID}
	n.estado = EstadoEsperaConfirmacion
	return nil
}

// VerifyTransfer emite una única verificación contra el adaptador bancario.
func (n *Negotiator) VerifyTransfer(ctx context.Context, monto decimal.Decimal) error {
	n.mu.Lock()
	if n.estado != EstadoEsperaConfirmacion || n.seleccion == nil || n.seleccion.Medio != entity.MedioTransferencia {
		n.mu.Unlock()
		return domain.ErrConflict
	}
	bancoID := n.seleccion.BancoID
	n.mu.Unlock()

	if n.banco == nil {
		return domain.ErrPasarelaPago
	}
	ok, referencia, err := n.banco.Verify(ctx, bancoID, monto)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPasarelaPago, err)
	}
	if !ok {
		return domain.ErrPasarelaPago
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado != EstadoEsperaConfirmacion || n.seleccion == nil || n.seleccion.Medio != entity.MedioTransferencia {
		// El operador cambió de medio mientras verificábamos.
		return domain.ErrConflict
	}
	n.seleccion.Verificada = true
	n.seleccion.Referencia = referencia
	n.confirmarLocked()
	return nil
}

// AttestTransfer confirma la transferencia por atestación manual del operador
// ("declaro recibida"), sin consulta al banco.
func (n *Negotiator) AttestTransfer(referencia string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado != EstadoEsperaConfirmacion || n.seleccion == nil || n.seleccion.Medio != entity.MedioTransferencia {
		return domain.ErrConflict
	}
	n.seleccion.Verificada = false
	n.seleccion.Referencia = referencia
	n.confirmarLocked()
	return nil
}

// SelectDigitalWallet genera la operación QR en la pasarela y arranca el loop
// de polling cancelable. Devuelve el payload del QR para render y el id de
// operación. Reemplaza cualquier selección previa no confirmada y cancela su
// polling si lo hubiera.
func (n *Negotiator) SelectDigitalWallet(ctx context.Context, monto decimal.Decimal) (qrPayload, operationID string, err error) {
	n.mu.Lock()
	if n.estado == EstadoConfirmado {
		n.mu.Unlock()
		return "", "", ErrPagoYaConfirmado
	}
	n.descartarSeleccionLocked()
	n.mu.Unlock()

	operationID = uuid.New().String()
	qrPayload, err = n.gateway.CreateQrOperation(ctx, monto, operationID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrPasarelaPago, err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())

	n.mu.Lock()
	if n.estado == EstadoConfirmado {
		// Otro medio se confirmó mientras esperábamos a la pasarela. La
		// selección QR tardía no pisa un pago confirmado.
		n.mu.Unlock()
		cancel()
		return "", "", ErrPagoYaConfirmado
	}
	n.seleccion = &entity.PaymentSelection{Medio: entity.MedioBilleteraDigital, OperationID: operationID}
	n.estado = EstadoEsperaConfirmacion
	n.cancelPoll = cancel
	n.mu.Unlock()

	go n.pollLoop(pollCtx, operationID)
	return qrPayload, operationID, nil
}

// pollLoop consulta el estado de la operación a intervalo fijo hasta
// confirmación, cancelación o timeout. El resultado positivo se aplica con
// compare-and-set: solo transiciona si la venta sigue esperando esa misma
// operación.
func (n *Negotiator) pollLoop(ctx context.Context, operationID string) {
	ctx, cancelTimeout := context.WithTimeout(ctx, n.PollTimeout)
	defer cancelTimeout()

	ticker := time.NewTicker(n.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			paid, details, err := n.gateway.PollStatus(ctx, operationID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				n.log.Warn().Err(err).
					Str("venta_id", n.ventaID).
					Str("operation_id", operationID).
					Msg("poll de billetera digital falló, se reintenta")
				continue
			}
			if !paid {
				continue
			}
			if n.aplicarConfirmacionBilletera(operationID, details) {
				return
			}
			// Resultado tardío: la venta ya cambió de medio u operación.
			// Se descarta sin tocar el estado.
			n.log.Warn().
				Str("venta_id", n.ventaID).
				Str("operation_id", operationID).
				Msg("confirmación de QR llegó tarde, descartada")
			return
		}
	}
}

// aplicarConfirmacionBilletera transición CAS:
// ESPERA_CONFIRMACION + billetera + mismo operationID → CONFIRMADO.
func (n *Negotiator) aplicarConfirmacionBilletera(operationID, details string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado != EstadoEsperaConfirmacion ||
		n.seleccion == nil ||
		n.seleccion.Medio != entity.MedioBilleteraDigital ||
		n.seleccion.OperationID != operationID {
		return false
	}
	n.seleccion.Confirmada = true
	n.seleccion.Confirmacion = details
	n.confirmarLocked()
	return true
}

// Cancel aborta la selección en curso (abandono del modal o de la venta) y
// cancela el polling pendiente. No afecta un pago ya confirmado.
func (n *Negotiator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.estado == EstadoConfirmado {
		return
	}
	n.descartarSeleccionLocked()
	n.estado = EstadoCancelado
}

// descartarSeleccionLocked limpia la selección previa no confirmada y cancela
// su polling si estaba activo. Caller debe tener el lock.
func (n *Negotiator) descartarSeleccionLocked() {
	if n.cancelPoll != nil {
		n.cancelPoll()
		n.cancelPoll = nil
	}
	n.seleccion = nil
	n.estado = EstadoSinSeleccion
}

func (n *Negotiator) confirmarLocked() {
	n.estado = EstadoConfirmado
	if n.cancelPoll != nil {
		n.cancelPoll()
		n.cancelPoll = nil
	}
	if n.bus != nil {
		n.bus.Publish(signal.Event{
			Tipo:    signal.PagoConfirmado,
			VentaID: n.ventaID,
			Payload: *n.seleccion,
		})
	}
}
