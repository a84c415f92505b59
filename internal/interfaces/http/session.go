package http

import (
	"sync"
	"time"

	"github.com/puntosur/facturacion-api/internal/application/draft"
	"github.com/puntosur/facturacion-api/internal/application/payment"
	"github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

// VentaSession agrupa el manager de composición y el negociador de pago de
// una venta en curso. Vive en memoria hasta que la venta se liquida o se
// descarta.
type VentaSession struct {
	Manager    *draft.Manager
	Negotiator *payment.Negotiator
}

// SessionRegistry mantiene las ventas en curso por ID. Cada sesión serializa
// internamente; el registry solo protege el mapa.
type SessionRegistry struct {
	mu       sync.Mutex
	sesiones map[string]*VentaSession

	stockRepo repository.StockRepository
	gateway   payment.Gateway
	banco     payment.BankVerifier
	bus       *signal.Bus
	log       *logger.Logger

	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewSessionRegistry construye el registry con las dependencias que necesita
// cada venta nueva. pollInterval y pollTimeout ajustan el polling de billetera
// de cada negociador; en cero se usan los valores por defecto.
func NewSessionRegistry(
	stockRepo repository.StockRepository,
	gateway payment.Gateway,
	banco payment.BankVerifier,
	bus *signal.Bus,
	log *logger.Logger,
	pollInterval, pollTimeout time.Duration,
) *SessionRegistry {
	return &SessionRegistry{
		sesiones:     make(map[string]*VentaSession),
		stockRepo:    stockRepo,
		gateway:      gateway,
		banco:        banco,
		bus:          bus,
		log:          log,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
	}
}

// Open crea una venta nueva para el operador y la registra.
func (r *SessionRegistry) Open(branchID, operatorID string) *VentaSession {
	mgr := draft.NewManager(r.stockRepo, r.bus, branchID, operatorID)
	neg := payment.NewNegotiator(mgr.Venta().ID, r.gateway, r.banco, r.bus, r.log)
	if r.pollInterval > 0 {
		neg.PollInterval = r.pollInterval
	}
	if r.pollTimeout > 0 {
		neg.PollTimeout = r.pollTimeout
	}
	s := &VentaSession{
		Manager:    mgr,
		Negotiator: neg,
	}
	r.mu.Lock()
	r.sesiones[mgr.Venta().ID] = s
	r.mu.Unlock()
	return s
}

// Get devuelve la sesión de una venta, o nil si no existe.
func (r *SessionRegistry) Get(ventaID string) *VentaSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sesiones[ventaID]
}

// Close descarta la sesión; el poll de pago pendiente se cancela.
func (r *SessionRegistry) Close(ventaID string) {
	r.mu.Lock()
	s := r.sesiones[ventaID]
	delete(r.sesiones, ventaID)
	r.mu.Unlock()
	if s != nil {
		s.Negotiator.Cancel()
	}
}
