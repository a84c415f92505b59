package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/domain"
)

// PagoHandler maneja la selección y confirmación del medio de pago de una
// venta en curso. Opera sobre el negociador de la sesión.
type PagoHandler struct {
	registry *SessionRegistry
}

func NewPagoHandler(registry *SessionRegistry) *PagoHandler {
	return &PagoHandler{registry: registry}
}

func (h *PagoHandler) sesion(c *fiber.Ctx) (*VentaSession, error) {
	s := h.registry.Get(c.Params("id"))
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (h *PagoHandler) estadoJSON(c *fiber.Ctx, s *VentaSession, qrPayload string) error {
	resp := dto.PaymentStateResponse{
		Estado:    s.Negotiator.Estado(),
		QrPayload: qrPayload,
	}
	if sel, ok := s.Negotiator.Confirmada(); ok {
		resp.Medio = sel.Medio
		resp.Vuelto = sel.Vuelto
	}
	return c.JSON(resp)
}

// Estado devuelve el estado actual del pago.
// GET /api/ventas/:id/pago
func (h *PagoHandler) Estado(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, "")
}

// Efectivo registra un pago en efectivo con el monto entregado.
// POST /api/ventas/:id/pago/efectivo
func (h *PagoHandler) Efectivo(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SelectCashRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := s.Negotiator.SelectCash(in.Entregado, s.Manager.Totales().Total); err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, "")
}

// Tarjeta registra un pago con tarjeta, confirmado en el momento.
// POST /api/ventas/:id/pago/tarjeta
func (h *PagoHandler) Tarjeta(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SelectCardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := s.Negotiator.SelectCard(in.Red, in.Cuotas, in.UltimosDigitos); err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, "")
}

// Transferencia inicia un pago por transferencia bancaria, que queda a la
// espera de verificación o constancia del operador.
// POST /api/ventas/:id/pago/transferencia
func (h *PagoHandler) Transferencia(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SelectTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := s.Negotiator.SelectTransfer(in.BancoID); err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, "")
}

// VerificarTransferencia consulta al banco por la acreditación del monto.
// POST /api/ventas/:id/pago/transferencia/verificar
func (h *PagoHandler) VerificarTransferencia(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Negotiator.VerifyTransfer(c.Context(), s.Manager.Totales().Total); err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, "")
}

// ConfirmarTransferencia confirma la transferencia con la constancia que el
// operador vio en la app del banco.
// POST /api/ventas/:id/pago/transferencia/confirmar
func (h *PagoHandler) ConfirmarTransferencia(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.AttestTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := s.Negotiator.AttestTransfer(in.Referencia); err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, "")
}

// Billetera genera el QR de billetera digital y deja el pago en espera de
// confirmación. El sondeo corre en segundo plano hasta acreditarse o cancelarse.
// POST /api/ventas/:id/pago/billetera
func (h *PagoHandler) Billetera(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	qrPayload, _, err := s.Negotiator.SelectDigitalWallet(c.Context(), s.Manager.Totales().Total)
	if err != nil {
		return respondError(c, err)
	}
	return h.estadoJSON(c, s, qrPayload)
}

// Cancelar anula la selección de pago en curso y detiene el sondeo.
// DELETE /api/ventas/:id/pago
func (h *PagoHandler) Cancelar(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	s.Negotiator.Cancel()
	return h.estadoJSON(c, s, "")
}
