package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/puntosur/facturacion-api/internal/application/draft"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

// VentaHandler expone la venta en curso: composición, pago y liquidación.
type VentaHandler struct {
	registry    *SessionRegistry
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	branchRepo  repository.BranchRepository
	orq         *settlement.Orchestrator
}

// NewVentaHandler construye el handler de ventas.
func NewVentaHandler(
	registry *SessionRegistry,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	branchRepo repository.BranchRepository,
	orq *settlement.Orchestrator,
) *VentaHandler {
	return &VentaHandler{
		registry:    registry,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		branchRepo:  branchRepo,
		orq:         orq,
	}
}

func (h *VentaHandler) sesion(c *fiber.Ctx) (*VentaSession, error) {
	s := h.registry.Get(c.Params("id"))
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (h *VentaHandler) ventaJSON(c *fiber.Ctx, s *VentaSession) error {
	return c.JSON(toVentaResponse(s.Manager.Venta(), s.Manager.Totales()))
}

// Open abre una venta nueva para el operador autenticado.
// POST /api/ventas
func (h *VentaHandler) Open(c *fiber.Ctx) error {
	s := h.registry.Open(GetBranchID(c), GetOperatorID(c))
	c.Status(fiber.StatusCreated)
	return h.ventaJSON(c, s)
}

// Get devuelve el estado completo de la venta.
// GET /api/ventas/:id
func (h *VentaHandler) Get(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// Discard descarta la venta y cancela cualquier pago pendiente.
// DELETE /api/ventas/:id
func (h *VentaHandler) Discard(c *fiber.Ctx) error {
	if s := h.registry.Get(c.Params("id")); s == nil {
		return respondError(c, domain.ErrNotFound)
	}
	h.registry.Close(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem agrega una línea desde el catálogo, por product_id, código o barcode.
// POST /api/ventas/:id/items
func (h *VentaHandler) AddItem(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Cantidad <= 0 {
		in.Cantidad = 1
	}

	var product *entity.Product
	switch {
	case in.ProductID != "":
		product, err = h.productRepo.GetByID(in.ProductID)
	case in.Codigo != "":
		product, err = h.productRepo.FindByCode(in.Codigo)
	case in.Barcode != "":
		product, err = h.productRepo.FindByBarcode(in.Barcode)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id, codigo o barcode requerido"})
	}
	if err != nil {
		return respondError(c, err)
	}
	if product == nil {
		return respondError(c, domain.ErrNotFound)
	}

	if err := s.Manager.AddLineItem(product, in.Cantidad); err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// AddManualItem agrega una línea tipeada a mano, sin control de stock.
// POST /api/ventas/:id/items/manual
func (h *VentaHandler) AddManualItem(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.AddManualItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Nombre == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nombre requerido"})
	}
	if in.Cantidad <= 0 {
		in.Cantidad = 1
	}
	if err := s.Manager.AddManualItem(in.Nombre, in.PrecioUnitario, in.Cantidad, in.TasaIVA); err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// UpdateItem aplica cambios parciales a una línea.
// PATCH /api/ventas/:id/items/:lineId
func (h *VentaHandler) UpdateItem(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	patch := draft.LinePatch{
		Cantidad:        in.Cantidad,
		Precio:          in.Precio,
		TasaIVA:         in.TasaIVA,
		RestaurarPrecio: in.RestaurarPrecio,
	}
	if err := s.Manager.UpdateLineItem(c.Params("lineId"), patch); err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// RemoveItem quita una línea de la venta.
// DELETE /api/ventas/:id/items/:lineId
func (h *VentaHandler) RemoveItem(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Manager.RemoveLineItem(c.Params("lineId")); err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// SetClient asigna el cliente de la venta (por ID o CUIT/DNI/nombre) y
// re-deriva el tipo de comprobante. Cuerpo vacío vuelve a consumidor final.
// PUT /api/ventas/:id/cliente
func (h *VentaHandler) SetClient(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SetClientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var client *entity.Client
	switch {
	case in.ClientID != "":
		client, err = h.clientRepo.GetByID(in.ClientID)
		if err != nil {
			return respondError(c, err)
		}
	case in.Identifier != "":
		client, err = h.clientRepo.FindByIdentifier(in.Identifier)
		if err != nil {
			return respondError(c, err)
		}
		if client == nil {
			return respondError(c, domain.ErrNotFound)
		}
	}
	s.Manager.SetClient(client)
	return h.ventaJSON(c, s)
}

// SetDocumentType fija el tipo de comprobante manualmente.
// PUT /api/ventas/:id/tipo
func (h *VentaHandler) SetDocumentType(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SetDocumentTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := s.Manager.SetDocumentType(in.Tipo); err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// SetAdjustment fija el descuento o recargo global.
// PUT /api/ventas/:id/ajuste
func (h *VentaHandler) SetAdjustment(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SetAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := s.Manager.SetAdjustment(in.Tipo, in.Pct); err != nil {
		return respondError(c, err)
	}
	return h.ventaJSON(c, s)
}

// SetTax habilita o deshabilita el IVA de la venta.
// PUT /api/ventas/:id/iva
func (h *VentaHandler) SetTax(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SetTaxRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s.Manager.SetTaxApplicability(in.IVAAplicable)
	return h.ventaJSON(c, s)
}

// Reset vacía la venta conservando la sesión.
// POST /api/ventas/:id/reset
func (h *VentaHandler) Reset(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	s.Negotiator.Cancel()
	s.Manager.Reset()
	return h.ventaJSON(c, s)
}

// Settle liquida la venta: con offline=true emite en contingencia.
// POST /api/ventas/:id/liquidar
func (h *VentaHandler) Settle(c *fiber.Ctx) error {
	s, err := h.sesion(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SettleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}

	d := s.Manager.Venta()
	var pago entity.PaymentSelection
	if d.Tipo != entity.TipoPresupuesto {
		confirmada, ok := s.Negotiator.Confirmada()
		if !ok {
			return respondError(c, settlement.ErrVentaSinPago)
		}
		pago = confirmada
	}

	var comp *entity.Comprobante
	if in.Offline {
		comp, err = h.orq.SettleOffline(c.Context(), d, pago)
	} else {
		comp, err = h.orq.Settle(c.Context(), d, pago)
	}
	if err != nil {
		return respondError(c, err)
	}

	h.registry.Close(d.ID)

	puntoVenta := 0
	if branch, berr := h.branchRepo.GetByID(comp.BranchID); berr == nil && branch != nil {
		puntoVenta = branch.PuntoVenta
	}
	return c.Status(fiber.StatusCreated).JSON(toComprobanteResponse(comp, puntoVenta, d.ClienteResuelto().Nombre))
}
