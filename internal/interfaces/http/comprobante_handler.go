package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/internal/infrastructure/notify"
)

// ComprobanteHandler expone la consulta de comprobantes emitidos, el libro de
// caja y la promoción de presupuestos.
type ComprobanteHandler struct {
	compRepo   repository.ComprobanteRepository
	branchRepo repository.BranchRepository
	clientRepo repository.ClientRepository
	ledgerRepo repository.PaymentLedgerRepository
	renderer   notify.DocumentRenderer
	orq        *settlement.Orchestrator
}

func NewComprobanteHandler(
	compRepo repository.ComprobanteRepository,
	branchRepo repository.BranchRepository,
	clientRepo repository.ClientRepository,
	ledgerRepo repository.PaymentLedgerRepository,
	renderer notify.DocumentRenderer,
	orq *settlement.Orchestrator,
) *ComprobanteHandler {
	return &ComprobanteHandler{
		compRepo:   compRepo,
		branchRepo: branchRepo,
		clientRepo: clientRepo,
		ledgerRepo: ledgerRepo,
		renderer:   renderer,
		orq:        orq,
	}
}

func (h *ComprobanteHandler) puntoVenta(branchID string) int {
	branch, err := h.branchRepo.GetByID(branchID)
	if err != nil || branch == nil {
		return 0
	}
	return branch.PuntoVenta
}

func (h *ComprobanteHandler) nombreCliente(clientID string) string {
	if clientID == "" {
		return ""
	}
	client, err := h.clientRepo.GetByID(clientID)
	if err != nil || client == nil {
		return ""
	}
	return client.Nombre
}

// List lista los comprobantes de la sucursal del operador, con rango de fechas
// opcional (?desde=2026-08-01&hasta=2026-08-31) y paginado.
// GET /api/comprobantes
func (h *ComprobanteHandler) List(c *fiber.Ctx) error {
	branchID := GetBranchID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	hasta := time.Now()
	desde := hasta.AddDate(0, -1, 0)
	if v := c.Query("desde"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde inválido, formato AAAA-MM-DD"})
		}
		desde = d
	}
	if v := c.Query("hasta"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta inválido, formato AAAA-MM-DD"})
		}
		hasta = d.AddDate(0, 0, 1) // inclusivo
	}

	comps, err := h.compRepo.ListByBranch(branchID, desde, hasta, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}

	puntoVenta := h.puntoVenta(branchID)
	items := make([]dto.ComprobanteResponse, 0, len(comps))
	for _, comp := range comps {
		items = append(items, toComprobanteResponse(comp, puntoVenta, h.nombreCliente(comp.ClientID)))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Get devuelve un comprobante con su detalle.
// GET /api/comprobantes/:id
func (h *ComprobanteHandler) Get(c *fiber.Ctx) error {
	comp, err := h.compRepo.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if comp == nil {
		return respondError(c, domain.ErrNotFound)
	}
	details, err := h.compRepo.GetDetails(comp.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ComprobanteFullResponse{
		ComprobanteResponse: toComprobanteResponse(comp, h.puntoVenta(comp.BranchID), h.nombreCliente(comp.ClientID)),
		Detalle:             toDetailResponses(details),
	})
}

// PDF genera la representación imprimible del comprobante.
// GET /api/comprobantes/:id/pdf
func (h *ComprobanteHandler) PDF(c *fiber.Ctx) error {
	comp, err := h.compRepo.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if comp == nil {
		return respondError(c, domain.ErrNotFound)
	}
	branch, err := h.branchRepo.GetByID(comp.BranchID)
	if err != nil {
		return respondError(c, err)
	}
	var client *entity.Client
	if comp.ClientID != "" {
		if client, err = h.clientRepo.GetByID(comp.ClientID); err != nil {
			return respondError(c, err)
		}
	}
	details, err := h.compRepo.GetDetails(comp.ID)
	if err != nil {
		return respondError(c, err)
	}

	pdf, err := h.renderer.Render(c.Context(), comp, branch, client, details)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// Promote convierte un presupuesto guardado en comprobante fiscal, con el pago
// cobrado en el acto.
// POST /api/comprobantes/promote
func (h *ComprobanteHandler) Promote(c *fiber.Ctx) error {
	var in dto.PromoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.PresupuestoID == "" || in.Medio == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "presupuesto_id y medio requeridos"})
	}

	pago := entity.PaymentSelection{
		Medio:      in.Medio,
		Entregado:  in.Entregado,
		Referencia: in.Referencia,
	}
	comp, err := h.orq.Promote(c.Context(), in.PresupuestoID, pago, GetOperatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toComprobanteResponse(comp, h.puntoVenta(comp.BranchID), h.nombreCliente(comp.ClientID)))
}

// Caja devuelve los asientos del libro de caja de la sucursal para un día
// (?fecha=2026-08-30, por defecto hoy).
// GET /api/caja
func (h *ComprobanteHandler) Caja(c *fiber.Ctx) error {
	dia := time.Now()
	if v := c.Query("fecha"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, formato AAAA-MM-DD"})
		}
		dia = d
	}

	entries, err := h.ledgerRepo.ListByBranchAndDate(GetBranchID(c), dia)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.PaymentEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.PaymentEntryResponse{
			ID:            e.ID,
			ComprobanteID: e.ComprobanteID,
			Medio:         e.Medio,
			Monto:         e.Monto,
			Referencia:    e.Referencia,
			Fecha:         e.Fecha,
		})
	}
	return c.JSON(items)
}
