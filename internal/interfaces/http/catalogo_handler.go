package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/puntosur/facturacion-api/internal/application/dto"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

// CatalogoHandler expone el catálogo de productos y los clientes de
// facturación. Las búsquedas soportan los flujos del mostrador: escaneo de
// barcode, código tipeado y nombre parcial.
type CatalogoHandler struct {
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	stockRepo   repository.StockRepository
}

func NewCatalogoHandler(
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	stockRepo repository.StockRepository,
) *CatalogoHandler {
	return &CatalogoHandler{
		productRepo: productRepo,
		clientRepo:  clientRepo,
		stockRepo:   stockRepo,
	}
}

// SearchProducts busca productos por nombre (insensible a acentos), código o
// barcode exactos.
// GET /api/productos?search=azucar  |  ?codigo=A12  |  ?barcode=779...
func (h *CatalogoHandler) SearchProducts(c *fiber.Ctx) error {
	switch {
	case c.Query("codigo") != "":
		p, err := h.productRepo.FindByCode(c.Query("codigo"))
		if err != nil {
			return respondError(c, err)
		}
		if p == nil {
			return respondError(c, domain.ErrNotFound)
		}
		return c.JSON([]dto.ProductResponse{toProductResponse(p)})
	case c.Query("barcode") != "":
		p, err := h.productRepo.FindByBarcode(c.Query("barcode"))
		if err != nil {
			return respondError(c, err)
		}
		if p == nil {
			return respondError(c, domain.ErrNotFound)
		}
		return c.JSON([]dto.ProductResponse{toProductResponse(p)})
	}

	term := c.Query("search")
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "search, codigo o barcode requerido"})
	}
	limit := c.QueryInt("limit", 20)
	products, err := h.productRepo.SearchByName(term, limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return c.JSON(out)
}

// GetProduct devuelve un producto con su existencia en la sucursal del
// operador.
// GET /api/productos/:id
func (h *CatalogoHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.productRepo.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	stock, err := h.stockRepo.Get(p.ID, GetBranchID(c))
	if err != nil {
		return respondError(c, err)
	}
	var cantidad int64
	if stock != nil {
		cantidad = stock.Cantidad
	}
	return c.JSON(fiber.Map{
		"product": toProductResponse(p),
		"stock":   cantidad,
	})
}

// CreateProduct da de alta un producto.
// POST /api/productos
func (h *CatalogoHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Codigo == "" || in.Nombre == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "codigo y nombre requeridos"})
	}
	if in.Precio.IsNegative() || in.TasaIVA.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "precio y tasa_iva no pueden ser negativos"})
	}

	now := time.Now()
	product := &entity.Product{
		ID:        uuid.NewString(),
		Codigo:    in.Codigo,
		Barcode:   in.Barcode,
		Nombre:    in.Nombre,
		Precio:    in.Precio,
		TasaIVA:   in.TasaIVA,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.productRepo.Create(product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductResponse(product))
}

// SetStock fija la existencia de un producto en la sucursal del operador.
// PUT /api/productos/:id/stock
func (h *CatalogoHandler) SetStock(c *fiber.Ctx) error {
	p, err := h.productRepo.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	var in struct {
		Cantidad int64 `json:"cantidad"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Cantidad < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cantidad no puede ser negativa"})
	}
	stock := &entity.Stock{
		ProductID: p.ID,
		BranchID:  GetBranchID(c),
		Cantidad:  in.Cantidad,
		UpdatedAt: time.Now(),
	}
	if err := h.stockRepo.Upsert(stock); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": p.ID, "cantidad": stock.Cantidad})
}

// SearchClients busca un cliente por CUIT/DNI o nombre.
// GET /api/clientes?identifier=20300412345
func (h *CatalogoHandler) SearchClients(c *fiber.Ctx) error {
	term := c.Query("identifier")
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "identifier requerido"})
	}
	client, err := h.clientRepo.FindByIdentifier(term)
	if err != nil {
		return respondError(c, err)
	}
	if client == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(toClientResponse(client))
}

// CreateClient da de alta un cliente de facturación.
// POST /api/clientes
func (h *CatalogoHandler) CreateClient(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Nombre == "" || in.Documento == "" || in.CategoriaFiscal == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nombre, documento y categoria_fiscal requeridos"})
	}

	now := time.Now()
	client := &entity.Client{
		ID:              uuid.NewString(),
		Nombre:          in.Nombre,
		Documento:       in.Documento,
		CategoriaFiscal: in.CategoriaFiscal,
		Email:           in.Email,
		Telefono:        in.Telefono,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.clientRepo.Create(client); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toClientResponse(client))
}
