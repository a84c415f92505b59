package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/puntosur/facturacion-api/internal/application/auth"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/internal/infrastructure/notify"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Registry     *SessionRegistry
	Orchestrator *settlement.Orchestrator
	AuthUC       *auth.AuthUseCase
	ProductRepo  repository.ProductRepository
	ClientRepo   repository.ClientRepository
	StockRepo    repository.StockRepository
	BranchRepo   repository.BranchRepository
	CompRepo     repository.ComprobanteRepository
	LedgerRepo   repository.PaymentLedgerRepository
	Renderer     notify.DocumentRenderer
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	catalogoHandler := NewCatalogoHandler(deps.ProductRepo, deps.ClientRepo, deps.StockRepo)
	productos := protected.Group("/productos")
	productos.Get("/", catalogoHandler.SearchProducts)
	productos.Post("/", catalogoHandler.CreateProduct)
	productos.Get("/:id", catalogoHandler.GetProduct)
	productos.Put("/:id/stock", catalogoHandler.SetStock)

	clientes := protected.Group("/clientes")
	clientes.Get("/", catalogoHandler.SearchClients)
	clientes.Post("/", catalogoHandler.CreateClient)

	// Venta en curso: composición
	ventaHandler := NewVentaHandler(deps.Registry, deps.ProductRepo, deps.ClientRepo, deps.BranchRepo, deps.Orchestrator)
	ventas := protected.Group("/ventas")
	ventas.Post("/", ventaHandler.Open)
	ventas.Get("/:id", ventaHandler.Get)
	ventas.Delete("/:id", ventaHandler.Discard)
	ventas.Post("/:id/items", ventaHandler.AddItem)
	ventas.Post("/:id/items/manual", ventaHandler.AddManualItem)
	ventas.Patch("/:id/items/:lineId", ventaHandler.UpdateItem)
	ventas.Delete("/:id/items/:lineId", ventaHandler.RemoveItem)
	ventas.Put("/:id/cliente", ventaHandler.SetClient)
	ventas.Put("/:id/tipo", ventaHandler.SetDocumentType)
	ventas.Put("/:id/ajuste", ventaHandler.SetAdjustment)
	ventas.Put("/:id/iva", ventaHandler.SetTax)
	ventas.Post("/:id/reset", ventaHandler.Reset)
	ventas.Post("/:id/liquidar", ventaHandler.Settle)

	// Venta en curso: pago
	pagoHandler := NewPagoHandler(deps.Registry)
	ventas.Get("/:id/pago", pagoHandler.Estado)
	ventas.Delete("/:id/pago", pagoHandler.Cancelar)
	ventas.Post("/:id/pago/efectivo", pagoHandler.Efectivo)
	ventas.Post("/:id/pago/tarjeta", pagoHandler.Tarjeta)
	ventas.Post("/:id/pago/transferencia", pagoHandler.Transferencia)
	ventas.Post("/:id/pago/transferencia/verificar", pagoHandler.VerificarTransferencia)
	ventas.Post("/:id/pago/transferencia/confirmar", pagoHandler.ConfirmarTransferencia)
	ventas.Post("/:id/pago/billetera", pagoHandler.Billetera)

	// Comprobantes emitidos y libro de caja
	comprobanteHandler := NewComprobanteHandler(deps.CompRepo, deps.BranchRepo, deps.ClientRepo, deps.LedgerRepo, deps.Renderer, deps.Orchestrator)
	comprobantes := protected.Group("/comprobantes")
	comprobantes.Get("/", comprobanteHandler.List)
	comprobantes.Post("/promote", comprobanteHandler.Promote)
	comprobantes.Get("/:id", comprobanteHandler.Get)
	comprobantes.Get("/:id/pdf", comprobanteHandler.PDF)

	protected.Get("/caja", comprobanteHandler.Caja)
}
