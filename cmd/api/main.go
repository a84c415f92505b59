package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/puntosur/facturacion-api/internal/application/auth"
	"github.com/puntosur/facturacion-api/internal/application/numbering"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	appsignal "github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/puntosur/facturacion-api/internal/infrastructure/arca"
	"github.com/puntosur/facturacion-api/internal/infrastructure/banco"
	"github.com/puntosur/facturacion-api/internal/infrastructure/mercadopago"
	"github.com/puntosur/facturacion-api/internal/infrastructure/notify"
	infrapdf "github.com/puntosur/facturacion-api/internal/infrastructure/pdf"
	"github.com/puntosur/facturacion-api/internal/infrastructure/postgres"
	httpRouter "github.com/puntosur/facturacion-api/internal/interfaces/http"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	branchRepo := postgres.NewBranchRepository(pool)
	operatorRepo := postgres.NewOperatorRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	compRepo := postgres.NewComprobanteRepository(pool)
	ledgerRepo := postgres.NewPaymentLedgerRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Numeración monotónica por (tipo, sucursal); la secuencia vive en la DB.
	sequencer := numbering.NewSequencer(sequenceRepo)

	// Autoridad fiscal: sin endpoint configurado (development) la autorización
	// se simula y el CAE es sintético.
	autoridad := arca.NewClient(cfg.ARCA, log)

	// Notificación post-emisión: comprobante en PDF por correo.
	renderer := infrapdf.NewMarotoRenderer()
	notifier := notify.NewEmailNotifier(cfg.Notify, renderer, branchRepo, log)

	orchestrator := settlement.NewOrchestrator(
		txRunner, sequencer, autoridad, notifier,
		branchRepo, compRepo, clientRepo, log,
	)

	// Sesiones de venta en memoria: composición + negociación de pago.
	bus := appsignal.NewBus()
	gateway := mercadopago.NewGateway(cfg.MercadoPago)
	verifier := banco.NewVerifier(cfg.Banco)
	registry := httpRouter.NewSessionRegistry(stockRepo, gateway, verifier, bus, log,
		time.Duration(cfg.MercadoPago.PollIntervalS)*time.Second,
		time.Duration(cfg.MercadoPago.PollTimeoutS)*time.Second)

	authUC := auth.NewAuthUseCase(operatorRepo, branchRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Registry:     registry,
		Orchestrator: orchestrator,
		AuthUC:       authUC,
		ProductRepo:  productRepo,
		ClientRepo:   clientRepo,
		StockRepo:    stockRepo,
		BranchRepo:   branchRepo,
		CompRepo:     compRepo,
		LedgerRepo:   ledgerRepo,
		Renderer:     renderer,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
