package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/puntosur/facturacion-api/internal/application/auth"
	"github.com/puntosur/facturacion-api/internal/application/numbering"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	appsignal "github.com/puntosur/facturacion-api/internal/application/signal"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/internal/infrastructure/arca"
	"github.com/puntosur/facturacion-api/internal/infrastructure/banco"
	"github.com/puntosur/facturacion-api/internal/infrastructure/mercadopago"
	apphttp "github.com/puntosur/facturacion-api/internal/interfaces/http"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repos en memoria para los tests de la API
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	branches  map[string]*entity.Branch
	operators map[string]*entity.Operator
	products  map[string]*entity.Product
	clients   map[string]*entity.Client
	stock     map[string]*entity.Stock // product|branch
	comps     map[string]*entity.Comprobante
	details   map[string][]*entity.ComprobanteDetail
	ledger    []*entity.PaymentEntry
}

func newMemStore() *memStore {
	return &memStore{
		branches:  make(map[string]*entity.Branch),
		operators: make(map[string]*entity.Operator),
		products:  make(map[string]*entity.Product),
		clients:   make(map[string]*entity.Client),
		stock:     make(map[string]*entity.Stock),
		comps:     make(map[string]*entity.Comprobante),
		details:   make(map[string][]*entity.ComprobanteDetail),
	}
}

type memBranchRepo struct{ s *memStore }

func (r *memBranchRepo) GetByID(id string) (*entity.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.branches[id], nil
}
func (r *memBranchRepo) List() ([]*entity.Branch, error) { return nil, nil }
func (r *memBranchRepo) Create(b *entity.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.branches[b.ID] = b
	return nil
}

type memOperatorRepo struct{ s *memStore }

func (r *memOperatorRepo) GetByID(id string) (*entity.Operator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.operators[id], nil
}
func (r *memOperatorRepo) GetByEmail(email string) (*entity.Operator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, op := range r.s.operators {
		if op.Email == email {
			return op, nil
		}
	}
	return nil, nil
}
func (r *memOperatorRepo) Create(op *entity.Operator) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.operators[op.ID] = op
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
func (r *memProductRepo) FindByCode(codigo string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, nil
}
func (r *memProductRepo) FindByBarcode(barcode string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, nil
}
func (r *memProductRepo) SearchByName(string, int) ([]*entity.Product, error) { return nil, nil }
func (r *memProductRepo) Create(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	return nil
}
func (r *memProductRepo) Update(*entity.Product) error { return nil }

type memClientRepo struct{ s *memStore }

func (r *memClientRepo) GetByID(id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}
func (r *memClientRepo) FindByIdentifier(term string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if c.Documento == term {
			return c, nil
		}
	}
	return nil, nil
}
func (r *memClientRepo) Create(c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clients[c.ID] = c
	return nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(productID, branchID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.stock[productID+"|"+branchID], nil
}
func (r *memStockRepo) GetForUpdate(productID, branchID string) (*entity.Stock, error) {
	return r.Get(productID, branchID)
}
func (r *memStockRepo) Upsert(st *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *st
	r.s.stock[st.ProductID+"|"+st.BranchID] = &cp
	return nil
}

type memCompRepo struct{ s *memStore }

func (r *memCompRepo) Create(comp *entity.Comprobante) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *comp
	r.s.comps[comp.ID] = &cp
	return nil
}
func (r *memCompRepo) CreateDetail(d *entity.ComprobanteDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *d
	r.s.details[d.ComprobanteID] = append(r.s.details[d.ComprobanteID], &cp)
	return nil
}
func (r *memCompRepo) GetByID(id string) (*entity.Comprobante, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.comps[id], nil
}
func (r *memCompRepo) GetDetails(comprobanteID string) ([]*entity.ComprobanteDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.details[comprobanteID], nil
}
func (r *memCompRepo) ListByBranch(branchID string, desde, hasta time.Time, limit, offset int) ([]*entity.Comprobante, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Comprobante
	for _, c := range r.s.comps {
		if c.BranchID == branchID && !c.Fecha.Before(desde) && c.Fecha.Before(hasta) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memLedgerRepo struct{ s *memStore }

func (r *memLedgerRepo) Record(e *entity.PaymentEntry) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	cp.ID = fmt.Sprintf("entry-%d", len(r.s.ledger)+1)
	r.s.ledger = append(r.s.ledger, &cp)
	return cp.ID, nil
}
func (r *memLedgerRepo) ListByBranchAndDate(branchID string, dia time.Time) ([]*entity.PaymentEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PaymentEntry
	for _, e := range r.s.ledger {
		if e.BranchID == branchID {
			out = append(out, e)
		}
	}
	return out, nil
}

// directTxRunner ejecuta el callback directamente contra los repos en
// memoria. Los tests de rollback del orquestador viven en el paquete
// settlement.
type directTxRunner struct {
	stock  repository.StockRepository
	comp   repository.ComprobanteRepository
	ledger repository.PaymentLedgerRepository
}

func (tx *directTxRunner) RunSettlement(_ context.Context, fn func(
	stockRepo repository.StockRepository,
	compRepo repository.ComprobanteRepository,
	ledgerRepo repository.PaymentLedgerRepository,
) error) error {
	return fn(tx.stock, tx.comp, tx.ledger)
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(context.Context, *entity.Comprobante, []*entity.ComprobanteDetail, *entity.Client) error {
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture de la API completa con fiber.App de prueba
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testBranchID  = "branch-1"
)

type apiFixture struct {
	app   *fiber.App
	store *memStore
	token string
}

func buildTestAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := newMemStore()
	log := logger.Nop()

	branchRepo := &memBranchRepo{s: store}
	operatorRepo := &memOperatorRepo{s: store}
	productRepo := &memProductRepo{s: store}
	clientRepo := &memClientRepo{s: store}
	stockRepo := &memStockRepo{s: store}
	compRepo := &memCompRepo{s: store}
	ledgerRepo := &memLedgerRepo{s: store}

	require.NoError(t, branchRepo.Create(&entity.Branch{ID: testBranchID, Nombre: "Casa Central", PuntoVenta: 3}))

	hash, err := bcrypt.GenerateFromPassword([]byte("cambiame123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, operatorRepo.Create(&entity.Operator{
		ID: "op-1", Nombre: "Operador Demo", Email: "demo@puntosur.ar",
		PasswordHash: string(hash), BranchID: testBranchID,
	}))

	require.NoError(t, productRepo.Create(&entity.Product{
		ID: "prod-1", Codigo: "AZ001", Barcode: "7790001000011", Nombre: "Azúcar 1kg",
		Precio: decimal.NewFromInt(100), TasaIVA: decimal.NewFromInt(21),
	}))
	require.NoError(t, stockRepo.Upsert(&entity.Stock{ProductID: "prod-1", BranchID: testBranchID, Cantidad: 10}))

	sequencer := numbering.NewSequencer(numbering.NewMemorySequence())
	autoridad := arca.NewClient(config.ARCAConfig{}, log) // sin endpoint: CAE simulado
	txRunner := &directTxRunner{stock: stockRepo, comp: compRepo, ledger: ledgerRepo}
	orchestrator := settlement.NewOrchestrator(
		txRunner, sequencer, autoridad, noopNotifier{},
		branchRepo, compRepo, clientRepo, log,
	)

	bus := appsignal.NewBus()
	gateway := mercadopago.NewGateway(config.MercadoPagoConfig{})
	verifier := banco.NewVerifier(config.BancoConfig{})
	registry := apphttp.NewSessionRegistry(stockRepo, gateway, verifier, bus, log, 0, 0)

	authUC := auth.NewAuthUseCase(operatorRepo, branchRepo, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: 60, Issuer: "facturacion-test",
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Registry:     registry,
		Orchestrator: orchestrator,
		AuthUC:       authUC,
		ProductRepo:  productRepo,
		ClientRepo:   clientRepo,
		StockRepo:    stockRepo,
		BranchRepo:   branchRepo,
		CompRepo:     compRepo,
		LedgerRepo:   ledgerRepo,
		Renderer:     nil, // el PDF no se ejercita en estos tests
		JWTSecret:    testJWTSecret,
	})

	f := &apiFixture{app: app, store: store}
	f.token = f.login(t)
	return f
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "demo@puntosur.ar", "password": "cambiame123",
	}, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "login debe funcionar con credenciales del seed")
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Flujo completo de mostrador: abrir venta, escanear producto, cobrar en
// efectivo y liquidar. Verifica número, CAE simulado y descuento de stock.
func TestAPI_FlujoVentaEfectivo(t *testing.T) {
	f := buildTestAPI(t)

	venta := decode[map[string]any](t, f.do(t, http.MethodPost, "/api/ventas", nil, f.token))
	ventaID := venta["id"].(string)
	require.NotEmpty(t, ventaID)

	resp := f.do(t, http.MethodPost, "/api/ventas/"+ventaID+"/items", map[string]any{
		"barcode": "7790001000011", "cantidad": 2,
	}, f.token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	totales := body["totales"].(map[string]any)
	assert.Equal(t, "242", totales["total"], "200 de neto más 42 de IVA")

	resp = f.do(t, http.MethodPost, "/api/ventas/"+ventaID+"/pago/efectivo", map[string]any{
		"entregado": "300",
	}, f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pago := decode[map[string]any](t, resp)
	assert.Equal(t, "CONFIRMADO", pago["estado"])
	assert.Equal(t, "58", pago["vuelto"])

	resp = f.do(t, http.MethodPost, "/api/ventas/"+ventaID+"/liquidar", nil, f.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comp := decode[map[string]any](t, resp)
	assert.Equal(t, "FACTURA_B", comp["tipo"])
	assert.Equal(t, float64(1), comp["numero"])
	assert.Equal(t, float64(3), comp["punto_venta"])
	assert.Equal(t, "AUTORIZADO", comp["estado"])
	assert.NotEmpty(t, comp["cae"], "sin endpoint ARCA el CAE es simulado pero presente")

	f.store.mu.Lock()
	st := f.store.stock["prod-1|"+testBranchID]
	f.store.mu.Unlock()
	require.NotNil(t, st)
	assert.Equal(t, int64(8), st.Cantidad, "el stock se descuenta al liquidar")

	// La sesión se cierra al liquidar.
	resp = f.do(t, http.MethodGet, "/api/ventas/"+ventaID, nil, f.token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// Sin token las rutas protegidas rechazan con 401.
func TestAPI_SinToken_Retorna401(t *testing.T) {
	f := buildTestAPI(t)
	resp := f.do(t, http.MethodPost, "/api/ventas", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Agregar un producto que no existe en el catálogo devuelve 404.
func TestAPI_AddItem_ProductoInexistente(t *testing.T) {
	f := buildTestAPI(t)
	venta := decode[map[string]any](t, f.do(t, http.MethodPost, "/api/ventas", nil, f.token))
	ventaID := venta["id"].(string)

	resp := f.do(t, http.MethodPost, "/api/ventas/"+ventaID+"/items", map[string]any{
		"barcode": "0000000000000",
	}, f.token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Liquidar sin pago confirmado es un error de validación.
func TestAPI_Liquidar_SinPago(t *testing.T) {
	f := buildTestAPI(t)
	venta := decode[map[string]any](t, f.do(t, http.MethodPost, "/api/ventas", nil, f.token))
	ventaID := venta["id"].(string)

	resp := f.do(t, http.MethodPost, "/api/ventas/"+ventaID+"/items", map[string]any{
		"codigo": "AZ001",
	}, f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/ventas/"+ventaID+"/liquidar", nil, f.token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Asignar un cliente responsable inscripto re-deriva el tipo a FACTURA_A.
func TestAPI_SetCliente_DerivaTipo(t *testing.T) {
	f := buildTestAPI(t)
	require.NoError(t, (&memClientRepo{s: f.store}).Create(&entity.Client{
		ID: "cli-1", Nombre: "Distribuidora Cuyo SA", Documento: "30712345678",
		CategoriaFiscal: entity.CategoriaResponsableInscripto,
	}))

	venta := decode[map[string]any](t, f.do(t, http.MethodPost, "/api/ventas", nil, f.token))
	ventaID := venta["id"].(string)

	resp := f.do(t, http.MethodPut, "/api/ventas/"+ventaID+"/cliente", map[string]any{
		"identifier": "30712345678",
	}, f.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "FACTURA_A", body["tipo"])
	cliente := body["cliente"].(map[string]any)
	assert.Equal(t, "Distribuidora Cuyo SA", cliente["nombre"])
}

// TestSessionRegistry_AplicaConfiguracionDePolling el registry propaga el
// intervalo y el tope de polling configurados a cada negociador nuevo; en
// cero quedan los valores por defecto.
func TestSessionRegistry_AplicaConfiguracionDePolling(t *testing.T) {
	store := newMemStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	gateway := mercadopago.NewGateway(config.MercadoPagoConfig{})
	verifier := banco.NewVerifier(config.BancoConfig{})

	registry := apphttp.NewSessionRegistry(&memStockRepo{s: store}, gateway, verifier,
		appsignal.NewBus(), log, 7*time.Second, 90*time.Second)
	s := registry.Open("branch-1", "op-1")
	assert.Equal(t, 7*time.Second, s.Negotiator.PollInterval)
	assert.Equal(t, 90*time.Second, s.Negotiator.PollTimeout)

	sinConfig := apphttp.NewSessionRegistry(&memStockRepo{s: store}, gateway, verifier,
		appsignal.NewBus(), log, 0, 0)
	s2 := sinConfig.Open("branch-1", "op-1")
	assert.Equal(t, 3*time.Second, s2.Negotiator.PollInterval)
	assert.Equal(t, 5*time.Minute, s2.Negotiator.PollTimeout)
}
