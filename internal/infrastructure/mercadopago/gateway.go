// Package mercadopago adapta la API REST de Mercado Pago al puerto de
// pasarela de pagos QR. Usa net/http de la librería estándar; no requiere el
// SDK oficial.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/puntosur/facturacion-api/internal/application/payment"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/shopspring/decimal"
)

// Verificar en tiempo de compilación que Gateway implementa payment.Gateway.
var _ payment.Gateway = (*Gateway)(nil)

// Gateway cliente de la pasarela. Con AccessToken vacío opera en modo local:
// genera un payload de QR sintético y reporta pagado tras unos sondeos, para
// desarrollo sin credenciales.
type Gateway struct {
	cfg        config.MercadoPagoConfig
	httpClient *http.Client

	// modo local: operaciones creadas y cuántas veces se sondeó cada una.
	// El sondeo corre en la goroutine del negociador, de ahí el mutex.
	mu    sync.Mutex
	local map[string]int
}

// NewGateway construye el adaptador.
func NewGateway(cfg config.MercadoPagoConfig) *Gateway {
	return &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		local:      make(map[string]int),
	}
}

// ── Estructuras internas del protocolo de órdenes QR ─────────────────────────

type createOrderRequest struct {
	ExternalReference string     `json:"external_reference"`
	Title             string     `json:"title"`
	TotalAmount       jsonAmount `json:"total_amount"`
}

// jsonAmount serializa el decimal como número JSON con dos decimales.
type jsonAmount struct{ decimal.Decimal }

func (a jsonAmount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

type createOrderResponse struct {
	QRData  string `json:"qr_data"`
	InError *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type orderStatusResponse struct {
	Status            string `json:"status"` // opened | closed | expired
	ExternalReference string `json:"external_reference"`
	PaymentID         int64  `json:"payment_id"`
}

// CreateQrOperation registra la orden en la pasarela y devuelve el payload
// del QR a renderizar en pantalla.
func (g *Gateway) CreateQrOperation(ctx context.Context, monto decimal.Decimal, operationID string) (string, error) {
	if g.cfg.AccessToken == "" {
		g.mu.Lock()
		g.local[operationID] = 0
		g.mu.Unlock()
		return "00020101021243650016COM.MERCADOLIBRE" + operationID, nil
	}

	payload, err := json.Marshal(createOrderRequest{
		ExternalReference: operationID,
		Title:             "Venta mostrador",
		TotalAmount:       jsonAmount{monto},
	})
	if err != nil {
		return "", fmt.Errorf("mercadopago: serializar orden: %w", err)
	}

	url := g.cfg.BaseURL + "/instore/orders/qr/" + operationID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("mercadopago: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.AccessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mercadopago: crear orden: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("mercadopago: leer respuesta: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("mercadopago: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var out createOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("mercadopago: parsear respuesta: %w", err)
	}
	if out.InError != nil {
		return "", fmt.Errorf("mercadopago: %s", out.InError.Message)
	}
	if out.QRData == "" {
		return "", fmt.Errorf("mercadopago: orden creada sin qr_data")
	}
	return out.QRData, nil
}

// PollStatus consulta el estado de la orden. paid=true cuando la pasarela la
// reporta cerrada; details lleva el payload crudo para auditoría.
func (g *Gateway) PollStatus(ctx context.Context, operationID string) (bool, string, error) {
	if g.cfg.AccessToken == "" {
		g.mu.Lock()
		g.local[operationID]++
		pagado := g.local[operationID] >= 3
		g.mu.Unlock()
		// En modo local el pago "entra" al tercer sondeo.
		if pagado {
			return true, fmt.Sprintf(`{"status":"closed","external_reference":%q}`, operationID), nil
		}
		return false, "", nil
	}

	url := g.cfg.BaseURL + "/instore/orders/qr/" + operationID + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, "", fmt.Errorf("mercadopago: crear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.AccessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("mercadopago: consultar estado: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, "", fmt.Errorf("mercadopago: leer respuesta: %w", err)
	}
	if resp.StatusCode >= 300 {
		return false, "", fmt.Errorf("mercadopago: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var out orderStatusResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, "", fmt.Errorf("mercadopago: parsear estado: %w", err)
	}
	if out.Status == "closed" {
		return true, string(body), nil
	}
	return false, "", nil
}
