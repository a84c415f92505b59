// Package banco adapta el servicio de consulta de movimientos bancarios al
// puerto de verificación de transferencias.
package banco

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/puntosur/facturacion-api/internal/application/payment"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/shopspring/decimal"
)

var _ payment.BankVerifier = (*Verifier)(nil)

// Verifier consulta si entró una transferencia por el monto esperado. Con
// Endpoint vacío responde siempre no-verificado: el operador confirma a mano.
type Verifier struct {
	cfg        config.BancoConfig
	httpClient *http.Client
}

// NewVerifier construye el adaptador.
func NewVerifier(cfg config.BancoConfig) *Verifier {
	return &Verifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type movimientoResponse struct {
	Encontrado bool   `json:"encontrado"`
	Referencia string `json:"referencia"`
}

// Verify consulta el servicio por una acreditación del monto en la cuenta.
func (v *Verifier) Verify(ctx context.Context, bancoID string, monto decimal.Decimal) (bool, string, error) {
	if v.cfg.Endpoint == "" {
		return false, "", nil
	}

	u := fmt.Sprintf("%s/cuentas/%s/acreditaciones?monto=%s",
		v.cfg.Endpoint, url.PathEscape(bancoID), url.QueryEscape(monto.StringFixed(2)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, "", fmt.Errorf("banco: crear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("banco: consultar acreditaciones: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, "", fmt.Errorf("banco: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("banco: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var out movimientoResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, "", fmt.Errorf("banco: parsear respuesta: %w", err)
	}
	return out.Encontrado, out.Referencia, nil
}
