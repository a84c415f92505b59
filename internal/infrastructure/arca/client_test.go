package arca

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

const respuestaAprobada = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECAESolicitarResult>
        <FeDetResp>
          <FECAEDetResponse>
            <Concepto>1</Concepto>
            <CbteDesde>42</CbteDesde>
            <CbteHasta>42</CbteHasta>
            <Resultado>A</Resultado>
            <CAE>75123456789012</CAE>
            <CAEFchVto>20260915</CAEFchVto>
          </FECAEDetResponse>
        </FeDetResp>
      </FECAESolicitarResult>
    </FECAESolicitarResponse>
  </soap:Body>
</soap:Envelope>`

const respuestaRechazada = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <FECAESolicitarResponse xmlns="http://ar.gov.afip.dif.FEV1/">
      <FECAESolicitarResult>
        <FeDetResp>
          <FECAEDetResponse>
            <CbteDesde>43</CbteDesde>
            <Resultado>R</Resultado>
            <Observaciones>
              <Obs><Code>10016</Code><Msg>Numero de comprobante ya informado</Msg></Obs>
            </Observaciones>
          </FECAEDetResponse>
        </FeDetResp>
      </FECAESolicitarResult>
    </FECAESolicitarResponse>
  </soap:Body>
</soap:Envelope>`

func requestDePrueba() settlement.AuthorizationRequest {
	return settlement.AuthorizationRequest{
		Tipo:             entity.TipoFacturaB,
		PuntoVenta:       3,
		Numero:           42,
		Fecha:            time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		ClienteDocumento: "20304050607",
		ClienteCategoria: entity.CategoriaMonotributo,
		NetoAjustado:     decimal.NewFromInt(200),
		TotalIVA:         decimal.NewFromInt(42),
		Total:            decimal.NewFromInt(242),
	}
}

// TestAuthorize_Aprobada valida el round-trip completo contra un WS de
// prueba: el request lleva los montos y la numeración, y la respuesta
// aprobada se mapea a CAE + vencimiento.
func TestAuthorize_Aprobada(t *testing.T) {
	var capturado string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		capturado = string(body)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(respuestaAprobada))
	}))
	defer srv.Close()

	client := NewClient(config.ARCAConfig{
		Endpoint: srv.URL,
		CUIT:     "30111222333",
		Token:    "tok",
		Sign:     "sig",
		TimeoutS: 5,
	}, logger.Nop())

	auth, err := client.Authorize(context.Background(), requestDePrueba())
	require.NoError(t, err)

	assert.True(t, auth.Exito)
	assert.Equal(t, "75123456789012", auth.CAE)
	assert.Equal(t, int64(42), auth.Numero)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), auth.CAEVencimiento)

	assert.Contains(t, capturado, "<ar:PtoVta>3</ar:PtoVta>")
	assert.Contains(t, capturado, "<ar:CbteTipo>6</ar:CbteTipo>")
	assert.Contains(t, capturado, "<ar:CbteDesde>42</ar:CbteDesde>")
	assert.Contains(t, capturado, "<ar:ImpTotal>242.00</ar:ImpTotal>")
	assert.Contains(t, capturado, "<ar:CbteFch>20260830</ar:CbteFch>")
}

// TestAuthorize_Rechazada valida que un Resultado R llega como Exito=false
// con las observaciones concatenadas, sin error de transporte.
func TestAuthorize_Rechazada(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(respuestaRechazada))
	}))
	defer srv.Close()

	client := NewClient(config.ARCAConfig{Endpoint: srv.URL, TimeoutS: 5}, logger.Nop())

	auth, err := client.Authorize(context.Background(), requestDePrueba())
	require.NoError(t, err)

	assert.False(t, auth.Exito)
	assert.Contains(t, auth.ErrorDetalle, "ya informado")
}

// TestAuthorize_SinEndpoint valida el modo local: CAE simulado sin red.
func TestAuthorize_SinEndpoint(t *testing.T) {
	client := NewClient(config.ARCAConfig{}, logger.Nop())

	auth, err := client.Authorize(context.Background(), requestDePrueba())
	require.NoError(t, err)
	assert.True(t, auth.Exito)
	assert.NotEmpty(t, auth.CAE)
}

// TestAuthorize_ErrorHTTP valida que un 500 del WS se propaga como error.
func TestAuthorize_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(config.ARCAConfig{Endpoint: srv.URL, TimeoutS: 5}, logger.Nop())

	_, err := client.Authorize(context.Background(), requestDePrueba())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
