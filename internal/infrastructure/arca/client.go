// Package arca implementa el puerto de autorización fiscal contra el WS de
// facturación electrónica (solicitud de CAE). El protocolo es SOAP 1.1; el
// envelope se arma y se lee con etree porque la respuesta real llega con
// namespaces y envoltorios que varían entre ambientes.
package arca

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

const (
	soapNS     = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS  = "http://ar.gov.afip.dif.FEV1/"
	soapAction = "http://ar.gov.afip.dif.FEV1/FECAESolicitar"

	fechaWS = "20060102"
)

// Códigos de tipo de comprobante del WS.
var tipoCodigo = map[string]int{
	entity.TipoFacturaA: 1,
	entity.TipoFacturaB: 6,
	entity.TipoFacturaC: 11,
}

var _ settlement.FiscalAuthority = (*Client)(nil)

// Client cliente del WS de autorización. Con Endpoint vacío opera en modo
// local: no llama a ningún servicio y devuelve un CAE simulado (para
// desarrollo y demo, nunca para producción).
type Client struct {
	cfg        config.ARCAConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente. El timeout de red sale de la config; el WS
// puede tardar varios segundos en responder.
func NewClient(cfg config.ARCAConfig, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Authorize solicita el CAE para un comprobante. El rechazo del WS llega como
// resultado con Exito=false y el detalle de las observaciones; las fallas de
// red o protocolo llegan como error.
func (c *Client) Authorize(ctx context.Context, req settlement.AuthorizationRequest) (*entity.FiscalAuthorization, error) {
	if c.cfg.Endpoint == "" {
		return c.simular(req), nil
	}

	codigo, ok := tipoCodigo[req.Tipo]
	if !ok {
		return nil, fmt.Errorf("arca: tipo %q no autorizable", req.Tipo)
	}

	payload, err := c.buildRequest(req, codigo)
	if err != nil {
		return nil, fmt.Errorf("arca: armar request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("arca: crear request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("arca: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("arca: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("arca: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arca: HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	return c.parseResponse(rawBody)
}

// buildRequest arma el envelope SOAP de FECAESolicitar.
func (c *Client) buildRequest(req settlement.AuthorizationRequest, codigo int) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", soapNS)
	env.CreateAttr("xmlns:ar", serviceNS)
	env.CreateElement("soapenv:Header")
	body := env.CreateElement("soapenv:Body")

	sol := body.CreateElement("ar:FECAESolicitar")

	auth := sol.CreateElement("ar:Auth")
	auth.CreateElement("ar:Token").SetText(c.cfg.Token)
	auth.CreateElement("ar:Sign").SetText(c.cfg.Sign)
	auth.CreateElement("ar:Cuit").SetText(c.cfg.CUIT)

	feReq := sol.CreateElement("ar:FeCAEReq")

	cab := feReq.CreateElement("ar:FeCabReq")
	cab.CreateElement("ar:CantReg").SetText("1")
	cab.CreateElement("ar:PtoVta").SetText(strconv.Itoa(req.PuntoVenta))
	cab.CreateElement("ar:CbteTipo").SetText(strconv.Itoa(codigo))

	det := feReq.CreateElement("ar:FeDetReq").CreateElement("ar:FECAEDetRequest")
	det.CreateElement("ar:Concepto").SetText("1") // productos
	det.CreateElement("ar:DocTipo").SetText(docTipo(req.ClienteCategoria))
	det.CreateElement("ar:DocNro").SetText(req.ClienteDocumento)
	det.CreateElement("ar:CbteDesde").SetText(strconv.FormatInt(req.Numero, 10))
	det.CreateElement("ar:CbteHasta").SetText(strconv.FormatInt(req.Numero, 10))
	det.CreateElement("ar:CbteFch").SetText(req.Fecha.Format(fechaWS))
	det.CreateElement("ar:ImpTotal").SetText(req.Total.StringFixed(2))
	det.CreateElement("ar:ImpNeto").SetText(req.NetoAjustado.StringFixed(2))
	det.CreateElement("ar:ImpIVA").SetText(req.TotalIVA.StringFixed(2))
	det.CreateElement("ar:MonId").SetText("PES")
	det.CreateElement("ar:MonCotiz").SetText("1")

	return doc.WriteToBytes()
}

// parseResponse extrae resultado, CAE y observaciones de la respuesta SOAP.
func (c *Client) parseResponse(raw []byte) (*entity.FiscalAuthorization, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("arca: parsear respuesta: %w", err)
	}

	if fault := doc.FindElement("//Fault"); fault != nil {
		code := textOf(fault.FindElement("faultcode"))
		msg := textOf(fault.FindElement("faultstring"))
		return nil, fmt.Errorf("arca: SOAP fault [%s]: %s", code, msg)
	}

	det := doc.FindElement("//FECAEDetResponse")
	if det == nil {
		return nil, fmt.Errorf("arca: respuesta sin detalle: %s", string(raw))
	}

	resultado := textOf(det.FindElement("Resultado"))
	if resultado != "A" {
		var obs []string
		for _, o := range det.FindElements("Observaciones/Obs/Msg") {
			obs = append(obs, o.Text())
		}
		for _, e := range doc.FindElements("//Errors/Err/Msg") {
			obs = append(obs, e.Text())
		}
		detalle := "rechazado sin detalle"
		if len(obs) > 0 {
			detalle = obs[0]
			for _, o := range obs[1:] {
				detalle += "; " + o
			}
		}
		return &entity.FiscalAuthorization{Exito: false, ErrorDetalle: detalle}, nil
	}

	cae := textOf(det.FindElement("CAE"))
	if cae == "" {
		return nil, fmt.Errorf("arca: resultado aprobado sin CAE")
	}
	vto, err := time.Parse(fechaWS, textOf(det.FindElement("CAEFchVto")))
	if err != nil {
		return nil, fmt.Errorf("arca: vencimiento de CAE inválido: %w", err)
	}
	numero, _ := strconv.ParseInt(textOf(det.FindElement("CbteDesde")), 10, 64)

	return &entity.FiscalAuthorization{
		Exito:          true,
		Numero:         numero,
		CAE:            cae,
		CAEVencimiento: vto,
	}, nil
}

// simular emite una autorización local con CAE sintético. Solo development.
func (c *Client) simular(req settlement.AuthorizationRequest) *entity.FiscalAuthorization {
	c.log.Warn().
		Str("tipo", req.Tipo).
		Int64("numero", req.Numero).
		Msg("autorización simulada: ARCA_ENDPOINT no configurado")
	return &entity.FiscalAuthorization{
		Exito:          true,
		Numero:         req.Numero,
		CAE:            fmt.Sprintf("9%013d", req.Numero),
		CAEVencimiento: time.Now().AddDate(0, 0, 10),
	}
}

func docTipo(categoria string) string {
	// 80 = CUIT, 99 = consumidor final sin identificar
	if categoria == entity.CategoriaConsumidorFinal {
		return "99"
	}
	return "80"
}

func textOf(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return el.Text()
}
