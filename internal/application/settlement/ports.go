package settlement

import (
	"context"
	"time"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// AuthorizationRequest es el contrato de entrada hacia la autoridad fiscal.
// Solo se modela el contrato request/response; el protocolo de wire vive en
// infrastructure/arca.
type AuthorizationRequest struct {
	Tipo             string
	PuntoVenta       int
	Numero           int64
	Fecha            time.Time
	ClienteDocumento string
	ClienteCategoria string
	NetoAjustado     decimal.Decimal
	TotalIVA         decimal.Decimal
	Total            decimal.Decimal
}

// FiscalAuthority define el puerto de autorización de comprobantes fiscales.
// El error se mapea siempre a domain.ErrAutoridadFiscal (red, timeout o
// rechazo); el resultado con Exito=false trae el detalle del rechazo.
type FiscalAuthority interface {
	Authorize(ctx context.Context, req AuthorizationRequest) (*entity.FiscalAuthorization, error)
}

// Notifier define el puerto de despacho del comprobante emitido. Es
// fire-and-forget desde el orquestador: una falla se loguea, nunca revierte
// la emisión.
type Notifier interface {
	Dispatch(ctx context.Context, comp *entity.Comprobante, details []*entity.ComprobanteDetail, client *entity.Client) error
}

// TxRunner ejecuta el commit de la emisión dentro de una transacción que
// incluye stock, comprobantes y libro de caja: o se confirma todo o nada.
type TxRunner interface {
	RunSettlement(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		compRepo repository.ComprobanteRepository,
		ledgerRepo repository.PaymentLedgerRepository,
	) error) error
}
