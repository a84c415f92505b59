// Package settlement implementa el orquestador de liquidación: valida la
// venta compuesta, obtiene número y autorización fiscal, y confirma los
// efectos (comprobante, stock, caja) de forma atómica, con reintento y
// emisión en contingencia ante fallas de la autoridad fiscal.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/puntosur/facturacion-api/internal/application/draft"
	"github.com/puntosur/facturacion-api/internal/application/numbering"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/internal/domain/totals"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

// Pasos de la liquidación, registrados en Draft.PasoFallido ante una falla.
const (
	PasoValidacion   = "VALIDACION"
	PasoNumeracion   = "NUMERACION"
	PasoAutorizacion = "AUTORIZACION"
	PasoCommit       = "COMMIT"
)

// Errores de validación de entrada a la liquidación.
var (
	ErrVentaSinLineas   = errors.New("la venta no tiene líneas")
	ErrVentaSinPago     = errors.New("la venta no tiene pago confirmado")
	ErrVentaYaLiquidada = errors.New("la venta ya fue liquidada")
)

// Orchestrator dirige el commit de punta a punta de una venta. Una invocación
// procesa una transacción por vez; la venta le pertenece desde Settle hasta
// que queda CONFIRMADA o FALLIDA.
type Orchestrator struct {
	txRunner   TxRunner
	seq        *numbering.Sequencer
	autoridad  FiscalAuthority
	notifier   Notifier
	branchRepo repository.BranchRepository
	compRepo   repository.ComprobanteRepository
	clientRepo repository.ClientRepository
	log        *logger.Logger

	// AuthTimeout tope de la llamada a la autoridad fiscal.
	AuthTimeout time.Duration
	// NotifyTimeout tope del despacho de notificación en background.
	NotifyTimeout time.Duration
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	txRunner TxRunner,
	seq *numbering.Sequencer,
	autoridad FiscalAuthority,
	notifier Notifier,
	branchRepo repository.BranchRepository,
	compRepo repository.ComprobanteRepository,
	clientRepo repository.ClientRepository,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		txRunner:      txRunner,
		seq:           seq,
		autoridad:     autoridad,
		notifier:      notifier,
		branchRepo:    branchRepo,
		compRepo:      compRepo,
		clientRepo:    clientRepo,
		log:           log,
		AuthTimeout:   15 * time.Second,
		NotifyTimeout: 30 * time.Second,
	}
}

// Settle liquida la venta: recalcula totales (nunca confía en los de la UI),
// pide número, autoriza contra la autoridad fiscal si el tipo lo requiere y
// confirma los efectos. Ante falla de la autoridad la venta queda FALLIDA en
// el paso AUTORIZACION y el caller elige: reintentar Settle o SettleOffline.
func (o *Orchestrator) Settle(ctx context.Context, d *draft.Draft, pago entity.PaymentSelection) (*entity.Comprobante, error) {
	if err := o.validar(d, pago); err != nil {
		return nil, err
	}
	d.Estado = draft.EstadoLiquidacion

	r := totals.Calculate(d.Lines, d.Ajuste, d.IVAAplicable)

	numero, err := o.seq.Next(ctx, d.Tipo, d.BranchID)
	if err != nil {
		return nil, o.fallar(d, PasoNumeracion, err)
	}

	var cae string
	var caeVto *time.Time
	estado := estadoInicial(d.Tipo)

	if entity.TipoRequiereAutorizacion(d.Tipo) {
		auth, err := o.autorizar(ctx, d, r, numero)
		if err != nil {
			return nil, o.fallar(d, PasoAutorizacion, err)
		}
		cae = auth.CAE
		vto := auth.CAEVencimiento
		caeVto = &vto
		estado = entity.EstadoAutorizado
	}

	comp, err := o.emitir(ctx, d, pago, r, numero, estado, cae, caeVto)
	if err != nil {
		return nil, o.fallar(d, PasoCommit, err)
	}

	o.despachar(comp, d.ClienteResuelto())
	d.Estado = draft.EstadoConfirmada
	return comp, nil
}

// SettleOffline emite en contingencia: mismo contador de numeración, marca
// NO_AUTORIZADO y sin CAE. Es una degradación deliberada elegida por el
// operador tras una falla de la autoridad fiscal, no pérdida silenciosa.
func (o *Orchestrator) SettleOffline(ctx context.Context, d *draft.Draft, pago entity.PaymentSelection) (*entity.Comprobante, error) {
	if !entity.TipoRequiereAutorizacion(d.Tipo) {
		return nil, domain.ErrInvalidInput
	}
	if err := o.validar(d, pago); err != nil {
		return nil, err
	}
	d.Estado = draft.EstadoLiquidacion

	r := totals.Calculate(d.Lines, d.Ajuste, d.IVAAplicable)

	numero, err := o.seq.Next(ctx, d.Tipo, d.BranchID)
	if err != nil {
		return nil, o.fallar(d, PasoNumeracion, err)
	}

	comp, err := o.emitir(ctx, d, pago, r, numero, entity.EstadoNoAutorizado, "", nil)
	if err != nil {
		return nil, o.fallar(d, PasoCommit, err)
	}

	o.log.Warn().
		Str("comprobante_id", comp.ID).
		Int64("numero", numero).
		Msg("comprobante emitido en contingencia, sin CAE")

	o.despachar(comp, d.ClienteResuelto())
	d.Estado = draft.EstadoConfirmada
	return comp, nil
}

// Promote re-liquida un presupuesto como comprobante fiscal: reconstruye la
// venta con las mismas líneas y un pago nuevo, y pasa por Settle completo
// (autorización, stock y caja incluidos).
func (o *Orchestrator) Promote(ctx context.Context, presupuestoID string, pago entity.PaymentSelection, operatorID string) (*entity.Comprobante, error) {
	previo, err := o.compRepo.GetByID(presupuestoID)
	if err != nil {
		return nil, err
	}
	if previo == nil {
		return nil, domain.ErrNotFound
	}
	if previo.Tipo != entity.TipoPresupuesto {
		return nil, domain.ErrConflict
	}
	details, err := o.compRepo.GetDetails(presupuestoID)
	if err != nil {
		return nil, err
	}

	var client *entity.Client
	if previo.ClientID != "" && previo.ClientID != entity.ConsumidorFinalAnonimo().ID {
		client, err = o.clientRepo.GetByID(previo.ClientID)
		if err != nil {
			return nil, err
		}
	}

	d := &draft.Draft{
		ID:           uuid.New().String(),
		Client:       client,
		Lines:        make([]entity.LineItem, 0, len(details)),
		Ajuste:       entity.Ajuste{Tipo: previo.AjusteTipo, Pct: previo.AjustePct},
		IVAAplicable: !previo.TotalIVA.IsZero(),
		BranchID:     previo.BranchID,
		OperatorID:   operatorID,
		CreatedAt:    time.Now(),
		Estado:       draft.EstadoComposicion,
	}
	if client != nil {
		d.Tipo = client.TipoComprobantePorDefecto()
	} else {
		d.Tipo = entity.TipoFacturaB
	}
	for _, det := range details {
		d.Lines = append(d.Lines, entity.LineItem{
			ID:             uuid.New().String(),
			ProductID:      det.ProductID,
			Codigo:         det.Codigo,
			Nombre:         det.Nombre,
			PrecioUnitario: det.PrecioUnitario,
			PrecioOriginal: det.PrecioUnitario,
			Cantidad:       det.Cantidad,
			TasaIVA:        det.TasaIVA,
			Manual:         det.Manual,
		})
	}

	return o.Settle(ctx, d, pago)
}

// ── pasos internos ────────────────────────────────────────────────────────────

// validar aplica el contrato de entrada: al menos una línea y, para tipos que
// no son presupuesto, un pago confirmado. El cliente siempre resuelve (anónimo
// de consumidor final si no hay asignado).
func (o *Orchestrator) validar(d *draft.Draft, pago entity.PaymentSelection) error {
	if d.Estado == draft.EstadoConfirmada {
		return ErrVentaYaLiquidada
	}
	if len(d.Lines) == 0 {
		return fmt.Errorf("%w: %s", ErrVentaSinLineas, PasoValidacion)
	}
	if !entity.TipoValido(d.Tipo) {
		return domain.ErrInvalidInput
	}
	if d.Tipo != entity.TipoPresupuesto && pago.Medio == "" {
		return fmt.Errorf("%w: %s", ErrVentaSinPago, PasoValidacion)
	}
	return nil
}

func (o *Orchestrator) autorizar(ctx context.Context, d *draft.Draft, r totals.Result, numero int64) (*entity.FiscalAuthorization, error) {
	branch, err := o.branchRepo.GetByID(d.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	cliente := d.ClienteResuelto()

	ctx, cancel := context.WithTimeout(ctx, o.AuthTimeout)
	defer cancel()

	auth, err := o.autoridad.Authorize(ctx, AuthorizationRequest{
		Tipo:             d.Tipo,
		PuntoVenta:       branch.PuntoVenta,
		Numero:           numero,
		Fecha:            time.Now(),
		ClienteDocumento: cliente.Documento,
		ClienteCategoria: cliente.CategoriaFiscal,
		NetoAjustado:     r.NetoAjustado,
		TotalIVA:         r.TotalIVA,
		Total:            r.Total,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAutoridadFiscal, err)
	}
	if !auth.Exito {
		return nil, fmt.Errorf("%w: rechazo: %s", domain.ErrAutoridadFiscal, auth.ErrorDetalle)
	}
	return auth, nil
}

// emitir confirma los efectos en una sola transacción: persistir comprobante
// y detalles, descontar stock de cada línea no manual (re-chequeando
// disponibilidad: quedarse sin stock acá es falla dura, nunca commit parcial)
// y asentar el pago en caja. Los presupuestos solo persisten el documento.
func (o *Orchestrator) emitir(
	ctx context.Context,
	d *draft.Draft,
	pago entity.PaymentSelection,
	r totals.Result,
	numero int64,
	estado, cae string,
	caeVto *time.Time,
) (*entity.Comprobante, error) {
	now := time.Now()
	cliente := d.ClienteResuelto()

	comp := &entity.Comprobante{
		ID:             uuid.New().String(),
		Tipo:           d.Tipo,
		BranchID:       d.BranchID,
		ClientID:       cliente.ID,
		OperatorID:     d.OperatorID,
		Numero:         numero,
		Fecha:          now,
		Subtotal:       r.Subtotal,
		AjusteTipo:     d.Ajuste.Tipo,
		AjustePct:      d.Ajuste.Pct,
		NetoAjustado:   r.NetoAjustado,
		TotalIVA:       r.TotalIVA,
		Total:          r.Total,
		Estado:         estado,
		CAE:            cae,
		CAEVencimiento: caeVto,
		MedioPago:      pago.Descripcion(),
		PagoReferencia: pago.ReferenciaPago(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	esPresupuesto := d.Tipo == entity.TipoPresupuesto

	err := o.txRunner.RunSettlement(ctx, func(
		stockRepo repository.StockRepository,
		compRepo repository.ComprobanteRepository,
		ledgerRepo repository.PaymentLedgerRepository,
	) error {
		if err := compRepo.Create(comp); err != nil {
			return err
		}
		for _, l := range d.Lines {
			det := &entity.ComprobanteDetail{
				ID:             uuid.New().String(),
				ComprobanteID:  comp.ID,
				ProductID:      l.ProductID,
				Codigo:         l.Codigo,
				Nombre:         l.Nombre,
				Cantidad:       l.Cantidad,
				PrecioUnitario: l.PrecioUnitario,
				TasaIVA:        l.TasaIVA,
				Subtotal:       l.Subtotal(),
				Manual:         l.Manual,
			}
			if err := compRepo.CreateDetail(det); err != nil {
				return err
			}

			if esPresupuesto || l.Manual {
				continue
			}
			// Re-chequeo de stock con bloqueo de fila: el disponible pudo
			// cambiar desde la composición.
			stock, err := stockRepo.GetForUpdate(l.ProductID, d.BranchID)
			if err != nil {
				return err
			}
			disponible := int64(0)
			if stock == nil {
				stock = &entity.Stock{ProductID: l.ProductID, BranchID: d.BranchID}
			} else {
				disponible = stock.Cantidad
			}
			if disponible < l.Cantidad {
				return &domain.InsufficientStockError{
					ProductID: l.ProductID,
					Requested: l.Cantidad,
					Available: disponible,
				}
			}
			stock.Cantidad = disponible - l.Cantidad
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}
		}

		if !esPresupuesto {
			if _, err := ledgerRepo.Record(&entity.PaymentEntry{
				ID:            uuid.New().String(),
				ComprobanteID: comp.ID,
				BranchID:      d.BranchID,
				Medio:         pago.Medio,
				Monto:         r.Total,
				Referencia:    pago.ReferenciaPago(),
				Fecha:         now,
				CreatedBy:     d.OperatorID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// despachar entrega el comprobante al gateway de notificaciones en una
// goroutine propia: una falla ahí se informa por log y no revierte nada.
func (o *Orchestrator) despachar(comp *entity.Comprobante, cliente *entity.Client) {
	if o.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.NotifyTimeout)
		defer cancel()

		details, err := o.compRepo.GetDetails(comp.ID)
		if err != nil {
			o.log.Error().Err(err).Str("comprobante_id", comp.ID).Msg("detalles para notificación")
			return
		}
		if err := o.notifier.Dispatch(ctx, comp, details, cliente); err != nil {
			o.log.Error().Err(err).Str("comprobante_id", comp.ID).Msg("despacho de notificación")
		}
	}()
}

func (o *Orchestrator) fallar(d *draft.Draft, paso string, err error) error {
	d.Estado = draft.EstadoFallida
	d.PasoFallido = paso
	o.log.Error().Err(err).
		Str("venta_id", d.ID).
		Str("paso", paso).
		Msg("liquidación fallida")
	return err
}

func estadoInicial(tipo string) string {
	switch tipo {
	case entity.TipoPresupuesto:
		return entity.EstadoPresupuestado
	case entity.TipoComprobX:
		return entity.EstadoInterno
	}
	return entity.EstadoAutorizado
}
