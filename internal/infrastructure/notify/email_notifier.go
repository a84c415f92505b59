// Package notify despacha el comprobante emitido al cliente por correo, con
// el PDF adjunto. El orquestador lo invoca fire-and-forget: una falla acá se
// loguea, nunca afecta la emisión.
package notify

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/pkg/config"
	"github.com/puntosur/facturacion-api/pkg/logger"
)

// DocumentRenderer produce la representación del comprobante que viaja
// adjunta. La implementación concreta (maroto) vive en infrastructure/pdf.
type DocumentRenderer interface {
	Render(ctx context.Context, comp *entity.Comprobante, branch *entity.Branch, client *entity.Client, details []*entity.ComprobanteDetail) ([]byte, error)
}

var _ settlement.Notifier = (*EmailNotifier)(nil)

// EmailNotifier envía el comprobante por SMTP. Con SMTPHost vacío el despacho
// se omite con un log, para operar sin servidor de correo.
type EmailNotifier struct {
	cfg        config.NotifyConfig
	renderer   DocumentRenderer
	branchRepo repository.BranchRepository
	log        *logger.Logger
}

// NewEmailNotifier construye el gateway de notificaciones.
func NewEmailNotifier(cfg config.NotifyConfig, renderer DocumentRenderer, branchRepo repository.BranchRepository, log *logger.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, renderer: renderer, branchRepo: branchRepo, log: log}
}

// Dispatch envía el comprobante al email del cliente. Cliente sin email o
// SMTP sin configurar no son errores: el despacho simplemente no aplica.
func (n *EmailNotifier) Dispatch(ctx context.Context, comp *entity.Comprobante, details []*entity.ComprobanteDetail, client *entity.Client) error {
	if client == nil || client.Email == "" {
		n.log.Debug().Str("comprobante_id", comp.ID).Msg("cliente sin email, no se notifica")
		return nil
	}
	if n.cfg.SMTPHost == "" {
		n.log.Info().Str("comprobante_id", comp.ID).Msg("SMTP no configurado, no se notifica")
		return nil
	}

	branch, err := n.branchRepo.GetByID(comp.BranchID)
	if err != nil {
		return fmt.Errorf("notify: obtener sucursal: %w", err)
	}
	if branch == nil {
		return fmt.Errorf("notify: sucursal %s no existe", comp.BranchID)
	}

	pdfBytes, err := n.renderer.Render(ctx, comp, branch, client, details)
	if err != nil {
		return fmt.Errorf("notify: renderizar comprobante: %w", err)
	}

	numero := fmt.Sprintf("%04d-%08d", branch.PuntoVenta, comp.Numero)
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", client.Email)
	m.SetHeader("Subject", fmt.Sprintf("Comprobante %s - %s", numero, branch.Nombre))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hola %s,\n\nAdjuntamos el comprobante %s por un total de $ %s.\n\nGracias por su compra.\n%s",
		client.Nombre, numero, comp.Total.StringFixed(2), branch.Nombre,
	))
	m.Attach(numero+".pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdfBytes)
		return err
	}))

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.Username, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("notify: enviar correo: %w", err)
	}

	n.log.Info().
		Str("comprobante_id", comp.ID).
		Str("email", client.Email).
		Msg("comprobante notificado")
	return nil
}
