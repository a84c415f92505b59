package repository

import (
	"time"

	"github.com/puntosur/facturacion-api/internal/domain/entity"
)

// ComprobanteRepository define el puerto de persistencia de comprobantes.
type ComprobanteRepository interface {
	Create(comp *entity.Comprobante) error
	CreateDetail(detail *entity.ComprobanteDetail) error
	GetByID(id string) (*entity.Comprobante, error)
	GetDetails(comprobanteID string) ([]*entity.ComprobanteDetail, error)
	ListByBranch(branchID string, desde, hasta time.Time, limit, offset int) ([]*entity.Comprobante, error)
}
