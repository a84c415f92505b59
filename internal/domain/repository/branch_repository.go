package repository

import "github.com/puntosur/facturacion-api/internal/domain/entity"

// BranchRepository define el puerto de sucursales.
type BranchRepository interface {
	GetByID(id string) (*entity.Branch, error)
	List() ([]*entity.Branch, error)
	Create(branch *entity.Branch) error
}
