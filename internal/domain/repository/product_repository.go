package repository

import "github.com/puntosur/facturacion-api/internal/domain/entity"

// ProductRepository define el puerto de consulta de catálogo.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	// FindByCode busca por código interno exacto. nil si no existe.
	FindByCode(codigo string) (*entity.Product, error)
	// FindByBarcode busca por código de barras exacto. nil si no existe.
	FindByBarcode(barcode string) (*entity.Product, error)
	// SearchByName busca por nombre, insensible a mayúsculas y acentos.
	SearchByName(term string, limit int) ([]*entity.Product, error)
	Create(product *entity.Product) error
	Update(product *entity.Product) error
}
