package repository

import "github.com/puntosur/facturacion-api/internal/domain/entity"

// ClientRepository define el puerto de consulta y alta de clientes.
type ClientRepository interface {
	GetByID(id string) (*entity.Client, error)
	// FindByIdentifier busca por CUIT/DNI exacto o por nombre. nil si no existe.
	FindByIdentifier(term string) (*entity.Client, error)
	Create(client *entity.Client) error
}
