package repository

import "github.com/puntosur/facturacion-api/internal/domain/entity"

// OperatorRepository define el puerto de operadores de caja.
type OperatorRepository interface {
	GetByID(id string) (*entity.Operator, error)
	GetByEmail(email string) (*entity.Operator, error)
	Create(op *entity.Operator) error
}
