package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

var _ repository.OperatorRepository = (*OperatorRepo)(nil)

// OperatorRepo implementación de OperatorRepository sobre PostgreSQL.
type OperatorRepo struct {
	q Querier
}

// NewOperatorRepository construye el adaptador de operadores.
func NewOperatorRepository(q Querier) *OperatorRepo {
	return &OperatorRepo{q: q}
}

const operatorColumns = `id, nombre, email, password_hash, branch_id, created_at, updated_at`

func scanOperator(row pgx.Row) (*entity.Operator, error) {
	var o entity.Operator
	err := row.Scan(&o.ID, &o.Nombre, &o.Email, &o.PasswordHash, &o.BranchID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID obtiene un operador por ID. nil si no existe.
func (r *OperatorRepo) GetByID(id string) (*entity.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1`
	o, err := scanOperator(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operator: %w", err)
	}
	return o, nil
}

// GetByEmail obtiene un operador por email. nil si no existe.
func (r *OperatorRepo) GetByEmail(email string) (*entity.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE email = $1`
	o, err := scanOperator(r.q.QueryRow(context.Background(), query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operator by email: %w", err)
	}
	return o, nil
}

// Create persiste un operador nuevo. Devuelve ErrDuplicate si el email ya existe.
func (r *OperatorRepo) Create(op *entity.Operator) error {
	query := `
		INSERT INTO operators (` + operatorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		op.ID, op.Nombre, op.Email, op.PasswordHash, op.BranchID, op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create operator: %w", err)
	}
	return nil
}
