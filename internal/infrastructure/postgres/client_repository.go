package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/entity"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
	"github.com/puntosur/facturacion-api/pkg/texto"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador de clientes. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, nombre, documento, categoria_fiscal, email, telefono, created_at, updated_at`

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(&c.ID, &c.Nombre, &c.Documento, &c.CategoriaFiscal,
		&c.Email, &c.Telefono, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID obtiene un cliente por ID. Devuelve ErrNotFound si no existe.
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// FindByIdentifier busca primero por CUIT/DNI exacto y, si no hay match, por
// nombre normalizado. nil si no existe.
func (r *ClientRepo) FindByIdentifier(term string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE documento = $1`
	c, err := scanClient(r.q.QueryRow(context.Background(), query, term))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find client by documento: %w", err)
	}

	query = `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE nombre_normalizado LIKE '%' || $1 || '%'
		ORDER BY nombre
		LIMIT 1`
	c, err = scanClient(r.q.QueryRow(context.Background(), query, texto.Normalizar(term)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find client by nombre: %w", err)
	}
	return c, nil
}

// Create persiste un cliente nuevo. Devuelve ErrDuplicate si el documento ya existe.
func (r *ClientRepo) Create(client *entity.Client) error {
	query := `
		INSERT INTO clients (id, nombre, nombre_normalizado, documento, categoria_fiscal, email, telefono, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		client.ID, client.Nombre, texto.Normalizar(client.Nombre), client.Documento,
		client.CategoriaFiscal, client.Email, client.Telefono,
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}
