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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// La columna nombre_normalizado guarda el nombre plegado (minúsculas, sin
// tildes) para que la búsqueda del operador no dependa de cómo se cargó el
// catálogo.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, codigo, barcode, nombre, descripcion, precio, tasa_iva, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Codigo, &p.Barcode, &p.Nombre, &p.Descripcion,
		&p.Precio, &p.TasaIVA, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto por ID. Devuelve ErrNotFound si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// FindByCode busca por código interno exacto. nil si no existe.
func (r *ProductRepo) FindByCode(codigo string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE codigo = $1`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, codigo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by code: %w", err)
	}
	return p, nil
}

// FindByBarcode busca por código de barras exacto. nil si no existe.
func (r *ProductRepo) FindByBarcode(barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1 AND barcode <> ''`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by barcode: %w", err)
	}
	return p, nil
}

// SearchByName busca por nombre, insensible a mayúsculas y acentos, sobre la
// columna normalizada.
func (r *ProductRepo) SearchByName(term string, limit int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE nombre_normalizado LIKE '%' || $1 || '%'
		ORDER BY nombre
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, texto.Normalizar(term), limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create persiste un producto nuevo. Devuelve ErrDuplicate si el código ya existe.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, codigo, barcode, nombre, nombre_normalizado, descripcion, precio, tasa_iva, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Codigo, product.Barcode, product.Nombre,
		texto.Normalizar(product.Nombre), product.Descripcion,
		product.Precio, product.TasaIVA, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update actualiza los campos editables del producto.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products
		SET barcode = $2, nombre = $3, nombre_normalizado = $4, descripcion = $5,
		    precio = $6, tasa_iva = $7, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		product.ID, product.Barcode, product.Nombre, texto.Normalizar(product.Nombre),
		product.Descripcion, product.Precio, product.TasaIVA,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
