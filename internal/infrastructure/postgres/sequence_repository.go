package postgres

import (
	"context"
	"fmt"

	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador de numeración sobre PostgreSQL. El upsert con
// RETURNING incrementa y lee en una sola sentencia; el row lock de la fila
// del contador serializa a las cajas que compiten por la misma clave.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextNumber incrementa y devuelve el contador de (tipo, sucursal). Una falla
// de serialización se mapea a ErrNumberingConflict para que el secuenciador
// reintente con un número fresco.
func (r *SequenceRepo) NextNumber(ctx context.Context, tipo, branchID string) (int64, error) {
	query := `
		INSERT INTO comprobante_sequences (tipo, branch_id, last_number, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (tipo, branch_id)
		DO UPDATE SET last_number = comprobante_sequences.last_number + 1, updated_at = now()
		RETURNING last_number`
	var n int64
	err := r.q.QueryRow(ctx, query, tipo, branchID).Scan(&n)
	if err != nil {
		if isSerializationFailure(err) || isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s/%s", domain.ErrNumberingConflict, tipo, branchID)
		}
		return 0, fmt.Errorf("next number: %w", err)
	}
	return n, nil
}
