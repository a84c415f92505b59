// Package numbering implementa la numeración monotónica de comprobantes por
// (tipo, sucursal). El contador vive detrás de un puerto serializado
// (incremento transaccional en PostgreSQL o mutex por clave en memoria);
// este paquete agrega el reintento transparente ante contención.
package numbering

import (
	"context"
	"errors"
	"fmt"

	"github.com/puntosur/facturacion-api/internal/domain"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

// maxReintentos tope de reintentos ante ErrNumberingConflict antes de
// propagar el error.
const maxReintentos = 3

// Sequencer entrega el próximo número de comprobante para una clave
// (tipo, sucursal). Los conflictos de concurrencia se reintentan con un
// número fresco: el operador nunca ve un duplicado.
type Sequencer struct {
	repo repository.SequenceRepository
}

// NewSequencer construye el secuenciador sobre el repositorio dado.
func NewSequencer(repo repository.SequenceRepository) *Sequencer {
	return &Sequencer{repo: repo}
}

// Next devuelve el siguiente número para (tipo, sucursal). El número queda
// "gastado" recién cuando el orquestador persiste el comprobante: un número
// obtenido y nunca confirmado deja un hueco tolerado en la secuencia.
func (s *Sequencer) Next(ctx context.Context, tipo, branchID string) (int64, error) {
	var lastErr error
	for intento := 0; intento < maxReintentos; intento++ {
		n, err := s.repo.NextNumber(ctx, tipo, branchID)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, domain.ErrNumberingConflict) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("numeración %s/%s: reintentos agotados: %w", tipo, branchID, lastErr)
}
