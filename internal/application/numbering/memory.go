package numbering

import (
	"context"
	"sync"

	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*MemorySequence)(nil)

// MemorySequence implementación en memoria del contador, serializada con un
// mutex. Útil para tests y para operar una caja sin base de datos.
type MemorySequence struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewMemorySequence construye el contador vacío.
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{last: make(map[string]int64)}
}

// NextNumber incrementa y devuelve el contador de la clave (tipo, sucursal).
func (m *MemorySequence) NextNumber(_ context.Context, tipo, branchID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tipo + "|" + branchID
	m.last[key]++
	return m.last[key], nil
}
