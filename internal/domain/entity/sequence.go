package entity

import "time"

// SequenceCounter es el contador monotónico de numeración por
// (tipo de comprobante, sucursal). Estrictamente creciente: se toleran huecos
// (número obtenido y nunca emitido), nunca duplicados.
type SequenceCounter struct {
	Tipo       string
	BranchID   string
	LastNumber int64
	UpdatedAt  time.Time
}
