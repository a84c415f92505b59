package repository

import "context"

// SequenceRepository define el puerto del contador monotónico de numeración
// por (tipo, sucursal). NextNumber debe serializar llamadas concurrentes sobre
// la misma clave: dos ventas simultáneas jamás reciben el mismo número.
// Devuelve domain.ErrNumberingConflict si pierde una carrera que el caller
// puede reintentar con seguridad.
type SequenceRepository interface {
	NextNumber(ctx context.Context, tipo, branchID string) (int64, error)
}
