package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrAutoridadFiscal envuelve fallas de red, timeout o rechazo del WS de la
	// autoridad fiscal. Recuperable vía reintento o emisión sin autorizar.
	ErrAutoridadFiscal = errors.New("autoridad fiscal no disponible")

	// ErrPasarelaPago falla de la pasarela de pagos (QR / verificación).
	// Recuperable cambiando de medio de pago.
	ErrPasarelaPago = errors.New("pasarela de pago no disponible")

	// ErrNumberingConflict contención en el secuenciador de numeración.
	// Se reintenta internamente con un número fresco; nunca llega al operador.
	ErrNumberingConflict = errors.New("conflicto de numeración")
)

// InsufficientStockError indica stock insuficiente e informa el disponible
// para que el operador decida (reemplazo manual, menor cantidad, cancelar).
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock) sobre el error tipado.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
