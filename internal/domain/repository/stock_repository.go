package repository

import "github.com/puntosur/facturacion-api/internal/domain/entity"

// StockRepository define el puerto de existencias por producto+sucursal.
// GetForUpdate se usa dentro de transacciones (SELECT FOR UPDATE) para
// serializar el descuento de stock al confirmar la venta.
type StockRepository interface {
	Get(productID, branchID string) (*entity.Stock, error)
	GetForUpdate(productID, branchID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
}
