package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/puntosur/facturacion-api/internal/application/settlement"
	"github.com/puntosur/facturacion-api/internal/domain/repository"
)

var _ settlement.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSettlement inicia una transacción, ejecuta fn con repos atados a la tx y
// hace Commit o Rollback. El commit de la emisión (comprobante, stock y caja)
// pasa entero por acá: o se confirma todo o nada.
func (r *TxRunner) RunSettlement(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	compRepo repository.ComprobanteRepository,
	ledgerRepo repository.PaymentLedgerRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stockRepo := NewStockRepository(tx)
	compRepo := NewComprobanteRepository(tx)
	ledgerRepo := NewPaymentLedgerRepository(tx)

	if err := fn(stockRepo, compRepo, ledgerRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
