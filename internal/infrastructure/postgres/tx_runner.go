package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/inventory"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/repository"
)

var _ inventory.TxRunner = (*InventoryTxRunner)(nil)
var _ production.TxRunner = (*ProductionTxRunner)(nil)
var _ billing.TxRunner = (*BillingTxRunner)(nil)

// runInTx begins a transaction, runs fn and commits, rolling back on any
// error. Repositories handed to fn must be bound to the same tx.
func runInTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InventoryTxRunner executes inventory callbacks inside one PostgreSQL
// transaction, so FIFO lot locking and the consumption ledger commit together.
type InventoryTxRunner struct {
	pool *pgxpool.Pool
}

// NewInventoryTxRunner builds the runner on the pool.
func NewInventoryTxRunner(pool *pgxpool.Pool) *InventoryTxRunner {
	return &InventoryTxRunner{pool: pool}
}

func (r *InventoryTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.MaterialLotRepository,
	consumptionRepo repository.ConsumptionRepository,
	worksheetRepo repository.WorkSheetRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewMaterialLotRepository(tx),
			NewConsumptionRepository(tx),
			NewWorkSheetRepository(tx),
			NewAuditRepository(tx),
		)
	})
}

// ProductionTxRunner executes order and work sheet callbacks inside one
// transaction, so numbering, the two-level status flips and the QC verdict
// commit together.
type ProductionTxRunner struct {
	pool *pgxpool.Pool
}

// NewProductionTxRunner builds the runner on the pool.
func NewProductionTxRunner(pool *pgxpool.Pool) *ProductionTxRunner {
	return &ProductionTxRunner{pool: pool}
}

func (r *ProductionTxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	qcRepo repository.QCRepository,
	counterRepo repository.CounterRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewOrderRepository(tx),
			NewWorkSheetRepository(tx),
			NewQCRepository(tx),
			NewCounterRepository(tx),
			NewAuditRepository(tx),
		)
	})
}

// BillingTxRunner executes invoice callbacks inside one transaction, so number
// assignment under the year lock and the delivery flips commit together.
type BillingTxRunner struct {
	pool *pgxpool.Pool
}

// NewBillingTxRunner builds the runner on the pool.
func NewBillingTxRunner(pool *pgxpool.Pool) *BillingTxRunner {
	return &BillingTxRunner{pool: pool}
}

func (r *BillingTxRunner) Run(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	worksheetRepo repository.WorkSheetRepository,
	emailLogRepo repository.EmailLogRepository,
	auditRepo repository.AuditRepository,
) error) error {
	return runInTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(
			NewInvoiceRepository(tx),
			NewOrderRepository(tx),
			NewWorkSheetRepository(tx),
			NewEmailLogRepository(tx),
			NewAuditRepository(tx),
		)
	})
}
