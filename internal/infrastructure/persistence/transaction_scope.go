package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	apptrade "github.com/stockledger/backend/internal/application/trade"
	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/trade"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions. A stock mutation and its ledger movement and
// audit fact commit or roll back together.
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTradeTransactionScope implements the trade TransactionScope using
// GORM transactions. A whole receiving batch is one transaction: order
// lines, stock levels, ledger movements and audit facts all commit or
// roll back as a unit.
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories
// scoped to the current transaction. It satisfies both the inventory and
// the trade TransactionalRepositories interfaces.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the purchase order repository scoped to the current transaction
func (r *gormTransactionalRepositories) OrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// AuditRepo returns the audit log repository scoped to the current transaction
func (r *gormTransactionalRepositories) AuditRepo() audit.Repository {
	return NewGormAuditLogRepository(r.tx)
}

// Ensure the scopes implement the application TransactionScope interfaces
var (
	_ appinv.TransactionScope            = (*GormInventoryTransactionScope)(nil)
	_ apptrade.TransactionScope          = (*GormTradeTransactionScope)(nil)
	_ appinv.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
	_ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
