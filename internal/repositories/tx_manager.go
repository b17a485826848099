package repositories

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// TxRepos are the repositories bound to one open transaction.
type TxRepos interface {
	Carts() CartRepository
	Discounts() DiscountRepository
	Orders() OrderRepository
}

// TransactionManager hides begin/commit/rollback from the services.
// If fn returns an error, nothing it wrote is kept.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

type txReposGorm struct {
	carts     CartRepository
	discounts DiscountRepository
	orders    OrderRepository
}

func (r *txReposGorm) Carts() CartRepository         { return r.carts }
func (r *txReposGorm) Discounts() DiscountRepository { return r.discounts }
func (r *txReposGorm) Orders() OrderRepository       { return r.orders }

// GORMTxManager runs units of work in a GORM transaction.
type GORMTxManager struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGORMTxManager creates a transaction manager. A nil isolation level keeps
// the driver default.
func NewGORMTxManager(db *gorm.DB, isolation *sql.IsolationLevel) *GORMTxManager {
	tm := &GORMTxManager{db: db}
	if isolation != nil {
		tm.opts = &sql.TxOptions{Isolation: *isolation}
	}
	return tm
}

func (tm *GORMTxManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) error {
	var opts []*sql.TxOptions
	if tm.opts != nil {
		opts = append(opts, tm.opts)
	}
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Repositories are rebuilt on the tx handle.
		return fn(&txReposGorm{
			carts:     NewGORMCartRepository(tx),
			discounts: NewGORMDiscountRepository(tx),
			orders:    NewGORMOrderRepository(tx),
		})
	}, opts...)
	if err != nil && !errors.Is(err, ErrConflict) && classifyError(err) == ErrConflict {
		return &repoError{sentinel: ErrConflict, cause: err}
	}
	return err
}
