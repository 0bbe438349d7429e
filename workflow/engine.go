package workflow

import (
	"errors"
	"sync"

	"bitbucket.org/mmdatafocus/factory_backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Engine is the valuation and cost-rollup core. It owns the inventory
// projection, the BOM, the cost configuration and the order profit fields.
// All state it touches lives in the injected database handle; there is no
// package-level connection or credential table.
type Engine struct {
	db       *gorm.DB
	logger   *logrus.Logger
	validate *validator.Validate

	// itemLocks serializes read-modify-write of a single item's projection
	// (stock, average price, total value). Locks are per item code, so
	// cross-item batches proceed without a global lock.
	itemLocks sync.Map // item code -> *sync.Mutex
}

func NewEngine(db *gorm.DB, logger *logrus.Logger) *Engine {
	return &Engine{
		db:       db,
		logger:   logger,
		validate: validator.New(),
	}
}

// DB exposes the underlying handle for read-only consumers (reporting, cmd
// tooling).
func (e *Engine) DB() *gorm.DB {
	return e.db
}

func (e *Engine) lockItem(itemCode string) func() {
	v, _ := e.itemLocks.LoadOrStore(itemCode, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// isDomainError reports whether an error is a typed engine outcome rather
// than a storage failure. Domain errors are never retried.
func isDomainError(err error) bool {
	return errors.Is(err, utils.ErrUnknownItem) ||
		errors.Is(err, utils.ErrInvalidArgument) ||
		errors.Is(err, utils.ErrNoBOMDefined) ||
		errors.Is(err, utils.ErrUncostedProduct) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// runWithRetry executes one unit of work in a transaction. A storage failure
// is retried once; the closure re-reads its rows, so the retry always works
// from a fresh projection.
func (e *Engine) runWithRetry(funcName string, fn func(tx *gorm.DB) error) error {
	err := e.db.Transaction(fn)
	if err == nil || isDomainError(err) {
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"module":   "workflow",
		"funcName": funcName,
	}).Warnf("storage error, retrying once: %v", err)
	return e.db.Transaction(fn)
}
