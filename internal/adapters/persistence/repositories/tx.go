package repositories

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TxManager funnels every multi-row mutation through a single database
// transaction. Transient storage failures are retried once at this boundary;
// domain errors are surfaced untouched.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// DB returns the underlying handle for read-only queries
func (m *TxManager) DB() *gorm.DB {
	return m.db
}

// WithTransaction runs fn inside a transaction. The callback receives the
// transaction handle; repositories constructed on it share the same locks.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := m.db.WithContext(ctx).Transaction(fn)
	if err != nil && IsTransient(err) {
		log.Printf("⚠️ Transient storage error, retrying once: %v", err)
		err = m.db.WithContext(ctx).Transaction(fn)
	}
	return err
}

// IsTransient reports whether err is a storage error worth a single retry
// (deadlock, lock wait timeout, dropped connection).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1213 = deadlock, 1205 = lock wait timeout
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}

	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	// SQLite (tests) reports lock contention as "database is locked"
	return strings.Contains(err.Error(), "database is locked")
}

// IsDuplicate reports unique-constraint violations
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// LockForUpdate adds an exclusive row lock on dialects that support it.
// SQLite serializes writers at the database level, so the clause is skipped
// there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
