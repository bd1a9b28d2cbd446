package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("some other failure")))
	assert.False(t, IsTransient(gorm.ErrRecordNotFound))

	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}))
	assert.False(t, IsTransient(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))

	assert.True(t, IsTransient(mysql.ErrInvalidConn))
	assert.True(t, IsTransient(fmt.Errorf("query: %w", mysql.ErrInvalidConn)))
	assert.True(t, IsTransient(errors.New("database is locked")))
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.False(t, IsDuplicate(gorm.ErrRecordNotFound))

	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsDuplicate(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))

	assert.True(t, IsDuplicate(errors.New("UNIQUE constraint failed: payments.membership_id, payments.period_start")))
}
