// Package repository holds the raw SQL data access for members, tokens,
// workbook types, workbooks and visitors.  Queries are written to run on
// both MySQL and SQLite; timestamps are always passed in from Go as UTC.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a write loses to existing state, e.g. a
// second workbook for the same member and type.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a unique key rejects an insert.
var ErrDuplicate = errors.New("duplicate")

// isDuplicate recognises unique-key violations from both drivers.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "1062")
}
