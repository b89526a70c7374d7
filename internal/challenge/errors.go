package challenge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStorage marks every failure surfaced by the Store.
	ErrStorage = errors.New("challenge storage error")
	// ErrIntegrity marks constraint violations the check-and-insert
	// statements are expected to make unreachable.
	ErrIntegrity = errors.New("challenge storage integrity violation")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

const (
	sqliteBusyCode       = 5
	sqliteConstraintCode = 19
)

func storageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %w: %s: %w", ErrStorage, ErrIntegrity, operation, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, operation, err)
}

func primaryCode(err error) (int, bool) {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code() & 0xff, true
	}
	return 0, false
}

func isConstraintViolation(err error) bool {
	if code, ok := primaryCode(err); ok {
		return code == sqliteConstraintCode
	}
	msg := err.Error()
	return strings.Contains(msg, "constraint failed") || strings.Contains(msg, "SQLITE_CONSTRAINT")
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := primaryCode(err); ok && code == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
