package school

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrImageTooLarge    = errors.New("image too large")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTableMissing     = errors.New("schools table does not exist")
)

// Kind is the closed set of failure categories the gateway reports.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindStoreUnavailable
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindStoreUnavailable:
		return "STORE_UNAVAILABLE"
	case KindFilesystem:
		return "FILESYSTEM_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// ValidationError means the caller supplied insufficient data. Nothing was
// written when it is returned.
type ValidationError struct {
	Reason error
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
	}
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// StoreError wraps any failure from the relational store. Unavailable is set
// when the engine could not be reached or the table is absent.
type StoreError struct {
	Op          string
	Unavailable bool
	Cause       error
}

func newStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Unavailable: isUnavailable(cause), Cause: cause}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable && e.Unavailable
}

// FilesystemError means the image could not be written; the row insert was
// not attempted.
type FilesystemError struct {
	Op    string
	Name  string
	Cause error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem %s %s: %v", e.Op, e.Name, e.Cause)
}

func (e *FilesystemError) Unwrap() error { return e.Cause }

func KindOf(err error) Kind {
	var (
		verr *ValidationError
		serr *StoreError
		ferr *FilesystemError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &verr):
		return KindValidation
	case errors.As(err, &serr):
		return KindStoreUnavailable
	case errors.As(err, &ferr):
		return KindFilesystem
	default:
		return KindUnknown
	}
}

// StatusFor maps an error to the HTTP status returned at the boundary.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		if errors.Is(err, ErrImageTooLarge) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case KindStoreUnavailable:
		if errors.Is(err, ErrStoreUnavailable) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTableMissing) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08xxx connection exceptions, 42P01 undefined_table
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "42P01"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1146 table doesn't exist, 1049 unknown database
		return myErr.Number == 1146 || myErr.Number == 1049
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "connection refused")
}
