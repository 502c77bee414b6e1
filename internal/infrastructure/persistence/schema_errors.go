package persistence

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes signalling that a write referenced a column the
// live schema does not have (or must not have). These show up when the
// application schema has drifted ahead of, or behind, a deployment.
const (
	pgCodeUndefinedColumn = "42703"
	pgCodeGeneratedAlways = "428C9"
)

// SchemaErrorKind classifies a schema drift error
type SchemaErrorKind int

const (
	// SchemaErrorMissingColumn means the column does not exist
	SchemaErrorMissingColumn SchemaErrorKind = iota
	// SchemaErrorGeneratedColumn means the column exists but cannot be
	// written to
	SchemaErrorGeneratedColumn
)

// SchemaError is a typed view of a "referenced column missing" class of
// store error. It carries the offending column so a caller can retry the
// write once with that column dropped from the payload.
type SchemaError struct {
	Kind   SchemaErrorKind
	Column string
	Err    error
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	switch e.Kind {
	case SchemaErrorGeneratedColumn:
		return fmt.Sprintf("column %q is generated and cannot be written: %v", e.Column, e.Err)
	default:
		return fmt.Sprintf("column %q does not exist: %v", e.Column, e.Err)
	}
}

// Unwrap returns the underlying error
func (e *SchemaError) Unwrap() error {
	return e.Err
}

var quotedColumnRe = regexp.MustCompile(`column "([^"]+)"`)

// AsSchemaError inspects an error for the missing/generated column
// class and returns its typed form
func AsSchemaError(err error) (*SchemaError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, false
	}

	var kind SchemaErrorKind
	switch pgErr.Code {
	case pgCodeUndefinedColumn:
		kind = SchemaErrorMissingColumn
	case pgCodeGeneratedAlways:
		kind = SchemaErrorGeneratedColumn
	default:
		return nil, false
	}

	column := pgErr.ColumnName
	if column == "" {
		if m := quotedColumnRe.FindStringSubmatch(pgErr.Message); m != nil {
			column = m[1]
		}
	}

	return &SchemaError{Kind: kind, Column: column, Err: err}, true
}

// withSchemaTolerance runs a write, and when it fails on a schema drift
// error, retries once with the offending column omitted from the
// payload. A second schema error, or any other error, propagates.
func withSchemaTolerance(write func(omit ...string) error) error {
	err := write()
	if err == nil {
		return nil
	}

	schemaErr, ok := AsSchemaError(err)
	if !ok || schemaErr.Column == "" {
		return err
	}

	if retryErr := write(schemaErr.Column); retryErr != nil {
		if _, again := AsSchemaError(retryErr); again {
			return fmt.Errorf("schema drift retry failed: %w", retryErr)
		}
		return retryErr
	}
	return nil
}
