package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsSchemaError(t *testing.T) {
	t.Run("undefined column", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:    "42703",
			Message: `column "units_per_carton" of relation "product_variants" does not exist`,
		}

		schemaErr, ok := AsSchemaError(pgErr)
		require.True(t, ok)
		assert.Equal(t, SchemaErrorMissingColumn, schemaErr.Kind)
		assert.Equal(t, "units_per_carton", schemaErr.Column)
	})

	t.Run("column name field preferred over message", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:       "42703",
			ColumnName: "weight_per_unit",
			Message:    "something unparseable",
		}

		schemaErr, ok := AsSchemaError(pgErr)
		require.True(t, ok)
		assert.Equal(t, "weight_per_unit", schemaErr.Column)
	})

	t.Run("generated column", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:    "428C9",
			Message: `column "line_total" can only be updated to DEFAULT`,
		}

		schemaErr, ok := AsSchemaError(pgErr)
		require.True(t, ok)
		assert.Equal(t, SchemaErrorGeneratedColumn, schemaErr.Kind)
		assert.Equal(t, "line_total", schemaErr.Column)
	})

	t.Run("wrapped errors are unwrapped", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:    "42703",
			Message: `column "packaging_mode" does not exist`,
		}
		wrapped := fmt.Errorf("update variant: %w", pgErr)

		schemaErr, ok := AsSchemaError(wrapped)
		require.True(t, ok)
		assert.Equal(t, "packaging_mode", schemaErr.Column)
	})

	t.Run("other pg codes are not schema errors", func(t *testing.T) {
		_, ok := AsSchemaError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
		assert.False(t, ok)
	})

	t.Run("plain errors are not schema errors", func(t *testing.T) {
		_, ok := AsSchemaError(errors.New("connection refused"))
		assert.False(t, ok)
	})
}

func TestWithSchemaTolerance(t *testing.T) {
	missingColumn := &pgconn.PgError{
		Code:    "42703",
		Message: `column "packaging_mode" of relation "purchase_line_items" does not exist`,
	}

	t.Run("success on first try", func(t *testing.T) {
		calls := 0
		err := withSchemaTolerance(func(omit ...string) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries once with the offending column omitted", func(t *testing.T) {
		var omitted [][]string
		err := withSchemaTolerance(func(omit ...string) error {
			omitted = append(omitted, omit)
			if len(omitted) == 1 {
				return missingColumn
			}
			return nil
		})
		require.NoError(t, err)
		require.Len(t, omitted, 2)
		assert.Empty(t, omitted[0])
		assert.Equal(t, []string{"packaging_mode"}, omitted[1])
	})

	t.Run("second schema error is fatal", func(t *testing.T) {
		calls := 0
		err := withSchemaTolerance(func(omit ...string) error {
			calls++
			return missingColumn
		})
		require.Error(t, err)
		assert.Equal(t, 2, calls, "no retry loop beyond the single retry")
	})

	t.Run("other errors propagate without retry", func(t *testing.T) {
		calls := 0
		boom := errors.New("connection reset")
		err := withSchemaTolerance(func(omit ...string) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("schema error without a column propagates", func(t *testing.T) {
		calls := 0
		err := withSchemaTolerance(func(omit ...string) error {
			calls++
			return &pgconn.PgError{Code: "42703", Message: "no name here"}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls, "cannot retry without knowing the column")
	})
}
