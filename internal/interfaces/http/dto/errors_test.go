package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"INVALID_PRODUCT", http.StatusNotFound},
		{"VALIDATION_FAILED", http.StatusBadRequest},
		{"MISSING_MULTIPLIER", http.StatusBadRequest},
		{"DUPLICATE_OPERATION", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{ErrCodeReconcile, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}

	t.Run("unknown business codes map to 422", func(t *testing.T) {
		assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("PAYMENT_EXCEEDED"))
		assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("INVALID_STATE"))
	})
}
