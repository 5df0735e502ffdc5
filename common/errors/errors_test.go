package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"not found", NotFound("cart not found"), http.StatusNotFound},
		{"invalid request", InvalidRequest("no items"), http.StatusBadRequest},
		{"conflict", Conflict("cart already exists"), http.StatusConflict},
		{"internal", Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestIsKind_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", Conflict("cart already exists"))

	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindNotFound))
}

func TestError_IncludesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Internal("database query failed", cause)

	assert.Contains(t, err.Error(), "database query failed")
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, cause, err.Unwrap())
}
