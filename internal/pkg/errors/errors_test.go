package errors_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "bank-api/internal/pkg/errors"
)

func TestConstructorsSetCodeStatusAndMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        apierrors.APIError
		wantCode   string
		wantStatus int
	}{
		{"validation", apierrors.NewValidationError("bad input"), apierrors.ErrCodeValidation, http.StatusBadRequest},
		{"not found", apierrors.NewAccountNotFoundError(), apierrors.ErrCodeNotFound, http.StatusNotFound},
		{"insufficient funds", apierrors.NewInsufficientFundsError("no money"), apierrors.ErrCodeInsufficientFunds, http.StatusBadRequest},
		{"internal", apierrors.NewInternalServerError("boom"), apierrors.ErrCodeInternalServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.Equal(t, tt.err.Message, tt.err.Error())
		})
	}
}
