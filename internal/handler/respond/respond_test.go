package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/handler/respond"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.JSON(rec, http.StatusCreated, map[string]int{"count": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestServiceError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &domain.ErrValidation{Field: "message", Message: "message is required"}, http.StatusBadRequest, "message is required"},
		{"wrapped validation", fmt.Errorf("turn: %w", &domain.ErrValidation{Field: "message", Message: "too long"}), http.StatusBadRequest, "too long"},
		{"unauthorized", &domain.ErrUnauthorized{Message: "admin role required"}, http.StatusUnauthorized, "admin role required"},
		{"not found", &domain.ErrNotFound{Resource: "session", ID: "s-1"}, http.StatusNotFound, (&domain.ErrNotFound{Resource: "session", ID: "s-1"}).Error()},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.ServiceError(rec, tc.err, zap.NewNop())

			assert.Equal(t, tc.status, rec.Code)
			var body respond.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}
