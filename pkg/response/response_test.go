package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/scorekeeper-service/internal/repository"
	"github.com/maxviazov/scorekeeper-service/internal/service"
	"github.com/maxviazov/scorekeeper-service/internal/session"
	"github.com/maxviazov/scorekeeper-service/pkg/response"
)

// fakeInvalid mimics the service's aggregated validation error without reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"ok", nil, http.StatusOK, "ok"},
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "side", Message: "bad"}}}, http.StatusBadRequest, "invalid_input"},
		{"not_found", repository.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not_found", fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound, "not_found"},
		{"already_exists", repository.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{"conflict", repository.ErrConflict, http.StatusConflict, "conflict"},
		{"game_completed", service.ErrGameCompleted, http.StatusConflict, "game_completed"},
		{"period_limit", service.ErrPeriodLimit, http.StatusConflict, "period_limit"},
		{"session closed", session.ErrClosed, http.StatusServiceUnavailable, "unavailable"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantErr, payload.Error)
			if tc.wantErr == "invalid_input" {
				assert.Len(t, payload.FieldErrors, 1)
			}
		})
	}
}
