package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/moodlog/internal/fault"
)

func TestRespondFault(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fault.NotFound("user missing"), http.StatusNotFound, CodeNotFound},
		{"duplicate", fault.New(fault.KindDuplicate, "taken"), http.StatusConflict, CodeDuplicateUser},
		{"bad credentials", fault.New(fault.KindInvalidCredentials, "mismatch"), http.StatusUnauthorized, CodeInvalidCredentials},
		{"forbidden", fault.Forbidden("no capability"), http.StatusForbidden, CodeForbidden},
		{"inconsistency", fault.Inconsistency("two active"), http.StatusInternalServerError, CodeInconsistency},
		{"upstream", fault.Upstream("db down", errors.New("conn refused")), http.StatusBadGateway, CodeUpstreamFailure},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
		{"wrapped fault", fmt.Errorf("handling request: %w", fault.NotFound("gone")), http.StatusNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondFault(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestStatusResponseShape(t *testing.T) {
	ok, err := json.Marshal(StatusOK)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":0}`, string(ok))

	failed, err := json.Marshal(StatusFailed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":1}`, string(failed))
}
