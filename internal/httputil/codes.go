package httputil

import (
	"errors"
	"net/http"

	"github.com/moodlog/moodlog/internal/fault"
)

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateUser      = "DUPLICATE_USER"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeInconsistency      = "STATE_INCONSISTENCY"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// RespondFault maps a domain fault to the HTTP surface. Upstream failures
// answer 502 so clients know the operation is retryable; inconsistency and
// hashing failures answer 500.
func RespondFault(w http.ResponseWriter, err error) {
	detail := "operation failed"
	var f *fault.Fault
	if errors.As(err, &f) {
		detail = f.Detail
	}

	switch fault.KindOf(err) {
	case fault.KindNotFound:
		RespondErrorWithCode(w, detail, CodeNotFound, http.StatusNotFound)
	case fault.KindDuplicate:
		RespondErrorWithCode(w, detail, CodeDuplicateUser, http.StatusConflict)
	case fault.KindInvalidCredentials:
		RespondErrorWithCode(w, detail, CodeInvalidCredentials, http.StatusUnauthorized)
	case fault.KindForbidden:
		RespondErrorWithCode(w, detail, CodeForbidden, http.StatusForbidden)
	case fault.KindInconsistency:
		RespondErrorWithCode(w, detail, CodeInconsistency, http.StatusInternalServerError)
	case fault.KindUpstream:
		RespondErrorWithCode(w, detail, CodeUpstreamFailure, http.StatusBadGateway)
	default:
		RespondErrorWithCode(w, "internal error", CodeInternalError, http.StatusInternalServerError)
	}
}
