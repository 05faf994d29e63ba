package token

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/moodlog/moodlog/internal/httputil"
	"github.com/moodlog/moodlog/internal/logging"
	"github.com/moodlog/moodlog/internal/ratelimit"
)

// Handler contains the HTTP handlers for the token authority.
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// CreateTokenRequest is the issuance request body. The capability flags are
// fixed on the token at creation.
type CreateTokenRequest struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	CanChangeCredentials bool   `json:"can_change_credentials"`
	CanSetMood           bool   `json:"can_set_mood"`
	CanDeleteUser        bool   `json:"can_delete_user"`
	CanChangeEmail       bool   `json:"can_change_email"`
}

func (r CreateTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// DeleteTokenRequest is the revocation request body: the token plus the
// owner's password as a co-presented credential.
type DeleteTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	APIToken string `json:"api_token"`
}

func (r DeleteTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.APIToken, validation.Required),
	)
}

// ListTokensRequest authenticates a token listing.
type ListTokensRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r ListTokensRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Create handles token issuance
// @Summary      Issue an API token
// @Description  Create a new active API token bound to the user, with the requested capability flags fixed at issuance.
// @Tags         token
// @Accept       json
// @Produce      json
// @Param        request body CreateTokenRequest true "Credentials and capability flags"
// @Success      201 {object} APIToken
// @Failure      401 {object} httputil.ErrorResponse "Password mismatch"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /token/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := httputil.ClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "issue_token")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for token issuance", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "issue_token"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	caps := Capabilities{
		CanChangeCredentials: req.CanChangeCredentials,
		CanSetMood:           req.CanSetMood,
		CanDeleteUser:        req.CanDeleteUser,
		CanChangeEmail:       req.CanChangeEmail,
	}
	issued, err := h.service.Issue(r.Context(), req.Username, req.Password, caps)
	if err != nil {
		logger.Warn("token issuance failed", "username", req.Username, "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	logger.Info("token issued", "username", req.Username)
	httputil.RespondJSON(w, issued, http.StatusCreated)
}

// Delete handles token revocation
// @Summary      Revoke an API token
// @Description  Soft-revoke a token. The password is verified against the owner resolved from the token; the row is kept with is_active=false.
// @Tags         token
// @Accept       json
// @Produce      json
// @Param        request body DeleteTokenRequest true "Token and owner password"
// @Success      200 {object} httputil.StatusResponse
// @Failure      401 {object} httputil.ErrorResponse "Password mismatch"
// @Failure      404 {object} httputil.ErrorResponse "Token not found"
// @Router       /token/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req DeleteTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.Revoke(r.Context(), req.APIToken, req.Password); err != nil {
		logger.Warn("token revocation failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, httputil.StatusOK, http.StatusOK)
}

// List handles token listing
// @Summary      List a user's API tokens
// @Description  Return the user's tokens after verifying the password. The filter query parameter (active|inactive|all) picks liveness explicitly; liveness is also visible per token.
// @Tags         token
// @Accept       json
// @Produce      json
// @Param        filter  query string false "active, inactive or all (default all)"
// @Param        request body ListTokensRequest true "Credentials"
// @Success      200 {array} APIToken
// @Failure      401 {object} httputil.ErrorResponse "Password mismatch"
// @Router       /tokens/get [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ListTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	filter, err := ParseStatusFilter(r.URL.Query().Get("filter"))
	if err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	tokens, err := h.service.ListForUser(r.Context(), req.Username, req.Password, filter)
	if err != nil {
		logger.Warn("token listing failed", "username", req.Username, "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, tokens, http.StatusOK)
}
