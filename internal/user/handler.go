package user

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/moodlog/moodlog/internal/httputil"
	"github.com/moodlog/moodlog/internal/logging"
	"github.com/moodlog/moodlog/internal/ratelimit"
)

// Handler contains the HTTP handlers for the user registry.
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

// CreateUserRequest is the registration request body.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 32), is.Alphanumeric),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// TokenOnlyRequest carries operations that are authorized by a token alone.
type TokenOnlyRequest struct {
	APIToken string `json:"api_token"`
}

func (r TokenOnlyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.APIToken, validation.Required),
	)
}

// ChangeEntityRequest carries credential and email updates: NewEntity is
// the new password or the new address, depending on the route.
type ChangeEntityRequest struct {
	APIToken  string `json:"api_token"`
	NewEntity string `json:"new_entity"`
}

func (r ChangeEntityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.APIToken, validation.Required),
		validation.Field(&r.NewEntity, validation.Required),
	)
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}

// Create handles user registration
// @Summary      Register a new user
// @Description  Create a new inactive user account; a verification email is sent before the account activates.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "Registration payload"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      409 {object} httputil.ErrorResponse "Username already exists"
// @Failure      502 {object} httputil.ErrorResponse "Verification email could not be delivered"
// @Router       /user/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := httputil.ClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		logger.Warn("registration validation failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	newUser, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		logger.Warn("registration failed", "username", req.Username, "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	logger.Info("user registered", "username", newUser.Username)
	httputil.RespondJSON(w, UserResponse{Username: newUser.Username, IsActive: newUser.IsActive}, http.StatusCreated)
}

// VerifyEmail handles the verification link target
// @Summary      Verify an email address
// @Description  Consume a verification token; the matching account becomes active and the token is rotated.
// @Tags         user
// @Produce      json
// @Param        token query string true "Verification token"
// @Success      200 {object} httputil.StatusResponse
// @Failure      404 {object} httputil.ErrorResponse "Token not recognized"
// @Failure      500 {object} httputil.ErrorResponse "Token matches more than one account"
// @Router       /user/verify [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	verificationToken := r.URL.Query().Get("token")
	if verificationToken == "" {
		httputil.RespondErrorWithCode(w, "token is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), verificationToken); err != nil {
		logger.Warn("email verification failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, httputil.StatusOK, http.StatusOK)
}

// ChangePassword handles password updates
// @Summary      Change password
// @Description  Update the token owner's password. Requires an active token with can_change_credentials.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body ChangeEntityRequest true "Token and new password"
// @Success      200 {object} httputil.StatusResponse
// @Failure      403 {object} httputil.ErrorResponse "Token inactive or lacks capability"
// @Router       /user/update/pwd [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ChangeEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.ChangePassword(r.Context(), req.APIToken, req.NewEntity); err != nil {
		logger.Warn("password change failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, httputil.StatusOK, http.StatusOK)
}

// ChangeEmail handles email updates
// @Summary      Change email address
// @Description  Update the token owner's email. The account reverts to unverified and a new verification email is sent; delivery failure rolls the change back.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body ChangeEntityRequest true "Token and new email address"
// @Success      200 {object} httputil.StatusResponse
// @Failure      403 {object} httputil.ErrorResponse "Token inactive or lacks capability"
// @Failure      502 {object} httputil.ErrorResponse "Verification email could not be delivered"
// @Router       /user/update/email [post]
func (h *Handler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ChangeEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if err := validation.Validate(req.NewEntity, is.Email); err != nil {
		httputil.RespondErrorWithCode(w, "new_entity must be a valid email address", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.ChangeEmail(r.Context(), req.APIToken, req.NewEntity); err != nil {
		logger.Warn("email change failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, httputil.StatusOK, http.StatusOK)
}

// Delete handles account deletion
// @Summary      Delete a user
// @Description  Delete the token owner's account, cascading to their moods and tokens. Requires an active token with can_delete_user.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body TokenOnlyRequest true "API token"
// @Success      200 {object} httputil.StatusResponse
// @Failure      403 {object} httputil.ErrorResponse "Token inactive or lacks capability"
// @Failure      404 {object} httputil.ErrorResponse "Token not found"
// @Router       /user/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req TokenOnlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), req.APIToken); err != nil {
		logger.Warn("user deletion failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, httputil.StatusOK, http.StatusOK)
}
