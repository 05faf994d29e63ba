package mood

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/moodlog/moodlog/internal/httputil"
	"github.com/moodlog/moodlog/internal/logging"
)

// Handler contains the HTTP handlers for the mood ledger.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// MoodActionRequest carries mood mutations authorized by an API token.
type MoodActionRequest struct {
	APIToken string `json:"api_token"`
	Mood     string `json:"mood"`
}

func (r MoodActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.APIToken, validation.Required),
	)
}

// Create handles mood creation
// @Summary      Set the current mood
// @Description  Record a new mood for the token's owner. The previously active mood is deactivated atomically; exactly one mood stays active.
// @Tags         mood
// @Accept       json
// @Produce      json
// @Param        request body MoodActionRequest true "Token and mood label"
// @Success      201 {object} Mood
// @Failure      403 {object} httputil.ErrorResponse "Token inactive or lacks can_set_mood"
// @Failure      404 {object} httputil.ErrorResponse "Token not found"
// @Router       /mood/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req MoodActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if req.Mood == "" {
		httputil.RespondErrorWithCode(w, "mood is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	m, err := h.service.Set(r.Context(), req.APIToken, req.Mood)
	if err != nil {
		logger.Warn("mood creation failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, m, http.StatusCreated)
}

// Delete handles mood history deletion
// @Summary      Delete all moods
// @Description  Remove every mood of the token's owner, active and historical. The breadth is intentional.
// @Tags         mood
// @Accept       json
// @Produce      json
// @Param        request body MoodActionRequest true "API token"
// @Success      200 {object} httputil.StatusResponse
// @Failure      403 {object} httputil.ErrorResponse "Token revoked"
// @Failure      404 {object} httputil.ErrorResponse "Token not found"
// @Router       /mood/delete [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req MoodActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), req.APIToken); err != nil {
		logger.Warn("mood deletion failed", "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, httputil.StatusOK, http.StatusOK)
}

// GetActive handles active mood reads
// @Summary      Get the active mood
// @Description  Return the user's single active mood. No active mood answers 404; more than one is a consistency violation and answers 500.
// @Tags         mood
// @Produce      json
// @Param        username query string true "Username"
// @Success      200 {object} Mood
// @Failure      404 {object} httputil.ErrorResponse "No active mood"
// @Failure      500 {object} httputil.ErrorResponse "More than one active mood"
// @Router       /mood/get [get]
func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	username := r.URL.Query().Get("username")
	if username == "" {
		httputil.RespondErrorWithCode(w, "username is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	m, err := h.service.Active(r.Context(), username)
	if err != nil {
		logger.Warn("active mood read failed", "username", username, "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, m, http.StatusOK)
}

// GetHistory handles mood history reads
// @Summary      Get all moods
// @Description  Return the active mood plus the inactive history. Fails if the user has no well-defined active mood.
// @Tags         mood
// @Produce      json
// @Param        username query string true "Username"
// @Success      200 {object} History
// @Failure      404 {object} httputil.ErrorResponse "No active mood"
// @Router       /moods/get [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	username := r.URL.Query().Get("username")
	if username == "" {
		httputil.RespondErrorWithCode(w, "username is required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	history, err := h.service.History(r.Context(), username)
	if err != nil {
		logger.Warn("mood history read failed", "username", username, "error", err.Error())
		httputil.RespondFault(w, err)
		return
	}

	httputil.RespondJSON(w, history, http.StatusOK)
}
