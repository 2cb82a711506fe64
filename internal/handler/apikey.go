package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"itumy-key-api/internal/model"
	"itumy-key-api/internal/repository"
	"itumy-key-api/internal/service"
	"itumy-key-api/pkg/response"
)

// APIKeyHandler handles key validation, the hot path for downstream
// services gating access on a presented key.
type APIKeyHandler struct {
	keys *service.KeyService
}

// NewAPIKeyHandler creates a new API key handler.
func NewAPIKeyHandler(keys *service.KeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

// CheckAPIRequest is the body for POST /checkapi.
type CheckAPIRequest struct {
	APIKey string `json:"apiKey"`
}

// CheckAPIResponse is the verdict body for POST /checkapi.
type CheckAPIResponse struct {
	Success bool          `json:"success"`
	Valid   bool          `json:"valid"`
	Message string        `json:"message"`
	Data    *CheckAPIData `json:"data,omitempty"`
}

// CheckAPIData describes a valid key and (when owned) its user.
type CheckAPIData struct {
	ID        int64           `json:"id"`
	APIKey    string          `json:"apiKey"`
	OutOfDate time.Time       `json:"out_of_date"`
	Status    string          `json:"status"`
	User      *model.KeyOwner `json:"user"`
}

// CheckAPI handles POST /checkapi
func (h *APIKeyHandler) CheckAPI(w http.ResponseWriter, r *http.Request) {
	var req CheckAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, CheckAPIResponse{
			Success: false,
			Valid:   false,
			Message: "invalid request body",
		})
		return
	}
	defer r.Body.Close()

	if req.APIKey == "" {
		response.JSON(w, http.StatusBadRequest, CheckAPIResponse{
			Success: false,
			Valid:   false,
			Message: "API key must not be empty",
		})
		return
	}

	result, err := h.keys.Validate(r.Context(), req.APIKey)
	if err != nil {
		// A missing key and an inactive key are deliberately the same
		// response: the verdict never leaks which keys exist.
		if errors.Is(err, repository.ErrNotFound) {
			response.JSON(w, http.StatusUnauthorized, CheckAPIResponse{
				Success: false,
				Valid:   false,
				Message: "API key invalid or inactive",
			})
			return
		}
		response.JSON(w, http.StatusInternalServerError, CheckAPIResponse{
			Success: false,
			Valid:   false,
			Message: "failed to validate API key",
		})
		return
	}

	status := model.StatusInactive
	if result.IsActive {
		status = model.StatusActive
	}

	response.OK(w, CheckAPIResponse{
		Success: true,
		Valid:   true,
		Message: "API key valid",
		Data: &CheckAPIData{
			ID:        result.KeyID,
			APIKey:    result.Key,
			OutOfDate: result.OutOfDate,
			Status:    status,
			User:      result.Owner,
		},
	})
}
