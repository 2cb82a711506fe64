package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"itumy-key-api/internal/model"
	"itumy-key-api/internal/service"
	"itumy-key-api/pkg/apierror"
	"itumy-key-api/pkg/response"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserHandler handles end-user registration.
type UserHandler struct {
	keys *service.KeyService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(keys *service.KeyService) *UserHandler {
	return &UserHandler{keys: keys}
}

// CreateUserRequest is the body for POST /create-user.
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// CreateUserResponse is the success body for POST /create-user.
type CreateUserResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    *model.CreatedUser `json:"data"`
}

// CreateUser handles POST /create-user
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if req.FirstName == "" {
		response.Error(w, apierror.BadRequest("firstName is required"))
		return
	}
	if req.LastName == "" {
		response.Error(w, apierror.BadRequest("lastName is required"))
		return
	}
	if !emailRegex.MatchString(req.Email) {
		response.Error(w, apierror.BadRequest("email is invalid"))
		return
	}

	created, err := h.keys.CreateUser(r.Context(), req.FirstName, req.LastName, req.Email)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to create user"))
		return
	}

	response.OK(w, CreateUserResponse{
		Success: true,
		Message: "User and API key created",
		Data:    created,
	})
}
