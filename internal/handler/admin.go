package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"itumy-key-api/internal/model"
	"itumy-key-api/internal/repository"
	"itumy-key-api/internal/service"
	"itumy-key-api/pkg/apierror"
	"itumy-key-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// AdminHandler handles the administrative HTTP surface.
type AdminHandler struct {
	admins *service.AdminService
	keys   *service.KeyService
	stats  *service.StatsService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admins *service.AdminService, keys *service.KeyService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{
		admins: admins,
		keys:   keys,
		stats:  stats,
	}
}

// RegisterRequest is the body for POST /admin/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the success body for POST /admin/register.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	AdminID int64  `json:"adminId"`
}

// Register handles POST /admin/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	req.Email = strings.TrimSpace(req.Email)
	if !emailRegex.MatchString(req.Email) {
		response.Error(w, apierror.BadRequest("email is invalid"))
		return
	}
	if len(req.Password) < 6 {
		response.Error(w, apierror.BadRequest("password must be at least 6 characters"))
		return
	}

	id, err := h.admins.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			response.Error(w, apierror.BadRequest("admin email already registered"))
			return
		}
		response.Error(w, apierror.InternalError("failed to register admin"))
		return
	}

	response.OK(w, RegisterResponse{
		Success: true,
		Message: "Admin registered",
		AdminID: id,
	})
}

// LoginRequest is the body for POST /admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body for POST /admin/login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	req.Email = strings.TrimSpace(req.Email)
	if !emailRegex.MatchString(req.Email) {
		response.Error(w, apierror.BadRequest("email is invalid"))
		return
	}
	if req.Password == "" {
		response.Error(w, apierror.BadRequest("password is required"))
		return
	}

	token, err := h.admins.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) || errors.Is(err, service.ErrWrongPassword) {
			response.Error(w, apierror.Unauthorized(err.Error()))
			return
		}
		response.Error(w, apierror.InternalError("failed to log in"))
		return
	}

	response.OK(w, LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}

// DashboardResponse is the body for GET /admin/dashboard.
type DashboardResponse struct {
	Success bool                `json:"success"`
	Total   int                 `json:"total"`
	Users   []model.UserWithKey `json:"users"`
}

// Dashboard handles GET /admin/dashboard. The deactivation sweep runs
// before the listing is read.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.keys.Dashboard(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load dashboard"))
		return
	}
	if users == nil {
		users = []model.UserWithKey{}
	}

	response.OK(w, DashboardResponse{
		Success: true,
		Total:   len(users),
		Users:   users,
	})
}

// DeleteUserResponse is the success body for DELETE /admin/user/{id}.
type DeleteUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteUser handles DELETE /admin/user/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid user id"))
		return
	}

	deleted, err := h.keys.DeleteUser(r.Context(), id)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to delete user"))
		return
	}
	if !deleted {
		response.Error(w, apierror.NotFound("User not found"))
		return
	}

	response.OK(w, DeleteUserResponse{
		Success: true,
		Message: "User deleted",
	})
}

// StatsResponse is the body for GET /admin/stats.
type StatsResponse struct {
	Success bool         `json:"success"`
	Data    *model.Stats `json:"data"`
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Overview(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load stats"))
		return
	}

	response.OK(w, StatsResponse{
		Success: true,
		Data:    stats,
	})
}
