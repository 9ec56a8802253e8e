// internal/api/users_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/users"
	"github.com/synkteam/municipath/internal/domain/models"
)

// UserHandler handles HTTP requests for accounts, roles, follows and the
// notification inbox.
type UserHandler struct {
	users *users.Engine
}

// NewUserHandler creates a new user handler.
func NewUserHandler(engine *users.Engine) *UserHandler {
	return &UserHandler{users: engine}
}

// Routes returns the routes for users.
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/password", h.ChangePassword)
	r.Post("/follow", h.Follow)
	r.Post("/roles", h.SetRole)
	r.Get("/inbox", h.Inbox)
	r.Post("/inbox/{notificationID}/read", h.MarkRead)
	r.Get("/{username}", h.GetUser)
	r.Delete("/{username}", h.DeleteUser)
	r.Post("/{username}/validate", h.ValidateUser)
	r.Post("/{username}/manager", h.SetManager)

	return r
}

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an unvalidated account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// LoginRequest is the request body for verifying credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies a username/password pair and returns the account.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	user, err := h.users.CheckCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

// ChangePasswordRequest is the request body for replacing a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword replaces the caller's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.users.ChangePassword(r.Context(), actor(r), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUser returns an account by username.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, user)
}

// DeleteUser removes an account. Users delete themselves; managers
// delete anyone.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), actor(r), chi.URLParam(r, "username")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateUser marks an account as a real person. Manager only.
func (h *UserHandler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Validate(r.Context(), actor(r), chi.URLParam(r, "username")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetManagerRequest is the request body for granting or revoking
// platform administration.
type SetManagerRequest struct {
	Manager bool `json:"manager"`
}

// SetManager grants or revokes platform administration. Manager only.
func (h *UserHandler) SetManager(w http.ResponseWriter, r *http.Request) {
	var req SetManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.users.SetManager(r.Context(), actor(r), chi.URLParam(r, "username"), req.Manager); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetRoleRequest is the request body for assigning a city-scoped role.
type SetRoleRequest struct {
	CityID   string      `json:"city_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// SetRole assigns a city-scoped role. Curator only.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.users.SetRole(r.Context(), actor(r), req.CityID, req.Username, req.Role); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FollowRequest is the request body for following or unfollowing a city.
type FollowRequest struct {
	CityID string `json:"city_id"`
	Follow bool   `json:"follow"`
}

// Follow subscribes or unsubscribes the caller to a city's publications.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.users.Follow(r.Context(), actor(r), req.CityID, req.Follow); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Inbox lists the caller's notifications, newest first.
func (h *UserHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.Inbox(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// MarkRead flags one inbox entry as read.
func (h *UserHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.users.MarkRead(r.Context(), actor(r), chi.URLParam(r, "notificationID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
