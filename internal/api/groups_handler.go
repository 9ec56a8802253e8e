// internal/api/groups_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/groups"
	"github.com/synkteam/municipath/internal/domain/models"
)

// GroupHandler handles HTTP requests for groups.
type GroupHandler struct {
	groups *groups.Engine
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(engine *groups.Engine) *GroupHandler {
	return &GroupHandler{groups: engine}
}

// Routes returns the routes for groups.
func (h *GroupHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateGroup)
	r.Get("/city/{cityID}", h.ListGroups)
	r.Get("/{groupID}", h.ViewGroup)
	r.Put("/{groupID}", h.EditGroup)
	r.Delete("/{groupID}", h.DeleteGroup)

	return r
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	CityID string            `json:"city_id"`
	Draft  models.GroupDraft `json:"draft"`
}

// CreateGroup validates and stores a group.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	group, err := h.groups.Create(r.Context(), actor(r), req.CityID, req.Draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, group)
}

// ViewGroup returns a group for the viewer, decorated with its score.
func (h *GroupHandler) ViewGroup(w http.ResponseWriter, r *http.Request) {
	view, err := h.groups.View(r.Context(), actor(r), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// ListGroups lists the groups of a city the viewer may see.
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.groups.GroupsOf(r.Context(), actor(r), chi.URLParam(r, "cityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// EditGroup updates a group with a new draft.
func (h *GroupHandler) EditGroup(w http.ResponseWriter, r *http.Request) {
	var draft models.GroupDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.groups.Edit(r.Context(), actor(r), chi.URLParam(r, "groupID"), draft); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGroup removes a group; member posts are untouched.
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.Delete(r.Context(), actor(r), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
