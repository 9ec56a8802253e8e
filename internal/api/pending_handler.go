// internal/api/pending_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/pending"
)

// PendingHandler handles HTTP requests for the moderation queue.
type PendingHandler struct {
	pending *pending.Engine
}

// NewPendingHandler creates a new moderation queue handler.
func NewPendingHandler(engine *pending.Engine) *PendingHandler {
	return &PendingHandler{pending: engine}
}

// Routes returns the routes for the moderation queue.
func (h *PendingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/city/{cityID}", h.ListPending)
	r.Post("/{requestID}/judge", h.Judge)

	return r
}

// ListPending returns a city's moderation queue. Staff only.
func (h *PendingHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.pending.ListPending(r.Context(), actor(r), chi.URLParam(r, "cityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// JudgeRequest is the request body for judging a moderation request.
type JudgeRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason,omitempty"`
}

// Judge applies a verdict to a moderation request.
func (h *PendingHandler) Judge(w http.ResponseWriter, r *http.Request) {
	var req JudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.pending.Judge(r.Context(), actor(r), chi.URLParam(r, "requestID"), req.Accept, req.Reason); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
