// internal/api/contest_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/contest"
)

// ContestHandler handles HTTP requests for the contest sub-workflow.
type ContestHandler struct {
	contest *contest.Engine
}

// NewContestHandler creates a new contest handler.
func NewContestHandler(engine *contest.Engine) *ContestHandler {
	return &ContestHandler{contest: engine}
}

// Routes returns the routes for contests. The contest id is the id of
// the underlying contest post.
func (h *ContestHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{contestID}/contributions", h.AddContribution)
	r.Get("/{contestID}/contributions", h.ListContributions)
	r.Post("/{contestID}/winner", h.DeclareWinner)

	return r
}

// ContributionRequest is the request body for entering a contest.
type ContributionRequest struct {
	Content []string `json:"content"`
}

// AddContribution records a participant's entry.
func (h *ContestHandler) AddContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	contribution, err := h.contest.AddContribution(r.Context(), actor(r), chi.URLParam(r, "contestID"), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, contribution)
}

// ListContributions lists a contest's entries. Contest author only.
func (h *ContestHandler) ListContributions(w http.ResponseWriter, r *http.Request) {
	list, err := h.contest.Contributions(r.Context(), actor(r), chi.URLParam(r, "contestID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// DeclareWinnerRequest is the request body for closing a contest.
type DeclareWinnerRequest struct {
	ContributionID string `json:"contribution_id"`
}

// DeclareWinner closes a contest and rewrites its post as the winner
// announcement.
func (h *ContestHandler) DeclareWinner(w http.ResponseWriter, r *http.Request) {
	var req DeclareWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.contest.DeclareWinner(r.Context(), actor(r), chi.URLParam(r, "contestID"), req.ContributionID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
