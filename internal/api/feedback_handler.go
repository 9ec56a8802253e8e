// internal/api/feedback_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/feedback"
	"github.com/synkteam/municipath/internal/app/content/saved"
)

// FeedbackHandler handles HTTP requests for feedback scores and saved
// content lists.
type FeedbackHandler struct {
	feedback *feedback.Engine
	saved    *saved.Engine
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(feedbackEngine *feedback.Engine, savedEngine *saved.Engine) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedbackEngine, saved: savedEngine}
}

// Routes returns the routes for feedback. Content ids address posts and
// groups alike.
func (h *FeedbackHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Put("/{contentID}/score", h.Rate)
	r.Get("/{contentID}/score", h.GetScore)

	return r
}

// SavedRoutes returns the routes for saved content.
func (h *FeedbackHandler) SavedRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListSaved)
	r.Put("/{contentID}", h.SaveContent)
	r.Delete("/{contentID}", h.UnsaveContent)
	r.Get("/{contentID}/participants", h.ListParticipants)

	return r
}

// RateRequest is the request body for scoring a content item.
type RateRequest struct {
	Score int `json:"score"`
}

// Rate records the caller's 1-5 score for a post or group.
func (h *FeedbackHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.feedback.Rate(r.Context(), actor(r), chi.URLParam(r, "contentID"), req.Score); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetScore returns a content item's aggregated score.
func (h *FeedbackHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.feedback.ScoreOf(r.Context(), chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, score)
}

// SaveContent adds a content item to the caller's list.
func (h *FeedbackHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	if err := h.saved.Save(r.Context(), actor(r), chi.URLParam(r, "contentID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnsaveContent removes a content item from the caller's list.
func (h *FeedbackHandler) UnsaveContent(w http.ResponseWriter, r *http.Request) {
	if err := h.saved.Unsave(r.Context(), actor(r), chi.URLParam(r, "contentID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSaved lists the content ids the caller has saved.
func (h *FeedbackHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	list, err := h.saved.SavedOf(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

// ListParticipants lists the users who saved a content item. Author and
// staff only.
func (h *FeedbackHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	list, err := h.saved.Participants(r.Context(), actor(r), chi.URLParam(r, "contentID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}
