// internal/api/posts_handler.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/posts"
	"github.com/synkteam/municipath/internal/domain/models"
)

// PostHandler handles HTTP requests for posts and points.
type PostHandler struct {
	posts *posts.Engine
}

// NewPostHandler creates a new post handler.
func NewPostHandler(engine *posts.Engine) *PostHandler {
	return &PostHandler{posts: engine}
}

// Routes returns the routes for posts.
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreatePost)
	r.Get("/{postID}", h.ViewPost)
	r.Put("/{postID}", h.EditPost)
	r.Delete("/{postID}", h.DeletePost)

	return r
}

// PointRoutes returns the routes for the map side: points and the posts
// anchored on them.
func (h *PostHandler) PointRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/city/{cityID}", h.ListPoints)
	r.Get("/{pointID}/posts", h.ListPostsAt)

	return r
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	CityID string           `json:"city_id"`
	Pos    models.Position  `json:"pos"`
	Draft  models.PostDraft `json:"draft"`
}

// CreatePost validates a draft and stores the resulting post. Depending
// on the author's level the post is live immediately or queued for
// moderation.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	post, err := h.posts.Create(r.Context(), actor(r), req.CityID, req.Pos, req.Draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// ViewPost returns a post for the viewer, bumping the view counter and
// decorating the result with forecast, groups and score.
func (h *PostHandler) ViewPost(w http.ResponseWriter, r *http.Request) {
	view, err := h.posts.View(r.Context(), actor(r), chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// EditPost updates a post with a new draft.
func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	var draft models.PostDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	if err := h.posts.Edit(r.Context(), actor(r), chi.URLParam(r, "postID"), draft); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePost removes a post and everything that hangs off it.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), actor(r), chi.URLParam(r, "postID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPoints lists the points of a city that carry at least one post the
// viewer may see.
func (h *PostHandler) ListPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.posts.PointsOf(r.Context(), actor(r), chi.URLParam(r, "cityID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, points)
}

// ListPostsAt lists the posts of a point the viewer is allowed to see.
func (h *PostHandler) ListPostsAt(w http.ResponseWriter, r *http.Request) {
	list, err := h.posts.PostsAt(r.Context(), actor(r), chi.URLParam(r, "pointID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}
