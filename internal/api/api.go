// internal/api/api.go

// Package api is the thin JSON surface over the content engines. Routing
// is chi, responses go through render, and every engine error is mapped
// onto the HTTP status taxonomy in respond.go. Authentication happens
// upstream; handlers read the caller from the actor header.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/synkteam/municipath/internal/app/content/lifecycle"
)

// Routes mounts the per-family handlers and returns the API router.
func Routes(e lifecycle.Engines) chi.Router {
	r := chi.NewRouter()

	posts := NewPostHandler(e.Posts)
	feedback := NewFeedbackHandler(e.Feedback, e.Saved)

	r.Mount("/cities", NewCityHandler(e.Cities).Routes())
	r.Mount("/posts", posts.Routes())
	r.Mount("/points", posts.PointRoutes())
	r.Mount("/groups", NewGroupHandler(e.Groups).Routes())
	r.Mount("/pending", NewPendingHandler(e.Pending).Routes())
	r.Mount("/contests", NewContestHandler(e.Contest).Routes())
	r.Mount("/users", NewUserHandler(e.Users).Routes())
	r.Mount("/content", feedback.Routes())
	r.Mount("/saved", feedback.SavedRoutes())

	return r
}
