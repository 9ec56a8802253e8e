// internal/api/respond.go
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/synkteam/municipath/internal/app/content/errs"
)

// ActorHeader carries the authenticated username. The API trusts the
// deployment's front door to have verified it; an absent header is an
// anonymous visitor.
const ActorHeader = "X-Auth-User"

func actor(r *http.Request) string {
	return r.Header.Get(ActorHeader)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusOf maps the engine error taxonomy to HTTP statuses. Anything
// outside the taxonomy is a storage or programming fault.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrMissingField),
		errors.Is(err, errs.ErrInvalidTiming),
		errors.Is(err, errs.ErrMalformedID),
		errors.Is(err, errs.ErrDanglingReference):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDuplicate),
		errors.Is(err, errs.ErrNotYetEnded):
		return http.StatusConflict
	case errors.Is(err, errs.ErrExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Storage details stay in the logs.
		msg = "internal error"
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
