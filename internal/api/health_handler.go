// internal/api/health_handler.go
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/system/timeouts"
)

// HealthHandler reports service liveness for load balancers and
// orchestrators.
type HealthHandler struct {
	client *mongo.Client
	log    *zap.Logger
}

func NewHealthHandler(client *mongo.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{client: client, log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Routes returns the subrouter mounted under /health.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}

// Serve handles GET /health.
//
// On success: 200 and {"status":"ok","database":"connected"}.
// On DB failure: 503 with the ping error included.
func (h *HealthHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if h.client != nil {
		if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
			h.log.Error("health-check: mongo ping failed", zap.Error(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, healthResponse{
				Status:   "error",
				Database: "disconnected",
				Message:  "Database unavailable",
				Error:    err.Error(),
			})
			return
		}
	}

	render.JSON(w, r, healthResponse{Status: "ok", Database: "connected"})
}
