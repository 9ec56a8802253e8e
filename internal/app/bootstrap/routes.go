// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/api"
	"github.com/synkteam/municipath/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed, so the engine stack built in Startup is
// available here.
//
// MuniciPath is a JSON API service: the router is a health endpoint for
// orchestrators plus the /api tree with one subrouter per content family.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", api.NewHealthHandler(deps.MongoClient, logger).Routes())

	r.Route("/api", func(r chi.Router) {
		if appCfg.RateLimitRequests > 0 {
			limiter := ratelimit.New(appCfg.RateLimitRequests, appCfg.RateLimitWindow)
			r.Use(ratelimit.Middleware(limiter, api.ActorHeader))
		}
		r.Mount("/", api.Routes(appStack.engines))
	})

	return r, nil
}
