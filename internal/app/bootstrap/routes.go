// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	clienterrorsfeature "github.com/dalemusser/adminusers/internal/app/features/clienterrors"
	healthfeature "github.com/dalemusser/adminusers/internal/app/features/health"
	systemusersfeature "github.com/dalemusser/adminusers/internal/app/features/systemusers"
	"github.com/dalemusser/adminusers/internal/app/store/clienterrors"
	profilestore "github.com/dalemusser/adminusers/internal/app/store/profiles"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, schema setup and
// Startup have completed. It mounts:
//   - /health: MongoDB ping, open panel count and profile cache size
//   - /metrics: Prometheus metrics from the Startup registry
//   - /system-users: the System Users panel endpoints
//   - /client-errors: the client error log the panels write to
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.Panels == nil {
		return nil, errors.New("build handler: Startup has not run")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	profiles := profilestore.New(deps.MongoDatabase)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, rt.Panels, profiles, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(rt.Metrics, promhttp.HandlerOpts{}))

	sysUsersHandler := systemusersfeature.NewHandler(rt.Panels, profiles, logger)
	r.Mount("/system-users", systemusersfeature.Routes(sysUsersHandler))

	clientErrorsHandler := clienterrorsfeature.NewHandler(clienterrors.New(deps.MongoDatabase), logger)
	r.Mount("/client-errors", clienterrorsfeature.Routes(clientErrorsHandler))

	return r, nil
}
