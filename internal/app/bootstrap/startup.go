// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/adminusers/internal/app/features/systemusers"
	"github.com/dalemusser/adminusers/internal/app/store/clienterrors"
	profilestore "github.com/dalemusser/adminusers/internal/app/store/profiles"
	"github.com/dalemusser/adminusers/internal/app/system/errorlog"
	"github.com/dalemusser/adminusers/internal/app/system/panelmetrics"
	"github.com/dalemusser/adminusers/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the DB connection and schema
// setup, before the HTTP handler is built. It creates the panel registry
// over the profile API, the profile cache and the client error log, and
// starts the idle panel reaper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil {
		return errors.New("startup: DBDeps.Runtime not initialized")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	errLog := errorlog.New(clienterrors.New(deps.MongoDatabase), logger, appCfg.ErrorLog)

	panels := systemusers.NewRegistry(systemusers.Deps{
		Profiles: deps.ProfileAPI,
		Teams:    deps.ProfileAPI,
		Sink:     profilestore.New(deps.MongoDatabase),
		Errors:   errLog,
		Metrics:  panelmetrics.New(reg),
		Log:      logger,
	})

	reaper := workers.NewPanelReaper(panels, logger, appCfg.PanelReapInterval, appCfg.PanelIdleTimeout)
	reaper.Start()

	deps.Runtime.Panels = panels
	deps.Runtime.Reaper = reaper
	deps.Runtime.Metrics = reg
	return nil
}
