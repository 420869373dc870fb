// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/adminusers/internal/app/clients/profileapi"
	"github.com/dalemusser/adminusers/internal/app/features/systemusers"
	"github.com/dalemusser/adminusers/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// ProfileAPI is the remote profile service client.
	ProfileAPI *profileapi.Client

	// Runtime is filled in by Startup. Hooks receive DBDeps by value, so
	// the pointer is what lets BuildHandler and Shutdown see it.
	Runtime *Runtime
}

// Runtime holds the long-lived services created at startup.
type Runtime struct {
	Panels  *systemusers.Registry
	Reaper  *workers.PanelReaper
	Metrics *prometheus.Registry
}
