package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/adminusers/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// PanelCounter reports how many panels are open. *systemusers.Registry
// implements it.
type PanelCounter interface {
	Len() int
}

// ProfileCounter reports the size of the profile cache.
// *profilestore.Store implements it.
type ProfileCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client   *mongo.Client
	Panels   PanelCounter
	Profiles ProfileCounter
	Log      *zap.Logger
}

// NewHandler constructs a health Handler. panels and profiles may be nil.
func NewHandler(client *mongo.Client, panels PanelCounter, profiles ProfileCounter, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Panels:   panels,
		Profiles: profiles,
		Log:      logger,
	}
}

type healthResponse struct {
	Status         string `json:"status"`
	Database       string `json:"database"`
	Panels         *int   `json:"panels,omitempty"`
	CachedProfiles *int64 `json:"cached_profiles,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "panels":3, "cached_profiles":120 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}
	if h.Panels != nil {
		n := h.Panels.Len()
		resp.Panels = &n
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	// The cache size is informational; a failed count does not fail the check.
	if h.Profiles != nil {
		if n, err := h.Profiles.Count(ctx); err == nil {
			resp.CachedProfiles = &n
		} else {
			h.Log.Warn("health-check: profile count failed", zap.Error(err))
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
