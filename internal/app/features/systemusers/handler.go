// internal/app/features/systemusers/handler.go
package systemusers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/adminusers/internal/app/system/timeouts"
	"github.com/dalemusser/adminusers/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ProfileReader reads cached profiles. *profilestore.Store implements it.
type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
}

// Handler serves the System Users panel endpoints.
type Handler struct {
	Registry *Registry
	Profiles ProfileReader
	Log      *zap.Logger

	decoder *form.Decoder
}

// NewHandler constructs a System Users handler over reg. profiles may be
// nil, in which case state responses carry ids only.
func NewHandler(reg *Registry, profiles ProfileReader, logger *zap.Logger) *Handler {
	return &Handler{
		Registry: reg,
		Profiles: profiles,
		Log:      logger,
		decoder:  form.NewDecoder(),
	}
}

// HandleCreate handles POST /panels. It opens a panel with the posted
// team and status, waits for the initial load and answers 201 with the
// panel state.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.decode(w, r)
	if !ok {
		return
	}

	p, err := h.Registry.Create(r.Context(), models.ParseTeamFilter(f.Team), models.ParseStatusFilter(f.Status))
	if err != nil {
		h.Log.Error("panel create failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not open panel")
		return
	}
	h.writeState(w, r, http.StatusCreated, p)
}

// ServeState handles GET /panels/{id}.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	p, ok := h.panel(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, http.StatusOK, p)
}

// HandleTeam handles POST /panels/{id}/team.
func (h *Handler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	h.withPanel(w, r, http.StatusOK, func(ctx context.Context, p *Panel, f panelForm) error {
		return p.ChangeTeam(ctx, models.ParseTeamFilter(f.Team))
	})
}

// HandleStatus handles POST /panels/{id}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.withPanel(w, r, http.StatusOK, func(ctx context.Context, p *Panel, f panelForm) error {
		return p.ChangeStatus(ctx, models.ParseStatusFilter(f.Status))
	})
}

// HandleSearch handles POST /panels/{id}/search. A non-empty term is
// debounced, so the answer is 202 with the search still pending.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	h.withPanel(w, r, http.StatusAccepted, func(ctx context.Context, p *Panel, f panelForm) error {
		return p.ChangeSearch(ctx, f.Term, f.Role)
	})
}

// HandleNext handles POST /panels/{id}/next.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.withPanel(w, r, http.StatusOK, func(ctx context.Context, p *Panel, f panelForm) error {
		return p.NextPage(ctx, currentPage(p, f))
	})
}

// HandlePrev handles POST /panels/{id}/prev.
func (h *Handler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	h.withPanel(w, r, http.StatusOK, func(ctx context.Context, p *Panel, f panelForm) error {
		return p.PreviousPage(ctx, currentPage(p, f))
	})
}

// HandleClose handles DELETE /panels/{id}.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if !h.Registry.Close(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, ErrPanelNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeTeams handles GET /teams.
func (h *Handler) ServeTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"teams": h.Registry.Teams()})
}

// ServeProfile handles GET /profiles/{id}: one profile from the cache the
// panels fill.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	if h.Profiles == nil {
		writeError(w, http.StatusNotFound, "profile not cached")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		writeError(w, http.StatusNotFound, "profile not cached")
		return
	}
	if err != nil {
		h.Log.Error("profile cache read failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read profile")
		return
	}
	writeJSON(w, http.StatusOK, newProfileRow(*p))
}

func currentPage(p *Panel, f panelForm) int {
	if f.Page != nil {
		return *f.Page
	}
	return p.State().Tracker.Page
}

// withPanel resolves the panel, decodes the form, runs op and answers
// with the resulting state.
func (h *Handler) withPanel(w http.ResponseWriter, r *http.Request, code int, op func(context.Context, *Panel, panelForm) error) {
	p, ok := h.panel(w, r)
	if !ok {
		return
	}
	f, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := op(r.Context(), p, f); err != nil {
		if errors.Is(err, ErrPanelClosed) {
			writeError(w, http.StatusNotFound, ErrPanelNotFound.Error())
			return
		}
		h.Log.Error("panel operation failed", zap.Error(err), zap.String("panel_id", p.ID()))
		writeError(w, http.StatusInternalServerError, "panel operation failed")
		return
	}
	h.writeState(w, r, code, p)
}

func (h *Handler) panel(w http.ResponseWriter, r *http.Request) (*Panel, bool) {
	p, err := h.Registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return p, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (panelForm, bool) {
	var f panelForm
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad form data")
		return f, false
	}
	if err := h.decoder.Decode(&f, r.Form); err != nil {
		writeError(w, http.StatusBadRequest, "bad form data")
		return f, false
	}
	return f, true
}

// writeState renders the panel state with the displayed profiles read
// from the profile cache. A cache failure degrades to ids only.
func (h *Handler) writeState(w http.ResponseWriter, r *http.Request, code int, p *Panel) {
	s := p.State()

	var profiles []models.Profile
	if h.Profiles != nil && len(s.ResultIDs) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		var err error
		profiles, err = h.Profiles.GetByIDs(ctx, s.ResultIDs)
		if err != nil {
			h.Log.Warn("profile cache read failed", zap.Error(err), zap.String("panel_id", p.ID()))
			profiles = nil
		}
	}

	writeJSON(w, code, newStateView(p, s, profiles))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
