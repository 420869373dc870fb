// internal/app/features/systemusers/routes.go
package systemusers

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the panel routes under the path where this router is
// mounted (typically "/system-users" from bootstrap).
//
// Example mount from bootstrap:
//
//	h := systemusers.NewHandler(reg, profiles, logger)
//	r.Mount("/system-users", systemusers.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/teams", h.ServeTeams)
	r.Get("/profiles/{id}", h.ServeProfile)

	r.Post("/panels", h.HandleCreate)
	r.Route("/panels/{id}", func(pr chi.Router) {
		pr.Get("/", h.ServeState)
		pr.Delete("/", h.HandleClose)

		pr.Post("/team", h.HandleTeam)
		pr.Post("/status", h.HandleStatus)
		pr.Post("/search", h.HandleSearch)
		pr.Post("/next", h.HandleNext)
		pr.Post("/prev", h.HandlePrev)
	})

	return r
}
