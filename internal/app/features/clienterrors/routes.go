// internal/app/features/clienterrors/routes.go
package clienterrors

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the client error log under the path where this router is
// mounted (typically "/client-errors" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
