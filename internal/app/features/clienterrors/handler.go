// internal/app/features/clienterrors/handler.go
package clienterrors

import (
	"context"

	errorstore "github.com/dalemusser/adminusers/internal/app/store/clienterrors"
	"github.com/go-playground/form/v4"
	"go.uber.org/zap"
)

// EventReader queries the client error log. *errorstore.Store implements
// it.
type EventReader interface {
	Query(ctx context.Context, filter errorstore.QueryFilter) ([]errorstore.Event, error)
	CountByFilter(ctx context.Context, filter errorstore.QueryFilter) (int64, error)
}

type Handler struct {
	Events EventReader
	Log    *zap.Logger

	decoder *form.Decoder
}

// NewHandler constructs a client error log handler over events.
func NewHandler(events EventReader, logger *zap.Logger) *Handler {
	return &Handler{
		Events:  events,
		Log:     logger,
		decoder: form.NewDecoder(),
	}
}
