// internal/app/system/errorlog/logger.go
package errorlog

import (
	"context"
	"errors"

	"github.com/dalemusser/adminusers/internal/app/clients/profileapi"
	"github.com/dalemusser/adminusers/internal/app/store/clienterrors"
	"go.uber.org/zap"
)

// Logging destinations.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Detail keys with a dedicated field on the stored event.
const (
	DetailOp      = "op"
	DetailPanelID = "panel_id"
)

// Logger records failed remote operations reported by admin panels.
// It logs to MongoDB (via clienterrors.Store) and structured logs (via zap).
type Logger struct {
	store  *clienterrors.Store
	zapLog *zap.Logger
	mode   string
	source string
}

// New creates a Logger. An unknown mode behaves like ModeAll. A nil store
// downgrades ModeAll and ModeDB to zap only.
func New(store *clienterrors.Store, zapLog *zap.Logger, mode string) *Logger {
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
	default:
		mode = ModeAll
	}
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		mode:   mode,
		source: clienterrors.SourceSystemUsers,
	}
}

// LogError records err. If the logger is nil, this is a no-op (allows
// tests to use a nil error logger).
func (l *Logger) LogError(ctx context.Context, err error, details map[string]string) {
	if l == nil || err == nil || l.mode == ModeOff {
		return
	}

	event := clienterrors.Event{
		Source:  l.source,
		Op:      details[DetailOp],
		PanelID: details[DetailPanelID],
		Message: err.Error(),
	}
	var apiErr *profileapi.APIError
	if errors.As(err, &apiErr) {
		event.StatusCode = apiErr.StatusCode
	}
	for k, v := range details {
		if k == DetailOp || k == DetailPanelID {
			continue
		}
		if event.Details == nil {
			event.Details = make(map[string]string)
		}
		event.Details[k] = v
	}

	if l.mode == ModeAll || l.mode == ModeLog || l.store == nil {
		l.logToZap(event)
	}

	if (l.mode == ModeAll || l.mode == ModeDB) && l.store != nil {
		if serr := l.store.Log(ctx, event); serr != nil {
			l.zapLog.Error("failed to store client error",
				zap.Error(serr),
				zap.String("op", event.Op),
			)
		}
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event clienterrors.Event) {
	fields := []zap.Field{
		zap.String("source", event.Source),
		zap.String("op", event.Op),
		zap.String("error", event.Message),
	}
	if event.PanelID != "" {
		fields = append(fields, zap.String("panel_id", event.PanelID))
	}
	if event.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", event.StatusCode))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	l.zapLog.Warn("client error", fields...)
}
