// internal/app/system/workers/panelreaper.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// IdleCloser closes panels that have been idle for at least a threshold
// and reports how many it closed. *systemusers.Registry implements it.
type IdleCloser interface {
	CloseIdle(threshold time.Duration) int
}

// PanelReaper is a background worker that closes abandoned panels, which
// stops their debounce timers and cancels any fetch still in flight.
type PanelReaper struct {
	panels        IdleCloser
	log           *zap.Logger
	interval      time.Duration
	idleThreshold time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewPanelReaper creates a new panel reaper.
//
// Parameters:
//   - panels: the panel registry
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
//   - idleThreshold: how long a panel must be unused before it is closed (e.g., 30 minutes)
func NewPanelReaper(panels IdleCloser, logger *zap.Logger, interval, idleThreshold time.Duration) *PanelReaper {
	return &PanelReaper{
		panels:        panels,
		log:           logger,
		interval:      interval,
		idleThreshold: idleThreshold,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *PanelReaper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("panel reaper started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_threshold", w.idleThreshold))
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call more than once.
func (w *PanelReaper) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("panel reaper stopped")
	})
}

func (w *PanelReaper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *PanelReaper) sweep() {
	if n := w.panels.CloseIdle(w.idleThreshold); n > 0 {
		w.log.Info("closed idle panels", zap.Int("count", n))
	}
}
