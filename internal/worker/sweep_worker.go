package worker

import (
	"context"
	"log"
	"time"

	"astrowatch/internal/service"
)

// SweepWorker перезапускает рассылку без перефетча: ловит сближения,
// въехавшие в окно после последнего фетча.
type SweepWorker struct {
	alerts    service.AlertService
	interval  time.Duration
	lookahead time.Duration
	stopChan  chan struct{}
	running   bool
}

func NewSweepWorker(alerts service.AlertService, interval, lookahead time.Duration) *SweepWorker {
	return &SweepWorker{
		alerts:    alerts,
		interval:  interval,
		lookahead: lookahead,
		stopChan:  make(chan struct{}),
	}
}

func (w *SweepWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Sweep Worker started with interval %v, lookahead %v", w.interval, w.lookahead)

	go w.run()
}

func (w *SweepWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Sweep Worker stopped")
}

func (w *SweepWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopChan:
			return
		}
	}
}

func (w *SweepWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := w.alerts.SweepCloseApproaches(ctx, w.lookahead); err != nil {
		log.Printf("Sweep Worker error: %v", err)
	}
}
