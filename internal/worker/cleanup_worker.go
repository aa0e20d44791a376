package worker

import (
	"context"
	"log"
	"time"

	"astrowatch/internal/service"
)

// CleanupWorker удаляет протухшие снимки. Хранилище само строки не чистит,
// поэтому TTL реализован этим фоновым проходом.
type CleanupWorker struct {
	neo      service.NEOService
	interval time.Duration
	stopChan chan struct{}
	running  bool
}

func NewCleanupWorker(neo service.NEOService, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{
		neo:      neo,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *CleanupWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Cleanup Worker started with interval %v", w.interval)

	go w.run()
}

func (w *CleanupWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Cleanup Worker stopped")
}

func (w *CleanupWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.cleanup()
		case <-w.stopChan:
			return
		}
	}
}

func (w *CleanupWorker) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := w.neo.CleanupExpired(ctx); err != nil {
		log.Printf("Cleanup Worker error: %v", err)
	}
}
