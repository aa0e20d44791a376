package worker

import (
	"context"
	"errors"
	"log"
	"time"
)

const pipelineRunTimeout = 5 * time.Minute

// PipelineWorker гоняет полный пайплайн (фетч + рассылка) на фиксированном
// интервале. Один тип обслуживает и daily, и weekly каденции.
type PipelineWorker struct {
	pipeline *Pipeline
	name     string
	interval time.Duration
	stopChan chan struct{}
	running  bool
}

func NewPipelineWorker(pipeline *Pipeline, name string, interval time.Duration) *PipelineWorker {
	return &PipelineWorker{
		pipeline: pipeline,
		name:     name,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *PipelineWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Pipeline Worker (%s) started with interval %v", w.name, w.interval)

	// Первый прогон сразу при старте
	w.runOnce()

	go w.run()
}

func (w *PipelineWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Printf("Pipeline Worker (%s) stopped", w.name)
}

func (w *PipelineWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce()
		case <-w.stopChan:
			return
		}
	}
}

func (w *PipelineWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineRunTimeout)
	defer cancel()

	var err error
	switch w.name {
	case PipelineWeekly:
		_, _, err = w.pipeline.RunWeekly(ctx)
	default:
		_, _, err = w.pipeline.RunDaily(ctx)
	}

	if err != nil && !errors.Is(err, ErrRunInProgress) {
		log.Printf("Pipeline Worker (%s) error: %v", w.name, err)
	}
}
