package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"astrowatch/internal/metrics"
	"astrowatch/internal/service"
)

const (
	PipelineDaily  = "daily"
	PipelineWeekly = "weekly"
)

var ErrRunInProgress = errors.New("pipeline run already in progress")

// Pipeline связывает ингест фида и рассылку алертов. Для каждого имени
// пайплайна одновременно выполняется не больше одного прогона; прогоны с
// разными именами не исключают друг друга - от дублей пользовательских
// эффектов там защищает только 24-часовое окно дедупликации.
type Pipeline struct {
	neo    service.NEOService
	alerts service.AlertService

	mu     sync.Mutex
	active map[string]bool
}

func NewPipeline(neo service.NEOService, alerts service.AlertService) *Pipeline {
	return &Pipeline{
		neo:    neo,
		alerts: alerts,
		active: make(map[string]bool),
	}
}

// RunDaily - окно фетча 1 день, lookahead рассылки 1 день.
func (p *Pipeline) RunDaily(ctx context.Context) (service.BatchStats, service.SweepStats, error) {
	return p.run(ctx, PipelineDaily, 1)
}

// RunWeekly - окно фетча 7 дней, lookahead рассылки 7 дней.
func (p *Pipeline) RunWeekly(ctx context.Context) (service.BatchStats, service.SweepStats, error) {
	return p.run(ctx, PipelineWeekly, 7)
}

func (p *Pipeline) run(ctx context.Context, name string, days int) (service.BatchStats, service.SweepStats, error) {
	if !p.tryAcquire(name) {
		log.Printf("Pipeline %s: skipped, previous run still in progress", name)
		return service.BatchStats{}, service.SweepStats{}, ErrRunInProgress
	}
	defer p.release(name)

	timer := prometheus.NewTimer(metrics.PipelineRunDuration.WithLabelValues(name))
	defer timer.ObserveDuration()

	start := time.Now().UTC()

	// Шаги строго последовательны: фетч и сохранение целиком до рассылки
	batch, err := p.neo.SyncFeed(ctx, start, days)
	if err != nil {
		return batch, service.SweepStats{}, err
	}

	sweep, err := p.alerts.SweepCloseApproaches(ctx, time.Duration(days)*24*time.Hour)
	return batch, sweep, err
}

func (p *Pipeline) tryAcquire(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active[name] {
		return false
	}
	p.active[name] = true
	return true
}

func (p *Pipeline) release(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, name)
}
