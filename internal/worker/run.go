package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"astrowatch/internal/service"
)

type Mode string

const (
	ModeToday Mode = "today"
	ModeWeek  Mode = "week"
)

const manualRunTimeout = 5 * time.Minute

// Run - хэндл ручного запуска. Вызывающий получает его сразу после старта
// и может по желанию дождаться Done(); HTTP-слой не ждет.
type Run struct {
	ID        uuid.UUID
	Mode      Mode
	StartedAt time.Time

	done  chan struct{}
	err   error
	batch service.BatchStats
	sweep service.SweepStats
}

func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Err валиден только после закрытия Done().
func (r *Run) Err() error {
	return r.err
}

// Stats валидны только после закрытия Done().
func (r *Run) Stats() (service.BatchStats, service.SweepStats) {
	return r.batch, r.sweep
}

// Trigger запускает пайплайн указанного режима в фоне и немедленно
// возвращает хэндл. Перекрытие с плановым прогоном того же имени даст
// ErrRunInProgress внутри прогона, не здесь.
func (p *Pipeline) Trigger(mode Mode) (*Run, error) {
	var fn func(ctx context.Context) (service.BatchStats, service.SweepStats, error)
	switch mode {
	case ModeToday:
		fn = p.RunDaily
	case ModeWeek:
		fn = p.RunWeekly
	default:
		return nil, fmt.Errorf("unknown pipeline mode %q", mode)
	}

	r := &Run{
		ID:        uuid.New(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		done:      make(chan struct{}),
	}

	go func() {
		defer close(r.done)

		ctx, cancel := context.WithTimeout(context.Background(), manualRunTimeout)
		defer cancel()

		log.Printf("Manual %s run %s started", mode, r.ID)
		r.batch, r.sweep, r.err = fn(ctx)
		if r.err != nil {
			log.Printf("Manual %s run %s failed: %v", mode, r.ID, r.err)
			return
		}
		log.Printf("Manual %s run %s complete", mode, r.ID)
	}()

	return r, nil
}
