package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"astrowatch/internal/clients"
	"astrowatch/internal/models"
	"astrowatch/internal/notify"
	"astrowatch/internal/repository"
)

// -------- test fakes --------

type fakeGateway struct {
	mu     sync.Mutex
	events []notify.Event
}

func (g *fakeGateway) Publish(channel, event string, payload map[string]interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, notify.Event{Channel: channel, Event: event, Payload: payload})
}

func (g *fakeGateway) Close() error { return nil }

func (g *fakeGateway) byEvent(event string) []notify.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []notify.Event
	for _, ev := range g.events {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

type fakeNEORepo struct {
	repository.NEORepository

	mu        sync.Mutex
	objects   map[string]models.NEOObject
	upcoming  []models.NEOObject
	upsertErr map[string]error
	deleted   int64
}

func newFakeNEORepo() *fakeNEORepo {
	return &fakeNEORepo{objects: make(map[string]models.NEOObject)}
}

func (f *fakeNEORepo) Upsert(ctx context.Context, obj *models.NEOObject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErr[obj.NeoReferenceID]; err != nil {
		return err
	}
	if existing, ok := f.objects[obj.NeoReferenceID]; ok {
		obj.ID = existing.ID
		obj.CreatedAt = existing.CreatedAt
	} else {
		obj.ID = uuid.New()
		obj.CreatedAt = time.Now().UTC()
	}
	f.objects[obj.NeoReferenceID] = *obj
	return nil
}

func (f *fakeNEORepo) FindUpcoming(ctx context.Context, from, until time.Time, limit int) ([]models.NEOObject, error) {
	return f.upcoming, nil
}

func (f *fakeNEORepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.deleted, nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users []models.User
}

func (f *fakeUserRepo) ListAlertEnabled(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.AlertsEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeAlertRepo struct {
	repository.AlertRepository

	mu        sync.Mutex
	alerts    []models.Alert
	createErr map[uuid.UUID]error // по UserID
}

func (f *fakeAlertRepo) Create(ctx context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[alert.UserID]; err != nil {
		return err
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlertRepo) ExistsRecent(ctx context.Context, userID uuid.UUID, refID, alertType string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.UserID == userID && a.NeoReferenceID == refID && a.Type == alertType && !a.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeFeedClient struct {
	objects []clients.FeedObject
	err     error
	calls   int
}

func (f *fakeFeedClient) FetchFeed(ctx context.Context, start, end time.Time) ([]clients.FeedObject, error) {
	f.calls++
	return f.objects, f.err
}

type fakeCacheRepo struct {
	repository.CacheRepository
}

func (f *fakeCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (f *fakeCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return nil
}
