package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"astrowatch/internal/models"
	"astrowatch/internal/notify"
	"astrowatch/internal/risk"
)

func upcomingObject(refID string, score int) models.NEOObject {
	return models.NEOObject{
		ID:                uuid.New(),
		NeoReferenceID:    refID,
		Name:              "(2024 XT) " + refID,
		DiameterMaxM:      500,
		MissDistanceLunar: 10,
		VelocityKmS:       20,
		RiskScore:         score,
		RiskCategory:      risk.CategoryFor(score),
		CloseApproachAt:   time.Now().UTC().Add(12 * time.Hour),
	}
}

func alertUser(watched ...string) models.User {
	return models.User{
		ID:               uuid.New(),
		AlertsEnabled:    true,
		MinDiameterM:     0,
		MaxDistanceLunar: 50,
		RiskThreshold:    1,
		WatchedObjects:   datatypes.JSONSlice[string](watched),
	}
}

func TestSweepDedupWithinWindow(t *testing.T) {
	obj := upcomingObject("3542519", 82)
	u := alertUser("3542519")

	alerts := &fakeAlertRepo{}
	// Уже есть алерт двухчасовой давности по этой паре (user, object)
	alerts.alerts = append(alerts.alerts, models.Alert{
		UserID:         u.ID,
		NeoReferenceID: obj.NeoReferenceID,
		Type:           models.AlertTypeCloseApproach,
		CreatedAt:      time.Now().UTC().Add(-2 * time.Hour),
	})

	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}
	gateway := &fakeGateway{}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{u}}, neos, gateway)

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Deduped)
	assert.Len(t, alerts.alerts, 1, "no new record inside the dedup window")
	assert.Empty(t, gateway.byEvent(notify.EventCloseApproach))
}

func TestSweepDedupExpiredWindow(t *testing.T) {
	obj := upcomingObject("3542519", 82)
	u := alertUser("3542519")

	alerts := &fakeAlertRepo{}
	// Прошлый алерт старше окна дедупликации
	alerts.alerts = append(alerts.alerts, models.Alert{
		UserID:         u.ID,
		NeoReferenceID: obj.NeoReferenceID,
		Type:           models.AlertTypeCloseApproach,
		CreatedAt:      time.Now().UTC().Add(-25 * time.Hour),
	})

	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}
	gateway := &fakeGateway{}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{u}}, neos, gateway)

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 0, stats.Deduped)
	assert.Len(t, alerts.alerts, 2, "exactly one new record once the window expired")
}

func TestSweepWatcherBelowPersonalThreshold(t *testing.T) {
	// Пользователь следит за объектом, но его личный порог выше балла
	obj := upcomingObject("2153306", 40)
	u := alertUser("2153306")
	u.RiskThreshold = 60

	alerts := &fakeAlertRepo{}
	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}
	gateway := &fakeGateway{}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{u}}, neos, gateway)

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Matched)
	assert.Empty(t, alerts.alerts)
	assert.Empty(t, gateway.events)
}

func TestSweepThresholdMatcher(t *testing.T) {
	// Не следящий пользователь с порогом 50 получает ровно один алерт
	// по объекту с баллом 82
	obj := upcomingObject("3542519", 82)
	u := alertUser()
	u.RiskThreshold = 50

	alerts := &fakeAlertRepo{}
	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}
	gateway := &fakeGateway{}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{u}}, neos, gateway)

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Created)
	require.Len(t, alerts.alerts, 1)

	created := alerts.alerts[0]
	assert.Equal(t, models.AlertTypeCloseApproach, created.Type)
	assert.Equal(t, risk.SeverityDanger, created.Severity)
	assert.Equal(t, u.ID, created.UserID)

	events := gateway.byEvent(notify.EventCloseApproach)
	require.Len(t, events, 1)
	assert.Equal(t, notify.UserChannel(u.ID.String()), events[0].Channel)
}

func TestSweepThresholdSetRequiresScore50(t *testing.T) {
	// Балл ниже 50: пороговая выборка не работает, watchers продолжают получать
	obj := upcomingObject("2153306", 45)
	watcher := alertUser("2153306")
	watcher.RiskThreshold = 40
	bystander := alertUser()
	bystander.RiskThreshold = 40

	alerts := &fakeAlertRepo{}
	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{watcher, bystander}}, neos, &fakeGateway{})

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	require.Equal(t, 1, stats.Created)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, watcher.ID, alerts.alerts[0].UserID)
}

func TestSweepDisabledProfilesExcluded(t *testing.T) {
	obj := upcomingObject("3542519", 82)
	u := alertUser("3542519")
	u.AlertsEnabled = false

	alerts := &fakeAlertRepo{}
	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{u}}, neos, &fakeGateway{})

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Matched)
	assert.Empty(t, alerts.alerts)
}

func TestSweepRecipientFailureDoesNotAbort(t *testing.T) {
	obj := upcomingObject("3542519", 82)
	broken := alertUser("3542519")
	healthy := alertUser("3542519")

	alerts := &fakeAlertRepo{
		createErr: map[uuid.UUID]error{broken.ID: errors.New("store unavailable")},
	}
	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{broken, healthy}}, neos, &fakeGateway{})

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Created)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, healthy.ID, alerts.alerts[0].UserID)
}

func TestSweepPersonalFilterOnDistanceAndDiameter(t *testing.T) {
	obj := upcomingObject("3542519", 82)
	obj.MissDistanceLunar = 30
	obj.DiameterMaxM = 100

	tooFar := alertUser("3542519")
	tooFar.MaxDistanceLunar = 20
	tooSmall := alertUser("3542519")
	tooSmall.MinDiameterM = 200

	alerts := &fakeAlertRepo{}
	neos := newFakeNEORepo()
	neos.upcoming = []models.NEOObject{obj}

	svc := NewAlertService(alerts, &fakeUserRepo{users: []models.User{tooFar, tooSmall}}, neos, &fakeGateway{})

	stats, err := svc.SweepCloseApproaches(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Matched)
	assert.Empty(t, alerts.alerts)
}
