package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"astrowatch/internal/metrics"
	"astrowatch/internal/models"
	"astrowatch/internal/notify"
	"astrowatch/internal/repository"
	"astrowatch/internal/risk"
)

const (
	// Порог, начиная с которого объект предлагается пользователям,
	// не следящим за ним явно
	thresholdMatchMinScore = 50

	// Окно дедупликации повторных алертов по паре (user, object)
	dedupWindow = 24 * time.Hour
)

// SweepStats - итог одного прохода рассылки.
type SweepStats struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	Created int `json:"created"`
	Deduped int `json:"deduped"`
	Errors  int `json:"errors"`
}

type AlertService interface {
	SweepCloseApproaches(ctx context.Context, lookahead time.Duration) (SweepStats, error)
	ListUserAlerts(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Alert, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type alertService struct {
	alerts  repository.AlertRepository
	users   repository.UserRepository
	neos    repository.NEORepository
	gateway notify.Gateway
}

func NewAlertService(
	alerts repository.AlertRepository,
	users repository.UserRepository,
	neos repository.NEORepository,
	gateway notify.Gateway,
) AlertService {
	return &alertService{
		alerts:  alerts,
		users:   users,
		neos:    neos,
		gateway: gateway,
	}
}

// SweepCloseApproaches сканирует объекты со сближением в окне
// [now, now+lookahead] и рассылает алерты подходящим получателям.
// Сбой по одному получателю логируется и не прерывает остальных.
func (s *alertService) SweepCloseApproaches(ctx context.Context, lookahead time.Duration) (SweepStats, error) {
	var stats SweepStats
	now := time.Now().UTC()

	objects, err := s.neos.FindUpcoming(ctx, now, now.Add(lookahead), 0)
	if err != nil {
		return stats, fmt.Errorf("failed to scan upcoming objects: %w", err)
	}

	users, err := s.users.ListAlertEnabled(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load alert profiles: %w", err)
	}

	log.Printf("Alert sweep: %d objects in window, %d enabled profiles", len(objects), len(users))

	for i := range objects {
		obj := &objects[i]
		stats.Scanned++

		for j := range users {
			u := &users[j]
			if !qualifies(obj, u) {
				continue
			}
			stats.Matched++

			created, err := s.dispatch(ctx, obj, u, now)
			if err != nil {
				log.Printf("Alert sweep: failed for user %s object %s: %v",
					u.ID, obj.NeoReferenceID, err)
				stats.Errors++
				metrics.AlertErrorsTotal.Inc()
				continue
			}
			if created {
				stats.Created++
			} else {
				stats.Deduped++
				metrics.AlertsDedupedTotal.Inc()
			}
		}
	}

	log.Printf("Alert sweep complete: scanned=%d matched=%d created=%d deduped=%d errors=%d",
		stats.Scanned, stats.Matched, stats.Created, stats.Deduped, stats.Errors)
	return stats, nil
}

// qualifies объединяет два множества кандидатов: watchers и пользователей,
// чей порог покрывает балл объекта (только при score >= 50). Персональный
// фильтр обязателен для обоих: watchers не проходят пороговую выборку.
func qualifies(obj *models.NEOObject, u *models.User) bool {
	watching := u.IsWatching(obj.NeoReferenceID)

	if !watching {
		if obj.RiskScore < thresholdMatchMinScore || u.RiskThreshold > obj.RiskScore {
			return false
		}
	}

	return obj.DiameterMaxM >= u.MinDiameterM &&
		obj.MissDistanceLunar <= u.MaxDistanceLunar &&
		obj.RiskScore >= u.RiskThreshold
}

// dispatch создает AlertRecord и пушит его в персональный канал, если
// окно дедупликации пустое. Возвращает false без ошибки при дедупликации.
func (s *alertService) dispatch(ctx context.Context, obj *models.NEOObject, u *models.User, now time.Time) (bool, error) {
	exists, err := s.alerts.ExistsRecent(ctx, u.ID, obj.NeoReferenceID,
		models.AlertTypeCloseApproach, now.Add(-dedupWindow))
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return false, nil
	}

	alert := &models.Alert{
		ID:             uuid.New(),
		UserID:         u.ID,
		NeoReferenceID: obj.NeoReferenceID,
		ObjectName:     obj.Name,
		Type:           models.AlertTypeCloseApproach,
		Severity:       risk.SeverityFor(obj.RiskScore),
		Title:          fmt.Sprintf("Close approach: %s", obj.Name),
		Message: fmt.Sprintf("%s passes within %.1f LD on %s (risk %d/100, %s)",
			obj.Name, obj.MissDistanceLunar, obj.CloseApproachAt.Format("2006-01-02"),
			obj.RiskScore, obj.RiskCategory),
		EventAt: obj.CloseApproachAt,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return false, fmt.Errorf("create alert: %w", err)
	}
	metrics.AlertsCreatedTotal.Inc()

	s.gateway.Publish(notify.UserChannel(u.ID.String()), notify.EventCloseApproach, map[string]interface{}{
		"alertId":  alert.ID.String(),
		"type":     alert.Type,
		"severity": alert.Severity,
		"title":    alert.Title,
		"message":  alert.Message,
		"object": map[string]interface{}{
			"id":                obj.NeoReferenceID,
			"name":              obj.Name,
			"score":             obj.RiskScore,
			"category":          obj.RiskCategory,
			"missDistanceLunar": obj.MissDistanceLunar,
			"closeApproachDate": obj.CloseApproachAt.Format(time.RFC3339),
		},
		"timestamp": now.Format(time.RFC3339),
	})

	return true, nil
}

func (s *alertService) ListUserAlerts(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Alert, error) {
	return s.alerts.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *alertService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.alerts.MarkRead(ctx, id)
}

func (s *alertService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.alerts.MarkAllRead(ctx, userID)
}

func (s *alertService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.alerts.CountUnread(ctx, userID)
}
