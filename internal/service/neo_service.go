package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"astrowatch/internal/clients"
	"astrowatch/internal/metrics"
	"astrowatch/internal/models"
	"astrowatch/internal/notify"
	"astrowatch/internal/repository"
	"astrowatch/internal/risk"
)

// Снимок считается свежим 24 часа после фетча
const snapshotTTL = 24 * time.Hour

const (
	lastBatchCacheKey = "neo:last_batch"
	feedCacheTTL      = 2 * time.Hour
)

// BatchStats - итог обработки одной выборки фида.
type BatchStats struct {
	Processed int       `json:"processed"`
	Hazardous int       `json:"hazardous"`
	HighRisk  int       `json:"highRisk"`
	Errors    int       `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

type NEOService interface {
	SyncFeed(ctx context.Context, start time.Time, days int) (BatchStats, error)
	GetUpcoming(ctx context.Context, days, limit int) ([]models.NEOObject, error)
	GetByRefID(ctx context.Context, refID string) (*models.NEOObject, error)
	LastBatchStats(ctx context.Context) (BatchStats, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type neoService struct {
	repo      repository.NEORepository
	cacheRepo repository.CacheRepository
	client    clients.NEOFeedClient
	gateway   notify.Gateway
}

func NewNEOService(
	repo repository.NEORepository,
	cacheRepo repository.CacheRepository,
	client clients.NEOFeedClient,
	gateway notify.Gateway,
) NEOService {
	return &neoService{
		repo:      repo,
		cacheRepo: cacheRepo,
		client:    client,
		gateway:   gateway,
	}
}

// SyncFeed забирает окно [start, start+days-1], скорит и сохраняет каждую
// запись. Ошибка фида деградирует до пустой выборки, ошибка отдельной записи
// попадает в счетчик и не прерывает батч.
func (s *neoService) SyncFeed(ctx context.Context, start time.Time, days int) (BatchStats, error) {
	if days < 1 {
		days = 1
	}
	end := start.AddDate(0, 0, days-1)
	stats := BatchStats{Timestamp: time.Now().UTC()}

	log.Printf("NEO sync: fetching feed %s..%s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	objects, err := s.client.FetchFeed(ctx, start, end)
	if err != nil {
		log.Printf("NEO sync: feed fetch failed, treating as empty: %v", err)
		metrics.FeedFailuresTotal.Inc()
		objects = nil
	}

	if len(objects) > 0 {
		feedKey := fmt.Sprintf("neo:feed:%s:%s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
		if err := s.cacheRepo.SetJSON(ctx, feedKey, objects, feedCacheTTL); err != nil {
			log.Printf("NEO sync: failed to cache feed: %v", err)
		}
	}

	for _, raw := range objects {
		if err := s.processRecord(ctx, raw, &stats); err != nil {
			log.Printf("NEO sync: record %s failed: %v", raw.NeoReferenceID, err)
			stats.Errors++
			metrics.NEORecordErrorsTotal.Inc()
		}
	}

	s.gateway.Publish(notify.ChannelBroadcast, notify.EventBatchComplete, map[string]interface{}{
		"processed": stats.Processed,
		"hazardous": stats.Hazardous,
		"highRisk":  stats.HighRisk,
		"errors":    stats.Errors,
		"timestamp": stats.Timestamp.Format(time.RFC3339),
	})

	if err := s.cacheRepo.SetJSON(ctx, lastBatchCacheKey, stats, snapshotTTL); err != nil {
		log.Printf("NEO sync: failed to cache batch stats: %v", err)
	}

	log.Printf("NEO sync: batch complete (processed=%d hazardous=%d highRisk=%d errors=%d)",
		stats.Processed, stats.Hazardous, stats.HighRisk, stats.Errors)
	return stats, nil
}

func (s *neoService) processRecord(ctx context.Context, rec clients.FeedObject, stats *BatchStats) error {
	assessment := risk.Assess(rec.Factors())
	fetchedAt := time.Now().UTC()

	obj := &models.NEOObject{
		NeoReferenceID:    rec.NeoReferenceID,
		Name:              rec.Name,
		AbsoluteMagnitude: rec.AbsoluteMagnitude,
		DiameterMinM:      rec.DiameterMinM,
		DiameterMaxM:      rec.DiameterMaxM,
		IsHazardous:       rec.IsHazardous,
		CloseApproachAt:   rec.CloseApproachAt,
		MissDistanceKm:    rec.MissDistanceKm,
		MissDistanceAU:    rec.MissDistanceAU,
		MissDistanceLunar: rec.MissDistanceLunar,
		VelocityKmS:       rec.VelocityKmS,
		VelocityKmH:       rec.VelocityKmH,
		OrbitingBody:      rec.OrbitingBody,
		RiskScore:         assessment.Score,
		RiskCategory:      assessment.Category,
		Raw:               datatypes.JSON(rec.Raw),
		FetchedAt:         fetchedAt,
		ExpiresAt:         fetchedAt.Add(snapshotTTL),
	}

	if err := s.repo.Upsert(ctx, obj); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	stats.Processed++
	metrics.NEOProcessedTotal.Inc()
	if obj.IsHazardous {
		stats.Hazardous++
		metrics.NEOHazardousTotal.Inc()
	}

	if assessment.Category == risk.CategoryHigh {
		stats.HighRisk++
		metrics.NEOHighRiskTotal.Inc()
		s.gateway.Publish(notify.ChannelBroadcast, notify.EventNewHazardous, map[string]interface{}{
			"id":                obj.NeoReferenceID,
			"name":              obj.Name,
			"score":             obj.RiskScore,
			"category":          obj.RiskCategory,
			"diameterMax":       obj.DiameterMaxM,
			"missDistanceLunar": obj.MissDistanceLunar,
			"closeApproachDate": obj.CloseApproachAt.Format(time.RFC3339),
			"timestamp":         fetchedAt.Format(time.RFC3339),
		})
	}

	return nil
}

func (s *neoService) GetUpcoming(ctx context.Context, days, limit int) ([]models.NEOObject, error) {
	if days < 1 || days > 30 {
		days = 7
	}

	now := time.Now().UTC()
	objects, err := s.repo.FindUpcoming(ctx, now, now.Add(time.Duration(days)*24*time.Hour), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming objects: %w", err)
	}
	return objects, nil
}

func (s *neoService) GetByRefID(ctx context.Context, refID string) (*models.NEOObject, error) {
	return s.repo.GetByRefID(ctx, refID)
}

func (s *neoService) LastBatchStats(ctx context.Context) (BatchStats, error) {
	var stats BatchStats
	err := s.cacheRepo.GetJSON(ctx, lastBatchCacheKey, &stats)
	return stats, err
}

// CleanupExpired удаляет протухшие снимки; замена TTL-индекса хранилища.
func (s *neoService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired snapshots: %w", err)
	}
	if removed > 0 {
		log.Printf("NEO cleanup: removed %d expired snapshots", removed)
	}
	return removed, nil
}
