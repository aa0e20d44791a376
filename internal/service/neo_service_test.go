package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrowatch/internal/clients"
	"astrowatch/internal/notify"
	"astrowatch/internal/risk"
)

func highRiskFeedObject(refID string) clients.FeedObject {
	return clients.FeedObject{
		NeoReferenceID:    refID,
		Name:              "(2024 XT) " + refID,
		DiameterMaxM:      1000,
		IsHazardous:       true,
		CloseApproachAt:   time.Now().UTC().Add(12 * time.Hour),
		MissDistanceLunar: 0.5,
		VelocityKmS:       30,
		Raw:               json.RawMessage(`{"neo_reference_id":"` + refID + `"}`),
	}
}

func quietFeedObject(refID string) clients.FeedObject {
	return clients.FeedObject{
		NeoReferenceID:    refID,
		Name:              "(2024 QB) " + refID,
		DiameterMaxM:      10,
		CloseApproachAt:   time.Now().UTC().Add(36 * time.Hour),
		MissDistanceLunar: 40,
		VelocityKmS:       5,
		Raw:               json.RawMessage(`{"neo_reference_id":"` + refID + `"}`),
	}
}

func TestSyncFeedProcessesBatch(t *testing.T) {
	repo := newFakeNEORepo()
	client := &fakeFeedClient{objects: []clients.FeedObject{
		highRiskFeedObject("3542519"),
		quietFeedObject("2153306"),
	}}
	gateway := &fakeGateway{}

	svc := NewNEOService(repo, &fakeCacheRepo{}, client, gateway)

	stats, err := svc.SyncFeed(context.Background(), time.Now().UTC(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Hazardous)
	assert.Equal(t, 1, stats.HighRisk)
	assert.Equal(t, 0, stats.Errors)

	require.Len(t, repo.objects, 2)

	stored := repo.objects["3542519"]
	assert.Equal(t, 100, stored.RiskScore)
	assert.Equal(t, risk.CategoryHigh, stored.RiskCategory)
	assert.Equal(t, stored.FetchedAt.Add(24*time.Hour), stored.ExpiresAt)

	// Широковещательные события: итог батча + отдельное по high-risk объекту
	batchEvents := gateway.byEvent(notify.EventBatchComplete)
	require.Len(t, batchEvents, 1)
	assert.Equal(t, notify.ChannelBroadcast, batchEvents[0].Channel)
	assert.Equal(t, 2, batchEvents[0].Payload["processed"])

	hazardEvents := gateway.byEvent(notify.EventNewHazardous)
	require.Len(t, hazardEvents, 1)
	assert.Equal(t, "3542519", hazardEvents[0].Payload["id"])
}

func TestSyncFeedIdempotentUpsert(t *testing.T) {
	repo := newFakeNEORepo()
	client := &fakeFeedClient{objects: []clients.FeedObject{quietFeedObject("2153306")}}

	svc := NewNEOService(repo, &fakeCacheRepo{}, client, &fakeGateway{})

	_, err := svc.SyncFeed(context.Background(), time.Now().UTC(), 1)
	require.NoError(t, err)
	first := repo.objects["2153306"]

	time.Sleep(5 * time.Millisecond)

	_, err = svc.SyncFeed(context.Background(), time.Now().UTC(), 1)
	require.NoError(t, err)
	second := repo.objects["2153306"]

	// Одна запись на внешний id, отличаются только отметки свежести
	require.Len(t, repo.objects, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.True(t, second.FetchedAt.After(first.FetchedAt))
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestSyncFeedFailureDegradesToEmptyBatch(t *testing.T) {
	repo := newFakeNEORepo()
	client := &fakeFeedClient{err: errors.New("connection refused")}
	gateway := &fakeGateway{}

	svc := NewNEOService(repo, &fakeCacheRepo{}, client, gateway)

	stats, err := svc.SyncFeed(context.Background(), time.Now().UTC(), 1)
	require.NoError(t, err, "feed failure must not surface as a pipeline failure")

	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 0, stats.Errors)
	assert.Empty(t, repo.objects)

	// Итог батча публикуется и для пустой выборки
	require.Len(t, gateway.byEvent(notify.EventBatchComplete), 1)
}

func TestSyncFeedRecordFailureDoesNotAbortBatch(t *testing.T) {
	repo := newFakeNEORepo()
	repo.upsertErr = map[string]error{"3542519": errors.New("constraint violation")}
	client := &fakeFeedClient{objects: []clients.FeedObject{
		highRiskFeedObject("3542519"),
		quietFeedObject("2153306"),
	}}

	svc := NewNEOService(repo, &fakeCacheRepo{}, client, &fakeGateway{})

	stats, err := svc.SyncFeed(context.Background(), time.Now().UTC(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Errors)
	require.Len(t, repo.objects, 1)
	assert.Contains(t, repo.objects, "2153306")
}

func TestCleanupExpired(t *testing.T) {
	repo := newFakeNEORepo()
	repo.deleted = 7

	svc := NewNEOService(repo, &fakeCacheRepo{}, &fakeFeedClient{}, &fakeGateway{})

	removed, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}
