package services

import (
	"context"
	"time"

	"postforge/cache"
	"postforge/config"
	"postforge/errs"
	"postforge/eventbus"
	"postforge/events"
	"postforge/models"
	"postforge/orchestrator"
	"postforge/quota"
	"postforge/storage"
)

// ContentService is the application surface behind the HTTP handlers:
// generation goes through the orchestrator, retrieval goes through the
// result cache, deletion unwinds blobs, metadata, quota and cache.
type ContentService struct {
	orch       *orchestrator.Orchestrator
	records    orchestrator.RecordStore
	blobs      storage.BlobStore
	quota      *quota.Guard
	cache      *cache.ResultCache
	bus        eventbus.Publisher
	auditTopic string
}

func NewContentService(
	orch *orchestrator.Orchestrator,
	records orchestrator.RecordStore,
	blobs storage.BlobStore,
	guard *quota.Guard,
	resultCache *cache.ResultCache,
	bus eventbus.Publisher,
	auditTopic string,
) *ContentService {
	return &ContentService{
		orch:       orch,
		records:    records,
		blobs:      blobs,
		quota:      guard,
		cache:      resultCache,
		bus:        bus,
		auditTopic: auditTopic,
	}
}

// Generate runs the pipeline for an authenticated user.
func (s *ContentService) Generate(ctx context.Context, userID string, req orchestrator.Request) (*models.ContentRecord, error) {
	return s.orch.Generate(ctx, userID, req)
}

// Get returns a record by contentId, consulting the cache before the
// metadata store. Records owned by other users are reported as not found.
func (s *ContentService) Get(ctx context.Context, userID, contentID string) (*models.ContentRecord, error) {
	rec, err := s.cache.Get(ctx, contentID, func(ctx context.Context, id string) (*models.ContentRecord, error) {
		return s.records.FindByContentID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, errs.NotFound("content not found")
	}
	return rec, nil
}

// Delete removes the record, its blobs, releases the quota bytes and
// invalidates the cache entry immediately.
func (s *ContentService) Delete(ctx context.Context, userID, contentID string) error {
	rec, err := s.records.FindByContentID(ctx, contentID)
	if err != nil {
		return err
	}
	if rec.UserID != userID {
		return errs.NotFound("content not found")
	}

	if err := s.records.DeleteByContentID(ctx, contentID); err != nil {
		return err
	}
	s.cache.Invalidate(contentID)

	for p := range rec.GeneratedFormats {
		key := orchestrator.BlobKey(contentID, p)
		if err := s.blobs.Delete(ctx, key); err != nil {
			config.ErrorWithFields("blob delete failed", config.Fields{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	if err := s.quota.Release(ctx, userID, rec.StorageBytes); err != nil {
		config.ErrorWithFields("quota release failed on delete", config.Fields{
			"user_id": userID,
			"bytes":   rec.StorageBytes,
			"error":   err.Error(),
		})
	}

	s.publishDeleted(rec)
	return nil
}

func (s *ContentService) publishDeleted(rec *models.ContentRecord) {
	payload := events.ContentDeletedEvent{
		BaseEvent:     events.NewBaseEvent(events.ContentDeleted),
		ContentID:     rec.ContentID,
		UserID:        rec.UserID,
		BytesReleased: rec.StorageBytes,
	}
	ev, err := eventbus.NewEvent(payload.ID, string(payload.Type), payload)
	if err != nil {
		config.ErrorWithFields("audit event marshal failed", config.Fields{"type": string(payload.Type), "error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.bus.Publish(ctx, s.auditTopic, ev); err != nil {
		config.ErrorWithFields("audit event publish failed", config.Fields{"type": string(payload.Type), "error": err.Error()})
	}
}
