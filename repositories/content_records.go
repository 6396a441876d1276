package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postforge/errs"
	"postforge/models"
)

type ContentRecordRepository struct {
	col *mongo.Collection
}

func NewContentRecordRepository(db *mongo.Database) *ContentRecordRepository {
	return &ContentRecordRepository{col: db.Collection("content_records")}
}

// Insert persists a new record. Records are immutable after this point.
func (r *ContentRecordRepository) Insert(ctx context.Context, rec *models.ContentRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

// FindByContentID returns a record by its contentId.
func (r *ContentRecordRepository) FindByContentID(ctx context.Context, contentID string) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	if err := r.col.FindOne(ctx, bson.M{"content_id": contentID}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("content not found")
		}
		return nil, err
	}
	return &rec, nil
}

// ListRecentByUser returns the user's most recent records, newest first.
func (r *ContentRecordRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.ContentRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ContentRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByContentID removes a record by its contentId.
func (r *ContentRecordRepository) DeleteByContentID(ctx context.Context, contentID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"content_id": contentID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("content not found")
	}
	return nil
}
