package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"postforge/models"
)

// UserQuotaRepository implements quota.Store on MongoDB. Reservations use a
// single conditional upsert so concurrent writers for the same user cannot
// lose updates or double-count.
type UserQuotaRepository struct {
	col *mongo.Collection
}

func NewUserQuotaRepository(db *mongo.Database) *UserQuotaRepository {
	return &UserQuotaRepository{col: db.Collection("user_quotas")}
}

func (r *UserQuotaRepository) UsedBytes(ctx context.Context, userID string) (int64, error) {
	var q models.UserQuota
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return q.StorageUsedBytes, nil
}

// ReserveBytes atomically increments the counter unless the result would
// exceed limit. The filter only matches documents with headroom; for a new
// user the upsert inserts the first document, and the unique user_id index
// turns a concurrent or over-limit insert into a duplicate-key rejection.
func (r *UserQuotaRepository) ReserveBytes(ctx context.Context, userID string, n, limit int64) (bool, error) {
	filter := bson.M{
		"user_id":            userID,
		"storage_used_bytes": bson.M{"$lte": limit - n},
	}
	update := bson.M{
		"$inc": bson.M{"storage_used_bytes": n},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

// ReleaseBytes decrements the counter, flooring at zero via a pipeline
// update so a double release cannot drive usage negative.
func (r *UserQuotaRepository) ReleaseBytes(ctx context.Context, userID string, n int64) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"storage_used_bytes": bson.M{
				"$max": bson.A{0, bson.M{"$subtract": bson.A{"$storage_used_bytes", n}}},
			},
			"updated_at": "$$NOW",
		}}},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"user_id": userID}, pipeline)
	return err
}
