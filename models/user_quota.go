package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserQuota tracks cumulative blob storage per user.
// Collection: user_quotas. StorageUsedBytes is only ever moved through
// atomic conditional increments so concurrent writers cannot lose updates.
type UserQuota struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID           string             `bson:"user_id" json:"userId"`
	StorageUsedBytes int64              `bson:"storage_used_bytes" json:"storageUsedBytes"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}
