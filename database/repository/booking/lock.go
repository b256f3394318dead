package bookingRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// carLock is an advisory lock document keyed by car id. It serializes the
// conflict-check-then-write window of creation and extension for one car.
// The TTL index on expires_at reclaims locks abandoned by a crashed
// process.
type carLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// AcquireCarLock inserts the lock document for carID. A duplicate-key
// error means another operation holds the lock; callers get ErrCarLocked
// and should surface a conflict rather than retry inline.
func (r *MongoBookingRepo) AcquireCarLock(ctx context.Context, carID string, ttl time.Duration) error {
	now := time.Now()
	_, err := r.locks.InsertOne(ctx, carLock{
		ID:        carID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrCarLocked
	}
	return err
}

// ReleaseCarLock removes the lock document. Missing documents are fine:
// the TTL sweeper may have raced us.
func (r *MongoBookingRepo) ReleaseCarLock(ctx context.Context, carID string) error {
	_, err := r.locks.DeleteOne(ctx, bson.M{"_id": carID})
	return err
}
