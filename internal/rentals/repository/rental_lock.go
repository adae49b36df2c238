package repository

import (
	"context"
	"time"

	"carrental/pkg/config"
	"carrental/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RentalLockRepository provides operations for advisory locks
type RentalLockRepository interface {
	Create(ctx context.Context, lock *model.RentalLock) error
	Delete(ctx context.Context, lockID, owner string) error
	DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
}

type mongoRentalLockRepository struct {
	collection *mongo.Collection
}

func NewRentalLockRepository(cfg *config.Config) RentalLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalLockRepository{
		collection: db.Collection(RentalLocksCollection),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoRentalLockRepository) Create(ctx context.Context, lock *model.RentalLock) error {
	lock.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

// Delete removes an advisory lock, but only the caller's own: an expired lock
// may already have been taken over by someone else.
func (r *mongoRentalLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
	return err
}

// DeleteExpired clears a lock whose TTL has passed but which the TTL monitor has not reaped yet.
func (r *mongoRentalLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
