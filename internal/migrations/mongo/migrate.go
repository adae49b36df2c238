package mongo

import (
	"context"
	"fmt"

	"carrental/internal/migrations/mongo/validators"
	"carrental/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, kept in step with the rentals repositories.
const (
	CarsCollection        = "Cars"
	RentalsCollection     = "Rentals"
	WalletsCollection     = "Wallets"
	RentalLocksCollection = "Rental_locks"
)

var (
	CarsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "state", Value: 1},
			{Key: "city", Value: 1},
			{Key: "active", Value: 1},
			{Key: "name", Value: 1},
		}},
	}

	RentalsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "car_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_at", Value: 1},
			{Key: "end_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "state", Value: 1},
			{Key: "city", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "customer_id", Value: 1},
			{Key: "start_at", Value: -1},
		}},
	}

	WalletsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	// Mongo's TTL monitor runs about once a minute, so expired locks can linger;
	// the rentals service clears those itself.
	RentalLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		CarsCollection:        {Indexes: CarsIndexes, Validator: validators.CarValidator},
		RentalsCollection:     {Indexes: RentalsIndexes, Validator: validators.RentalValidator},
		WalletsCollection:     {Indexes: WalletsIndexes, Validator: validators.WalletValidator},
		RentalLocksCollection: {Indexes: RentalLocksIndexes, Validator: validators.RentalLockValidator},
	}
}

// RunMigration creates the collections with their schema validators and indexes.
// It is safe to run repeatedly.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
