package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"carrental/pkg/logger"
	"carrental/pkg/model"
	"carrental/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CarCheck validates a catalog entry, normally RentalValidator.ValidateCar.
type CarCheck func(car *model.Car) error

// ReadSeedCars decodes a JSON array of cars and normalizes their locations the
// same way search input is normalized. Every invalid entry is reported.
func ReadSeedCars(r io.Reader, check CarCheck) ([]*model.Car, error) {
	var cars []*model.Car
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cars); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	var problems []error
	for i, car := range cars {
		car.ID = ""
		car.Name = sanitizer.NormalizeName(car.Name)
		car.State = sanitizer.NormalizeLocation(car.State)
		car.City = sanitizer.NormalizeLocation(car.City)
		if err := check(car); err != nil {
			problems = append(problems, fmt.Errorf("car %d (%q): %w", i, car.Name, err))
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid seed cars: %v", problems)
	}
	return cars, nil
}

// SeedCars upserts cars keyed by (state, city, name), so re-running a seed
// updates rates instead of duplicating the catalog.
func SeedCars(ctx context.Context, db *mongo.Database, cars []*model.Car, log *logger.Logger) error {
	coll := db.Collection(CarsCollection)
	now := time.Now().UTC().Truncate(time.Millisecond)

	var inserted, updated int64
	for _, car := range cars {
		filter := bson.M{"state": car.State, "city": car.City, "name": car.Name}
		update := bson.M{
			"$set": bson.M{
				"hourly_rate_cents": car.HourlyRateCents,
				"daily_rate_cents":  car.DailyRateCents,
				"active":            car.Active,
			},
			"$setOnInsert": bson.M{"created_at": now},
		}
		result, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to seed car %q in %s: %w", car.Name, car.City, err)
		}
		inserted += result.UpsertedCount
		updated += result.ModifiedCount
	}

	log.Info("Seeded cars", "total", len(cars), "inserted", inserted, "updated", updated)
	return nil
}
