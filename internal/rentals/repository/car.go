package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/pkg/config"
	"carrental/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CarRepository interface {
	FindByID(ctx context.Context, id string) (*model.Car, error)
	FindActiveByLocation(ctx context.Context, state, city string) ([]*model.Car, error)
	DistinctStates(ctx context.Context) ([]string, error)
	DistinctCities(ctx context.Context, state string) ([]string, error)
}

type mongoCarRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCarRepository(cfg *config.Config) CarRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCarRepository{
		cfg:        cfg,
		collection: db.Collection(CarsCollection),
	}
}

func (r *mongoCarRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, id)
	}

	var car model.Car
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", rentalserrors.ErrCarNotFound, id)
		}
		return nil, fmt.Errorf("failed to find car: %w", err)
	}
	return &car, nil
}

// FindActiveByLocation returns the active cars of a city ordered by name.
func (r *mongoCarRepository) FindActiveByLocation(ctx context.Context, state, city string) ([]*model.Car, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"state": state, "city": city, "active": true}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cars in %s, %s: %w", city, state, err)
	}
	defer cursor.Close(ctx)

	var cars []*model.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}
	return cars, nil
}

func (r *mongoCarRepository) DistinctStates(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "state", bson.M{"active": true})
}

func (r *mongoCarRepository) DistinctCities(ctx context.Context, state string) ([]string, error) {
	return r.distinct(ctx, "city", bson.M{"active": true, "state": state})
}

func (r *mongoCarRepository) distinct(ctx context.Context, field string, filter bson.M) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", field, err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}
