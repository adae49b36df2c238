package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/pkg/config"
	mongotx "carrental/pkg/db/mongo"
	"carrental/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id string) (*model.Rental, error)
	// FindActiveByCars returns the active rentals of the given cars that intersect [from, to).
	// excludeID skips one rental, so a reschedule is not checked against itself.
	FindActiveByCars(ctx context.Context, carIDs []string, from, to time.Time, excludeID string) ([]*model.Rental, error)
	// FindActiveByLocation does the same for every car of a city.
	FindActiveByLocation(ctx context.Context, state, city string, from, to time.Time) ([]*model.Rental, error)
	FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Rental, error)
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
	// UpdateIfStatus replaces the rental only while its stored status is one of expected.
	UpdateIfStatus(ctx context.Context, rental *model.Rental, expected ...string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRentalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRentalRepository(cfg *config.Config) RentalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRentalRepository{
		cfg:        cfg,
		collection: db.Collection(RentalsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	rental.CreatedAt = now
	rental.UpdatedAt = now
	if rental.Payments == nil {
		rental.Payments = []model.Payment{}
	}

	result, err := r.collection.InsertOne(ctx, rental)
	if err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rental.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRentalRepository) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, id)
	}

	var rental model.Rental
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", rentalserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find rental: %w", err)
	}
	return &rental, nil
}

func (r *mongoRentalRepository) FindActiveByCars(ctx context.Context, carIDs []string, from, to time.Time, excludeID string) ([]*model.Rental, error) {
	if len(carIDs) == 0 {
		return []*model.Rental{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := activeWithin(from, to)
	filter["car_id"] = bson.M{"$in": carIDs}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	return r.findActive(ctx, filter)
}

func (r *mongoRentalRepository) FindActiveByLocation(ctx context.Context, state, city string, from, to time.Time) ([]*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := activeWithin(from, to)
	filter["state"] = state
	filter["city"] = city

	return r.findActive(ctx, filter)
}

// activeWithin matches rentals that hold their car at some point of [from, to).
func activeWithin(from, to time.Time) bson.M {
	return bson.M{
		"status":   bson.M{"$in": model.ActiveStatuses},
		"start_at": bson.M{"$lt": to},
		"end_at":   bson.M{"$gt": from},
	}
}

func (r *mongoRentalRepository) findActive(ctx context.Context, filter bson.M) ([]*model.Rental, error) {
	opts := options.Find().SetSort(bson.D{{Key: "car_id", Value: 1}, {Key: "start_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active rentals: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*model.Rental
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}
	return rentals, nil
}

func (r *mongoRentalRepository) FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Rental, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rentals for customer [%s]: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var rentals []*model.Rental
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}
	return rentals, nil
}

func (r *mongoRentalRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count rentals for customer [%s]: %w", customerID, err)
	}
	return count, nil
}

func (r *mongoRentalRepository) UpdateIfStatus(ctx context.Context, rental *model.Rental, expected ...string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(rental.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, rental.ID)
	}

	rental.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": objectID, "status": bson.M{"$in": expected}}
	update := bson.M{
		"$set": bson.M{
			"rental_type":     rental.RentalType,
			"start_date":      rental.StartDate,
			"pick_up_time":    rental.PickUpTime,
			"end_date":        rental.EndDate,
			"drop_time":       rental.DropTime,
			"number_of_hours": rental.NumberOfHours,
			"start_at":        rental.StartAt,
			"end_at":          rental.EndAt,
			"amount_cents":    rental.AmountCents,
			"paid_cents":      rental.PaidCents,
			"redeemed_cents":  rental.RedeemedCents,
			"payments":        rental.Payments,
			"status":          rental.Status,
			"updated_at":      rental.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", rentalserrors.ErrInvalidTransition, rental.ID)
	}
	return nil
}

func (r *mongoRentalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
