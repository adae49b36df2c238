package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/pkg/config"
	"carrental/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WalletRepository tracks the redeemable cash of each customer. A customer
// without a wallet document has a balance of zero.
type WalletRepository interface {
	Get(ctx context.Context, customerID string) (*model.Wallet, error)
	Credit(ctx context.Context, customerID string, cents int64) error
	Debit(ctx context.Context, customerID string, cents int64) error
}

type mongoWalletRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWalletRepository(cfg *config.Config) WalletRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWalletRepository{
		cfg:        cfg,
		collection: db.Collection(WalletsCollection),
	}
}

func (r *mongoWalletRepository) Get(ctx context.Context, customerID string) (*model.Wallet, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var wallet model.Wallet
	err := r.collection.FindOne(ctx, bson.M{"customer_id": customerID}).Decode(&wallet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.Wallet{CustomerID: customerID}, nil
		}
		return nil, fmt.Errorf("failed to find wallet for customer [%s]: %w", customerID, err)
	}
	return &wallet, nil
}

func (r *mongoWalletRepository) Credit(ctx context.Context, customerID string, cents int64) error {
	if cents <= 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc":         bson.M{"redeemable_cents": cents},
		"$set":         bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		"$setOnInsert": bson.M{"customer_id": customerID},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"customer_id": customerID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to credit wallet for customer [%s]: %w", customerID, err)
	}
	return nil
}

// Debit fails with ErrInsufficientRedeemable rather than letting the balance go negative.
func (r *mongoWalletRepository) Debit(ctx context.Context, customerID string, cents int64) error {
	if cents <= 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"customer_id": customerID, "redeemable_cents": bson.M{"$gte": cents}}
	update := bson.M{
		"$inc": bson.M{"redeemable_cents": -cents},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to debit wallet for customer [%s]: %w", customerID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: customer %s", rentalserrors.ErrInsufficientRedeemable, customerID)
	}
	return nil
}
