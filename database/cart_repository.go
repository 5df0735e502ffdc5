package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/example/cart-checkout-service/common/errors"
	"github.com/example/cart-checkout-service/models"
)

type CartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{coll: db.Collection("carts")}
}

// GetCart loads the user's cart. A missing cart is not an error here;
// callers decide whether absence means NotFound or InvalidRequest.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateCart inserts a new empty cart with the default payment option.
// The unique index on user_id makes this an atomic insert-if-absent; the
// loser of a creation race gets Conflict.
func (r *CartRepository) CreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart := &models.Cart{
		UserID:        userID,
		Items:         []models.CartItem{},
		PaymentOption: models.DefaultPaymentOption,
		Version:       1,
		UpdatedAt:     time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, cart); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("cart already exists")
		}
		return nil, err
	}
	return cart, nil
}

// SaveCart replaces the cart document, guarded by its version. A save
// that lost a concurrent update matches nothing and reports Conflict.
func (r *CartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	expected := cart.Version
	cart.Version = expected + 1
	cart.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": cart.UserID, "version": expected}, cart)
	if err != nil {
		cart.Version = expected
		return err
	}
	if res.MatchedCount == 0 {
		cart.Version = expected
		return apperrors.Conflict("cart was modified concurrently")
	}
	return nil
}

// ClearItems empties the cart's line items, guarded by the version the
// caller read. Runs inside the checkout transaction alongside the wallet
// debit; a checkout working from a cart another checkout already cleared
// matches nothing, and the Conflict aborts the whole transaction so the
// debit never commits.
func (r *CartRepository) ClearItems(ctx context.Context, userID string, version int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "version": version},
		bson.M{
			"$set": bson.M{"items": []models.CartItem{}, "updated_at": time.Now()},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.Conflict("cart was modified concurrently")
	}
	return nil
}
