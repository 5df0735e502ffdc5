package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/example/cart-checkout-service/common/errors"
	"github.com/example/cart-checkout-service/models"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection("users")}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.UserAccount, error) {
	var user models.UserAccount
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DebitWallet subtracts amount from the user's wallet balance. The filter
// refuses the update when the balance no longer covers the amount, so a
// concurrent spend aborts the caller's transaction instead of driving the
// balance negative.
func (r *UserRepository) DebitWallet(ctx context.Context, id string, amount float64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "wallet_balance": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"wallet_balance": -amount}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.InvalidRequest("insufficient balance")
	}
	return nil
}
