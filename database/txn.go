package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner executes a function inside a single transaction scope. The
// checkout debit and cart clear run under one runner call so either both
// commit or neither does.
type TxnRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxnRunner struct {
	client *mongo.Client
}

func NewTxnRunner(client *mongo.Client) TxnRunner {
	return &mongoTxnRunner{client: client}
}

func (r *mongoTxnRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
