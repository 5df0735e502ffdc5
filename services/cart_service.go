package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/example/cart-checkout-service/common/errors"
	"github.com/example/cart-checkout-service/database"
	"github.com/example/cart-checkout-service/models"
	aws_pkg "github.com/example/cart-checkout-service/pkg/aws"
)

// CartStore is the persistence surface for cart aggregates.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	CreateCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	ClearItems(ctx context.Context, userID string, version int64) error
}

// UserStore exposes the wallet/address slice of the user document.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.UserAccount, error)
	DebitWallet(ctx context.Context, id string, amount float64) error
}

// ProductStore is the read-only catalog lookup.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// EventPublisher sends the checkout event to the message broker.
type EventPublisher interface {
	SendCheckoutEvent(event models.CheckoutEvent) error
}

// CartService implements the cart operations and the checkout
// transaction. All errors it returns are tagged application errors.
type CartService struct {
	carts       CartStore
	users       UserStore
	products    ProductStore
	txn         database.TxnRunner
	producer    EventPublisher
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	log         *zap.Logger
}

func NewCartService(
	carts CartStore,
	users UserStore,
	products ProductStore,
	txn database.TxnRunner,
	producer EventPublisher,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	log *zap.Logger,
) *CartService {
	return &CartService{
		carts:       carts,
		users:       users,
		products:    products,
		txn:         txn,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		log:         log,
	}
}

// GetCart returns the user's cart or NotFound.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, tag(err, "failed to load cart")
	}
	if cart == nil {
		return nil, apperrors.NotFound("cart not found")
	}
	return cart, nil
}

// AddItem appends a new line item, creating the cart lazily on first use.
// A product already in the cart is rejected; quantity changes go through
// UpdateItem.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidRequest("quantity must be positive")
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, tag(err, "failed to load cart")
	}
	if cart == nil {
		cart, err = s.carts.CreateCart(ctx, userID)
		if err != nil {
			return nil, tag(err, "failed to create cart")
		}
	}

	if cart.ItemIndex(productID) >= 0 {
		return nil, apperrors.InvalidRequest("product already in cart")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, tag(err, "failed to look up product")
	}
	if product == nil {
		return nil, apperrors.InvalidRequest("product does not exist")
	}

	cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, tag(err, "failed to save cart")
	}
	return cart, nil
}

// UpdateItem sets the quantity of an existing line item in place.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidRequest("quantity must be positive")
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, tag(err, "failed to load cart")
	}
	if cart == nil {
		return nil, apperrors.InvalidRequest("cart does not exist, add an item first")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, tag(err, "failed to look up product")
	}
	if product == nil {
		return nil, apperrors.InvalidRequest("product does not exist")
	}

	idx := cart.ItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.InvalidRequest("product not in cart")
	}

	cart.Items[idx].Quantity = quantity
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, tag(err, "failed to save cart")
	}
	return cart, nil
}

// DeleteItem removes a line item, preserving the order of the others.
func (s *CartService) DeleteItem(ctx context.Context, userID, productID string) error {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return tag(err, "failed to load cart")
	}
	if cart == nil {
		return apperrors.InvalidRequest("cart does not exist")
	}

	idx := cart.ItemIndex(productID)
	if idx < 0 {
		return apperrors.InvalidRequest("product not in cart")
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return tag(err, "failed to save cart")
	}
	return nil
}

// Checkout validates the cart, prices it against the current catalog,
// and debits the wallet while clearing the cart inside one transaction.
// The clear asserts the cart version read above, so a checkout racing
// against another for the same cart aborts with Conflict instead of
// debiting the wallet a second time; the filtered debit likewise refuses
// to apply when a concurrent spend already drained the funds. Either way
// the whole transaction rolls back, so a debited wallet with items still
// in the cart can never be observed.
func (s *CartService) Checkout(ctx context.Context, userID string) error {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return tag(err, "failed to load cart")
	}
	if cart == nil {
		return apperrors.NotFound("cart not found")
	}
	if len(cart.Items) == 0 {
		return apperrors.InvalidRequest("no items in cart")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return tag(err, "failed to load user")
	}
	if !user.AddressConfigured {
		return apperrors.InvalidRequest("no shipping address configured")
	}

	total, err := s.cartTotal(ctx, cart)
	if err != nil {
		return err
	}
	if user.WalletBalance < total {
		return apperrors.InvalidRequest("insufficient balance")
	}

	err = s.txn.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.users.DebitWallet(txCtx, userID, total); err != nil {
			return err
		}
		return s.carts.ClearItems(txCtx, userID, cart.Version)
	})
	if err != nil {
		return tag(err, "checkout transaction failed")
	}

	s.publishCheckoutEvent(ctx, userID, cart.Items, total)
	return nil
}

// cartTotal prices the cart against the current catalog. Prices are
// re-resolved here rather than trusted from add time.
func (s *CartService) cartTotal(ctx context.Context, cart *models.Cart) (float64, error) {
	var total float64
	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return 0, tag(err, "failed to look up product")
		}
		if product == nil {
			return 0, apperrors.InvalidRequest("product " + item.ProductID + " no longer exists")
		}
		total += product.Price * float64(item.Quantity)
	}
	return total, nil
}

// publishCheckoutEvent notifies downstream consumers after the
// transaction has committed. Publish failures are logged, not surfaced:
// the state change already happened.
func (s *CartService) publishCheckoutEvent(ctx context.Context, userID string, items []models.CartItem, total float64) {
	event := models.CheckoutEvent{
		Event:     "checkout.completed",
		UserID:    userID,
		Items:     items,
		Total:     total,
		Timestamp: time.Now(),
	}

	if s.producer != nil {
		if err := s.producer.SendCheckoutEvent(event); err != nil {
			s.log.Error("failed to publish checkout event to kafka",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		payload, err := json.Marshal(event)
		if err != nil {
			s.log.Error("failed to marshal checkout event", zap.Error(err))
			return
		}
		if err := s.snsClient.Publish(ctx, s.snsTopicArn, payload); err != nil {
			s.log.Warn("sns publish failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// tag wraps storage errors as internal unless they already carry a kind.
func tag(err error, message string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(message, err)
}
