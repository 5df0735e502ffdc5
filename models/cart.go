package models

import "time"

// PaymentOption is the payment method attached to a cart.
type PaymentOption string

const (
	PaymentCard           PaymentOption = "card"
	PaymentCashOnDelivery PaymentOption = "cod"

	// DefaultPaymentOption is assigned when a cart is created lazily on
	// the first add-to-cart call.
	DefaultPaymentOption = PaymentCashOnDelivery
)

type CartItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Cart holds one user's pending line items. A product id appears at most
// once among Items; quantity changes happen in place. Version guards
// against concurrent saves clobbering each other.
type Cart struct {
	UserID        string        `json:"user_id" bson:"user_id"`
	Items         []CartItem    `json:"items" bson:"items"`
	PaymentOption PaymentOption `json:"payment_option" bson:"payment_option"`
	Version       int64         `json:"-" bson:"version"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// ItemIndex returns the position of the line item for productID, or -1.
func (c *Cart) ItemIndex(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
