package models

// UserAccount is the slice of the user document this service touches:
// the wallet debited at checkout and the shipping-address flag checked
// before it. Identity fields are owned by the auth service.
type UserAccount struct {
	ID                string  `json:"id" bson:"_id"`
	Email             string  `json:"email" bson:"email"`
	WalletBalance     float64 `json:"wallet_balance" bson:"wallet_balance"`
	AddressConfigured bool    `json:"address_configured" bson:"address_configured"`
}
