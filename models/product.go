package models

// Product is the read-only view of a catalog entry. Price is always
// resolved from the catalog at time of use, never cached on the cart.
type Product struct {
	ID    string  `json:"_id" bson:"_id"`
	Name  string  `json:"title" bson:"title"`
	Price float64 `json:"price" bson:"price"`
}
