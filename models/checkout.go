package models

import "time"

// CheckoutEvent is published after a checkout transaction commits.
type CheckoutEvent struct {
	Event     string     `json:"event"` // "checkout.completed"
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	Timestamp time.Time  `json:"timestamp"`
}
