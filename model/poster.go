package model

import "time"

// Poster is owned by the editorial subsystem; the payment core only
// writes payment_status, payment_link, stripe_session_id and
// payment_completed_at.
type Poster struct {
	ID                 string     `gorm:"primaryKey" json:"id"`
	UserID             string     `json:"user_id"`
	Title              string     `json:"title"`
	Status             string     `json:"status"` // editorial: pending | approved | rejected
	PaymentStatus      string     `json:"payment_status"`
	PaymentLink        string     `json:"payment_link"`
	StripeSessionID    string     `json:"stripe_session_id"`
	PaymentCompletedAt *time.Time `json:"payment_completed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
