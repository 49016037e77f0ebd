package model

import (
	"time"

	"gorm.io/datatypes"
)

// TargetType tags which content collection a transaction pays for.
// Unknown tags are rejected by the resolver, never defaulted.
type TargetType string

const (
	TargetPoster  TargetType = "poster"
	TargetArticle TargetType = "journal_article"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

// PaymentTransaction is the authoritative record of one checkout attempt.
// Rows are never deleted; "completed" is terminal and never regresses.
type PaymentTransaction struct {
	ID             string            `gorm:"primaryKey" json:"id"`
	SessionID      string            `gorm:"uniqueIndex;not null" json:"session_id"` // gateway-issued
	TargetType     TargetType        `gorm:"index:idx_target" json:"target_type"`
	TargetID       string            `gorm:"index:idx_target" json:"target_id"`
	PayerID        string            `json:"payer_id"`
	PayerEmail     string            `json:"payer_email"`
	Amount         int64             `json:"amount"` // minor units (cents)
	Currency       string            `json:"currency"`
	PaymentStatus  PaymentStatus     `json:"payment_status"`
	CheckoutStatus string            `json:"checkout_status"` // gateway session lifecycle, informational
	Metadata       datatypes.JSONMap `json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
}
