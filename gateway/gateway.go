package gateway

import (
	"context"
	"errors"
)

var (
	// ErrInvalidSignature means the webhook body could not be
	// authenticated against the signing secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnavailable marks transient gateway failures (network errors,
	// 5xx responses). Callers decide whether to retry.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// Checkout session lifecycle strings as reported by the gateway.
const (
	CheckoutStatusInitiated = "initiated"
	CheckoutStatusOpen      = "open"
	CheckoutStatusComplete  = "complete"
	CheckoutStatusExpired   = "expired"
)

// Gateway-reported payment state of a session.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

const EventCheckoutCompleted = "checkout.session.completed"

type CreateSessionParams struct {
	Amount      int64 // minor units
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type Session struct {
	ID  string
	URL string
}

type SessionStatus struct {
	CheckoutStatus string
	PaymentStatus  string
	AmountTotal    int64
	Currency       string
}

// WebhookEvent is the verified, minimally parsed gateway event. SessionID
// is empty for event types that do not carry a checkout session.
type WebhookEvent struct {
	Type      string
	SessionID string
}

// Client is the stateless adapter around the external payment processor.
// Implementations must be safe for concurrent use.
type Client interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
	VerifyAndParseWebhook(payload []byte, sigHeader string) (*WebhookEvent, error)
}
