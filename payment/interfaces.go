package payment

import (
	"context"
	"time"

	"github.com/avisharm-alt/curesite/model"
)

// TransactionStore persists checkout attempts keyed by gateway session id.
// Implementations must make MarkCompleted a conditional write: it is the
// serialization point between concurrent webhook and poll reconciliations.
type TransactionStore interface {
	Create(ctx context.Context, txn *model.PaymentTransaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.PaymentTransaction, error)
	CompletedExists(ctx context.Context, targetType model.TargetType, targetID string) (bool, error)
	UpdateCheckoutStatus(ctx context.Context, sessionID, checkoutStatus string) error

	// MarkCompleted sets payment_status=completed and completed_at only if
	// the row is not completed yet. Returns true when this call won the
	// transition.
	MarkCompleted(ctx context.Context, sessionID, checkoutStatus string, completedAt time.Time) (bool, error)

	// MarkTerminal moves a still-pending row to a non-completed terminal
	// status (failed, expired).
	MarkTerminal(ctx context.Context, sessionID string, status model.PaymentStatus, checkoutStatus string) (bool, error)
}

// ContentItem is the slice of a poster/article the payment core reads.
type ContentItem struct {
	ID              string
	OwnerID         string
	Title           string
	EditorialStatus string
	PaymentStatus   string
}

// ContentCollection is the update contract of one payable content
// collection. The resolver maps target types onto these.
type ContentCollection interface {
	Get(ctx context.Context, id string) (*ContentItem, error)
	SetPaymentLink(ctx context.Context, id, checkoutURL, sessionID string) error
	UpdateOnCompletion(ctx context.Context, id string, txn *model.PaymentTransaction) error
}

// EventPublisher notifies downstream subsystems of completed payments.
type EventPublisher interface {
	PublishPaymentCompletedEvent(event interface{})
}

// SearchIndexer pushes a newly published item into the public search
// index. Best effort; failures are logged by the caller.
type SearchIndexer interface {
	IndexPublished(ctx context.Context, index string, doc map[string]interface{}) error
}

// StatusCache holds reconciliation results for sessions that reached a
// terminal completed state, which is immutable and therefore safe to cache.
type StatusCache interface {
	Get(ctx context.Context, sessionID string) (*ReconciliationResult, bool)
	Set(ctx context.Context, sessionID string, res *ReconciliationResult)
}
