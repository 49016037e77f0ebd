package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/avisharm-alt/curesite/gateway"
	"github.com/avisharm-alt/curesite/model"
)

// Editorial states that make an item eligible for the publication fee.
// Posters are "approved", journal articles "accepted".
var eligibleEditorialStatus = map[string]bool{
	"approved": true,
	"accepted": true,
}

// CheckoutService creates gateway checkout sessions for approved content
// items and persists the pending transaction. Exactly one gateway session
// and one transaction row per successful call; if the gateway call fails,
// no row is written.
type CheckoutService struct {
	gateway  gateway.Client
	store    TransactionStore
	resolver *TargetResolver
	fee      int64
	currency string
}

func NewCheckoutService(gw gateway.Client, store TransactionStore, resolver *TargetResolver, feeCents int64, currency string) *CheckoutService {
	return &CheckoutService{
		gateway:  gw,
		store:    store,
		resolver: resolver,
		fee:      feeCents,
		currency: currency,
	}
}

type CheckoutResult struct {
	CheckoutURL string
	SessionID   string
}

func (s *CheckoutService) CreateCheckout(ctx context.Context, targetType model.TargetType, targetID, payerID, payerEmail, originURL string) (*CheckoutResult, error) {
	col, err := s.resolver.Resolve(targetType)
	if err != nil {
		return nil, err
	}

	item, err := col.Get(ctx, targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}

	if item.OwnerID != payerID {
		return nil, ErrForbidden
	}
	if !eligibleEditorialStatus[item.EditorialStatus] {
		return nil, fmt.Errorf("%w: editorial status %q", ErrInvalidState, item.EditorialStatus)
	}
	if item.PaymentStatus == string(model.PaymentCompleted) {
		return nil, ErrAlreadyPaid
	}

	// The transaction store is authoritative for I1: at most one completed
	// transaction per target, ever.
	done, err := s.store.CompletedExists(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyPaid
	}

	// Metadata is the only channel through which the gateway side knows
	// what the session pays for.
	meta := map[string]string{
		"type":       string(targetType),
		"target_id":  targetID,
		"user_id":    payerID,
		"user_email": payerEmail,
		"title":      item.Title,
	}

	sess, err := s.gateway.CreateSession(ctx, gateway.CreateSessionParams{
		Amount:      s.fee,
		Currency:    s.currency,
		ProductName: fmt.Sprintf("Publication fee: %s", item.Title),
		SuccessURL:  fmt.Sprintf("%s/profile?session_id={CHECKOUT_SESSION_ID}", originURL),
		CancelURL:   fmt.Sprintf("%s/profile?payment=cancelled", originURL),
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}

	txn := &model.PaymentTransaction{
		ID:             uuid.NewString(),
		SessionID:      sess.ID,
		TargetType:     targetType,
		TargetID:       targetID,
		PayerID:        payerID,
		PayerEmail:     payerEmail,
		Amount:         s.fee,
		Currency:       s.currency,
		PaymentStatus:  model.PaymentPending,
		CheckoutStatus: gateway.CheckoutStatusInitiated,
		Metadata: datatypes.JSONMap{
			"title":      item.Title,
			"user_email": payerEmail,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, txn); err != nil {
		return nil, err
	}

	// Denormalized for display only; the transaction row stays
	// authoritative, so a failure here is logged, not fatal.
	if err := col.SetPaymentLink(ctx, targetID, sess.URL, sess.ID); err != nil {
		log.Printf("failed to store payment link on %s %s: %v", targetType, targetID, err)
	}

	return &CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}
