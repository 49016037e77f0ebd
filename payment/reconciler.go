package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avisharm-alt/curesite/gateway"
	"github.com/avisharm-alt/curesite/model"
)

// ReconciliationResult is what both trigger paths (webhook, poll) see.
type ReconciliationResult struct {
	SessionID      string               `json:"session_id"`
	PayerID        string               `json:"payer_id"`
	CheckoutStatus string               `json:"checkout_status"`
	PaymentStatus  model.PaymentStatus  `json:"payment_status"`
	Amount         int64                `json:"amount"`
	Currency       string               `json:"currency"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
}

// Reconciler is the single code path that converges a transaction onto the
// gateway-reported outcome. Safe to call any number of times, concurrently,
// for the same session id: the conditional MarkCompleted write decides the
// race winner, and only the winner applies the content-item side effects.
type Reconciler struct {
	gateway  gateway.Client
	store    TransactionStore
	resolver *TargetResolver

	// Post-completion hooks, all optional and best effort.
	events EventPublisher
	search SearchIndexer
	cache  StatusCache
}

func NewReconciler(gw gateway.Client, store TransactionStore, resolver *TargetResolver) *Reconciler {
	return &Reconciler{gateway: gw, store: store, resolver: resolver}
}

func (r *Reconciler) WithEventPublisher(p EventPublisher) *Reconciler { r.events = p; return r }
func (r *Reconciler) WithSearchIndexer(ix SearchIndexer) *Reconciler  { r.search = ix; return r }
func (r *Reconciler) WithStatusCache(c StatusCache) *Reconciler       { r.cache = c; return r }

func (r *Reconciler) Reconcile(ctx context.Context, sessionID string) (*ReconciliationResult, error) {
	txn, err := r.store.GetBySessionID(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit: completed is terminal, so repeated or
	// concurrent calls return the recorded outcome without touching the
	// gateway or the content item again.
	if txn.PaymentStatus == model.PaymentCompleted {
		return resultFrom(txn), nil
	}

	// Resolve before any write so an unknown target type surfaces while
	// the transaction is still untouched.
	col, err := r.resolver.Resolve(txn.TargetType)
	if err != nil {
		return nil, err
	}

	status, err := r.gateway.GetStatus(ctx, sessionID)
	if err != nil {
		// Transient: the transaction keeps its prior state and the next
		// webhook or poll retries the same path.
		return nil, err
	}

	if err := r.store.UpdateCheckoutStatus(ctx, sessionID, status.CheckoutStatus); err != nil {
		return nil, err
	}
	txn.CheckoutStatus = status.CheckoutStatus

	switch {
	case status.PaymentStatus == gateway.PaymentStatusPaid:
		now := time.Now().UTC()
		won, err := r.store.MarkCompleted(ctx, sessionID, status.CheckoutStatus, now)
		if err != nil {
			return nil, err
		}
		if !won {
			// A concurrent caller completed the transaction first; its
			// completed_at is the one on record.
			txn, err = r.store.GetBySessionID(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			return resultFrom(txn), nil
		}

		txn.PaymentStatus = model.PaymentCompleted
		txn.CompletedAt = &now

		// The only place this subsystem mutates content items.
		if err := col.UpdateOnCompletion(ctx, txn.TargetID, txn); err != nil {
			// Transaction is completed but the item is stale; the state is
			// self-describing and a later manual re-drive converges it.
			log.Printf("content update failed for %s %s (session %s): %v", txn.TargetType, txn.TargetID, sessionID, err)
			return nil, err
		}

		res := resultFrom(txn)
		r.afterCompletion(ctx, txn, res)
		return res, nil

	case status.CheckoutStatus == gateway.CheckoutStatusExpired:
		if _, err := r.store.MarkTerminal(ctx, sessionID, model.PaymentExpired, status.CheckoutStatus); err != nil {
			return nil, err
		}
		txn.PaymentStatus = model.PaymentExpired
	}

	// Unpaid and not expired: stays pending, the conservative default.
	return resultFrom(txn), nil
}

// afterCompletion runs the best-effort side channels: downstream event,
// public search index, terminal-status cache. None of them affect the
// reconciliation outcome.
func (r *Reconciler) afterCompletion(ctx context.Context, txn *model.PaymentTransaction, res *ReconciliationResult) {
	if r.events != nil {
		r.events.PublishPaymentCompletedEvent(map[string]interface{}{
			"event_type": "payment.completed",
			"data": map[string]interface{}{
				"session_id":   txn.SessionID,
				"target_type":  txn.TargetType,
				"target_id":    txn.TargetID,
				"payer_id":     txn.PayerID,
				"amount":       txn.Amount,
				"currency":     txn.Currency,
				"completed_at": txn.CompletedAt.Format(time.RFC3339),
			},
		})
	}

	if r.search != nil {
		doc := map[string]interface{}{
			"id":           txn.TargetID,
			"payer_id":     txn.PayerID,
			"published_at": txn.CompletedAt.Format(time.RFC3339),
		}
		if title, ok := txn.Metadata["title"]; ok {
			doc["title"] = title
		}
		if err := r.search.IndexPublished(ctx, searchIndexFor(txn.TargetType), doc); err != nil {
			log.Printf("search indexing failed for %s %s: %v", txn.TargetType, txn.TargetID, err)
		}
	}

	if r.cache != nil {
		r.cache.Set(ctx, txn.SessionID, res)
	}
}

func searchIndexFor(t model.TargetType) string {
	if t == model.TargetArticle {
		return "published_articles"
	}
	return "published_posters"
}

func resultFrom(txn *model.PaymentTransaction) *ReconciliationResult {
	return &ReconciliationResult{
		SessionID:      txn.SessionID,
		PayerID:        txn.PayerID,
		CheckoutStatus: txn.CheckoutStatus,
		PaymentStatus:  txn.PaymentStatus,
		Amount:         txn.Amount,
		Currency:       txn.Currency,
		CompletedAt:    txn.CompletedAt,
	}
}
