package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// StatusService is the client-facing poll path. Authorization runs before
// reconciliation so an unrelated user cannot drive gateway lookups for
// sessions they do not own.
type StatusService struct {
	store      TransactionStore
	reconciler *Reconciler
	cache      StatusCache // optional
}

func NewStatusService(store TransactionStore, reconciler *Reconciler) *StatusService {
	return &StatusService{store: store, reconciler: reconciler}
}

func (s *StatusService) WithStatusCache(c StatusCache) *StatusService {
	s.cache = c
	return s
}

func (s *StatusService) GetPaymentStatus(ctx context.Context, sessionID, callerID string, isAdmin bool) (*ReconciliationResult, error) {
	// Completed results are immutable, so a cache hit answers the poll
	// without the store or the gateway.
	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, sessionID); ok {
			if res.PayerID != callerID && !isAdmin {
				return nil, ErrForbidden
			}
			return res, nil
		}
	}

	txn, err := s.store.GetBySessionID(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if err != nil {
		return nil, err
	}

	if txn.PayerID != callerID && !isAdmin {
		return nil, ErrForbidden
	}

	return s.reconciler.Reconcile(ctx, sessionID)
}
