package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/avisharm-alt/curesite/model"
)

// TransactionStore persists payment transactions with raw SQL on the
// shared *sql.DB. Rows are append-only: status transitions update in
// place, nothing is ever deleted.
type TransactionStore struct {
	DB *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{DB: db}
}

func (s *TransactionStore) Create(ctx context.Context, txn *model.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions
		(id, session_id, target_type, target_id, payer_id, payer_email,
		 amount, currency, payment_status, checkout_status, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err := s.DB.ExecContext(ctx, query,
		txn.ID,
		txn.SessionID,
		txn.TargetType,
		txn.TargetID,
		txn.PayerID,
		txn.PayerEmail,
		txn.Amount,
		txn.Currency,
		txn.PaymentStatus,
		txn.CheckoutStatus,
		txn.Metadata,
		txn.CreatedAt,
	)
	return err
}

func (s *TransactionStore) GetBySessionID(ctx context.Context, sessionID string) (*model.PaymentTransaction, error) {
	query := `
		SELECT id, session_id, target_type, target_id, payer_id, payer_email,
		       amount, currency, payment_status, checkout_status, metadata,
		       created_at, completed_at
		FROM payment_transactions WHERE session_id=$1
	`

	var (
		txn         model.PaymentTransaction
		completedAt sql.NullTime
	)

	err := s.DB.QueryRowContext(ctx, query, sessionID).Scan(
		&txn.ID,
		&txn.SessionID,
		&txn.TargetType,
		&txn.TargetID,
		&txn.PayerID,
		&txn.PayerEmail,
		&txn.Amount,
		&txn.Currency,
		&txn.PaymentStatus,
		&txn.CheckoutStatus,
		&txn.Metadata,
		&txn.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		txn.CompletedAt = &t
	}
	return &txn, nil
}

func (s *TransactionStore) CompletedExists(ctx context.Context, targetType model.TargetType, targetID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM payment_transactions
			WHERE target_type=$1 AND target_id=$2 AND payment_status='completed'
		)
	`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, targetType, targetID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *TransactionStore) UpdateCheckoutStatus(ctx context.Context, sessionID, checkoutStatus string) error {
	query := `
		UPDATE payment_transactions
		SET checkout_status=$1
		WHERE session_id=$2
	`
	_, err := s.DB.ExecContext(ctx, query, checkoutStatus, sessionID)
	return err
}

// MarkCompleted is the serialization point for concurrent reconciliations:
// the WHERE clause only matches a not-yet-completed row, so exactly one
// caller observes RowsAffected==1 and performs the content-item update.
func (s *TransactionStore) MarkCompleted(ctx context.Context, sessionID, checkoutStatus string, completedAt time.Time) (bool, error) {
	query := `
		UPDATE payment_transactions
		SET payment_status='completed', completed_at=$1, checkout_status=$2
		WHERE session_id=$3 AND payment_status != 'completed'
	`
	res, err := s.DB.ExecContext(ctx, query, completedAt, checkoutStatus, sessionID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (s *TransactionStore) MarkTerminal(ctx context.Context, sessionID string, status model.PaymentStatus, checkoutStatus string) (bool, error) {
	query := `
		UPDATE payment_transactions
		SET payment_status=$1, checkout_status=$2
		WHERE session_id=$3 AND payment_status='pending'
	`
	res, err := s.DB.ExecContext(ctx, query, status, checkoutStatus, sessionID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
