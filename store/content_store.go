package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avisharm-alt/curesite/model"
	"github.com/avisharm-alt/curesite/payment"
)

// ContentStore implements payment.ContentCollection against one content
// table. Posters and journal articles share the same payment-field shape,
// so each payable collection is a constructor call, matching the
// resolver's one-entry-per-target-type table.
type ContentStore struct {
	DB    *sql.DB
	table string
}

func NewPosterStore(db *sql.DB) *ContentStore {
	return &ContentStore{DB: db, table: "posters"}
}

func NewArticleStore(db *sql.DB) *ContentStore {
	return &ContentStore{DB: db, table: "journal_articles"}
}

func (s *ContentStore) Get(ctx context.Context, id string) (*payment.ContentItem, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, status, payment_status
		FROM %s WHERE id=$1
	`, s.table)

	var item payment.ContentItem
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.OwnerID,
		&item.Title,
		&item.EditorialStatus,
		&item.PaymentStatus,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ContentStore) SetPaymentLink(ctx context.Context, id, checkoutURL, sessionID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET payment_link=$1, stripe_session_id=$2
		WHERE id=$3
	`, s.table)
	_, err := s.DB.ExecContext(ctx, query, checkoutURL, sessionID, id)
	return err
}

// UpdateOnCompletion flips the item's denormalized payment fields. The
// write is absolute, so replaying it for the same transaction converges
// to the same state.
func (s *ContentStore) UpdateOnCompletion(ctx context.Context, id string, txn *model.PaymentTransaction) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET payment_status='completed', payment_completed_at=$1
		WHERE id=$2
	`, s.table)
	_, err := s.DB.ExecContext(ctx, query, txn.CompletedAt, id)
	return err
}
