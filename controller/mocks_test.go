package controller

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avisharm-alt/curesite/gateway"
	"github.com/avisharm-alt/curesite/model"
	"github.com/avisharm-alt/curesite/payment"
)

// testAuth stands in for the JWT middleware and injects the caller.
func testAuth(userID, email, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_email", email)
		c.Locals("user_role", role)
		return c.Next()
	}
}

type memStore struct {
	mu   sync.Mutex
	rows map[string]*model.PaymentTransaction
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*model.PaymentTransaction{}}
}

func (s *memStore) Create(_ context.Context, txn *model.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *txn
	s.rows[txn.SessionID] = &cp
	return nil
}

func (s *memStore) GetBySessionID(_ context.Context, sessionID string) (*model.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.rows[sessionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *txn
	return &cp, nil
}

func (s *memStore) CompletedExists(_ context.Context, targetType model.TargetType, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.rows {
		if txn.TargetType == targetType && txn.TargetID == targetID && txn.PaymentStatus == model.PaymentCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpdateCheckoutStatus(_ context.Context, sessionID, checkoutStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if txn, ok := s.rows[sessionID]; ok {
		txn.CheckoutStatus = checkoutStatus
	}
	return nil
}

func (s *memStore) MarkCompleted(_ context.Context, sessionID, checkoutStatus string, completedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.rows[sessionID]
	if !ok || txn.PaymentStatus == model.PaymentCompleted {
		return false, nil
	}
	txn.PaymentStatus = model.PaymentCompleted
	txn.CheckoutStatus = checkoutStatus
	at := completedAt
	txn.CompletedAt = &at
	return true, nil
}

func (s *memStore) MarkTerminal(_ context.Context, sessionID string, status model.PaymentStatus, checkoutStatus string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.rows[sessionID]
	if !ok || txn.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	txn.PaymentStatus = status
	txn.CheckoutStatus = checkoutStatus
	return true, nil
}

type memCollection struct {
	mu          sync.Mutex
	items       map[string]*payment.ContentItem
	completions int
}

func newMemCollection() *memCollection {
	return &memCollection{items: map[string]*payment.ContentItem{}}
}

func (c *memCollection) add(item *payment.ContentItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

func (c *memCollection) Get(_ context.Context, id string) (*payment.ContentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (c *memCollection) SetPaymentLink(_ context.Context, id, checkoutURL, sessionID string) error {
	return nil
}

func (c *memCollection) UpdateOnCompletion(_ context.Context, id string, _ *model.PaymentTransaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completions++
	return nil
}

// fakeGateway simulates the payment processor, including signature
// verification outcomes.
type fakeGateway struct {
	mu sync.Mutex

	session   *gateway.Session
	createErr error

	status    *gateway.SessionStatus
	statusErr error

	event       *gateway.WebhookEvent
	verifyErr   error
	verifyCalls int
}

func (g *fakeGateway) CreateSession(_ context.Context, _ gateway.CreateSessionParams) (*gateway.Session, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.session, nil
}

func (g *fakeGateway) GetStatus(_ context.Context, _ string) (*gateway.SessionStatus, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.status, nil
}

func (g *fakeGateway) VerifyAndParseWebhook(_ []byte, _ string) (*gateway.WebhookEvent, error) {
	g.mu.Lock()
	g.verifyCalls++
	g.mu.Unlock()
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}
