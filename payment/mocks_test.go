package payment

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/avisharm-alt/curesite/gateway"
	"github.com/avisharm-alt/curesite/model"
)

// mockTransactionStore keeps transactions in a map. MarkCompleted is
// mutex-guarded and conditional, matching the SQL store's semantics.
type mockTransactionStore struct {
	mu   sync.Mutex
	rows map[string]*model.PaymentTransaction
}

func newMockTransactionStore() *mockTransactionStore {
	return &mockTransactionStore{rows: map[string]*model.PaymentTransaction{}}
}

func (s *mockTransactionStore) Create(_ context.Context, txn *model.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *txn
	s.rows[txn.SessionID] = &cp
	return nil
}

func (s *mockTransactionStore) GetBySessionID(_ context.Context, sessionID string) (*model.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.rows[sessionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *txn
	return &cp, nil
}

func (s *mockTransactionStore) CompletedExists(_ context.Context, targetType model.TargetType, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.rows {
		if txn.TargetType == targetType && txn.TargetID == targetID && txn.PaymentStatus == model.PaymentCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *mockTransactionStore) UpdateCheckoutStatus(_ context.Context, sessionID, checkoutStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if txn, ok := s.rows[sessionID]; ok {
		txn.CheckoutStatus = checkoutStatus
	}
	return nil
}

func (s *mockTransactionStore) MarkCompleted(_ context.Context, sessionID, checkoutStatus string, completedAt time.Time) (bool, error) {
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

func (s *mockTransactionStore) MarkTerminal(_ context.Context, sessionID string, status model.PaymentStatus, checkoutStatus string) (bool, error) {
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

func (s *mockTransactionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// mockCollection is one content collection; completions[id] counts how
// often the completion write ran for an item.
type mockCollection struct {
	mu          sync.Mutex
	items       map[string]*ContentItem
	completions map[string]int
	links       map[string]string
	sessionIDs  map[string]string
}

func newMockCollection() *mockCollection {
	return &mockCollection{
		items:       map[string]*ContentItem{},
		completions: map[string]int{},
		links:       map[string]string{},
		sessionIDs:  map[string]string{},
	}
}

func (c *mockCollection) add(item *ContentItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

func (c *mockCollection) Get(_ context.Context, id string) (*ContentItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (c *mockCollection) SetPaymentLink(_ context.Context, id, checkoutURL, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[id] = checkoutURL
	c.sessionIDs[id] = sessionID
	return nil
}

func (c *mockCollection) UpdateOnCompletion(_ context.Context, id string, _ *model.PaymentTransaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completions[id]++
	if item, ok := c.items[id]; ok {
		item.PaymentStatus = string(model.PaymentCompleted)
	}
	return nil
}

func (c *mockCollection) completionCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completions[id]
}

// mockGateway serves a fixed session status and records calls.
type mockGateway struct {
	mu sync.Mutex

	session   *gateway.Session
	createErr error
	created   []gateway.CreateSessionParams

	status     *gateway.SessionStatus
	statusErr  error
	statusGets int

	event     *gateway.WebhookEvent
	verifyErr error
}

func (g *mockGateway) CreateSession(_ context.Context, p gateway.CreateSessionParams) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, p)
	return g.session, nil
}

func (g *mockGateway) GetStatus(_ context.Context, _ string) (*gateway.SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusGets++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.status, nil
}

func (g *mockGateway) VerifyAndParseWebhook(_ []byte, _ string) (*gateway.WebhookEvent, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.event, nil
}

func (g *mockGateway) statusCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusGets
}

type mockPublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *mockPublisher) PublishPaymentCompletedEvent(event interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *mockPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type indexedDoc struct {
	index string
	doc   map[string]interface{}
}

type mockIndexer struct {
	mu   sync.Mutex
	docs []indexedDoc
}

func (ix *mockIndexer) IndexPublished(_ context.Context, index string, doc map[string]interface{}) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = append(ix.docs, indexedDoc{index: index, doc: doc})
	return nil
}

type mockStatusCache struct {
	mu      sync.Mutex
	entries map[string]*ReconciliationResult
}

func newMockStatusCache() *mockStatusCache {
	return &mockStatusCache{entries: map[string]*ReconciliationResult{}}
}

func (c *mockStatusCache) Get(_ context.Context, sessionID string) (*ReconciliationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[sessionID]
	return res, ok
}

func (c *mockStatusCache) Set(_ context.Context, sessionID string, res *ReconciliationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID] = res
}
