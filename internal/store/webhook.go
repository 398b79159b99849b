package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/liveauction/internal/domain"
)

// subscriptionKey identifies one subscriber of one auction event.
type subscriptionKey struct {
	event string
	url   string
}

// WebhookStore is a thread-safe in-memory store for webhooks.
// Primary index: webhook_id → webhook.
// Secondary index: auction_id → (event, url) → webhook, so several display
// layers can follow the same auction event.
type WebhookStore struct {
	mu        sync.RWMutex
	webhooks  map[string]*domain.Webhook
	byAuction map[string]map[subscriptionKey]*domain.Webhook
}

// NewWebhookStore creates an empty WebhookStore.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		webhooks:  make(map[string]*domain.Webhook),
		byAuction: make(map[string]map[subscriptionKey]*domain.Webhook),
	}
}

// Upsert inserts a subscription unless one already exists for the same
// (auction_id, event, url). It returns the stored webhook and whether it
// was newly created; an existing subscription keeps its webhook_id.
func (s *WebhookStore) Upsert(w *domain.Webhook) (*domain.Webhook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := subscriptionKey{event: w.Event, url: w.URL}
	subs := s.byAuction[w.AuctionID]
	if existing, ok := subs[key]; ok {
		return existing, false
	}
	if subs == nil {
		subs = make(map[subscriptionKey]*domain.Webhook)
		s.byAuction[w.AuctionID] = subs
	}
	subs[key] = w
	s.webhooks[w.WebhookID] = w
	return w, true
}

// Get retrieves a webhook by ID. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
func (s *WebhookStore) Get(id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return w, nil
}

// ListByAuction returns all webhooks for an auction ordered by creation
// time, then webhook_id. Returns an empty slice if there are none.
func (s *WebhookStore) ListByAuction(auctionID string) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Webhook, 0, len(s.byAuction[auctionID]))
	for _, w := range s.byAuction[auctionID] {
		result = append(result, w)
	}
	sortWebhooks(result)
	return result
}

// Subscribers returns the webhooks following event on the auction.
func (s *WebhookStore) Subscribers(auctionID, event string) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Webhook
	for key, w := range s.byAuction[auctionID] {
		if key.event == event {
			result = append(result, w)
		}
	}
	sortWebhooks(result)
	return result
}

// Delete removes a webhook by ID. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
func (s *WebhookStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[id]
	if !ok {
		return domain.ErrWebhookNotFound
	}
	delete(s.webhooks, id)

	if subs, ok := s.byAuction[w.AuctionID]; ok {
		delete(subs, subscriptionKey{event: w.Event, url: w.URL})
		if len(subs) == 0 {
			delete(s.byAuction, w.AuctionID)
		}
	}
	return nil
}

func sortWebhooks(ws []*domain.Webhook) {
	sort.Slice(ws, func(i, j int) bool {
		if !ws[i].CreatedAt.Equal(ws[j].CreatedAt) {
			return ws[i].CreatedAt.Before(ws[j].CreatedAt)
		}
		return ws[i].WebhookID < ws[j].WebhookID
	})
}
