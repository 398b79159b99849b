package store

import (
	"sync"

	"github.com/efreitasn/liveauction/internal/domain"
)

// AuctionStore is a thread-safe in-memory store for auction records,
// keyed by auction_id with a uniqueness index on name. It doubles as the
// registry the live engine consults before honoring any operation.
type AuctionStore struct {
	mu       sync.RWMutex
	auctions map[string]*domain.Auction
	byName   map[string]string // name → auction_id
}

// NewAuctionStore creates an empty AuctionStore.
func NewAuctionStore() *AuctionStore {
	return &AuctionStore{
		auctions: make(map[string]*domain.Auction),
		byName:   make(map[string]string),
	}
}

// Create adds an auction to the store. It returns
// domain.ErrAuctionAlreadyExists if the ID or the name is taken.
func (s *AuctionStore) Create(a *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.auctions[a.AuctionID]; exists {
		return domain.ErrAuctionAlreadyExists
	}
	if _, exists := s.byName[a.Name]; exists {
		return domain.ErrAuctionAlreadyExists
	}
	cp := *a
	s.auctions[a.AuctionID] = &cp
	s.byName[a.Name] = a.AuctionID
	return nil
}

// Get returns a copy of the auction record. It returns
// domain.ErrAuctionNotFound if the auction does not exist.
func (s *AuctionStore) Get(id string) (*domain.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

// Exists returns true if an auction with the given ID exists.
func (s *AuctionStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.auctions[id]
	return ok
}

// SetStatus moves the auction to status and returns the updated copy.
func (s *AuctionStore) SetStatus(id string, status domain.AuctionStatus) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}
