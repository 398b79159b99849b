package store

import (
	"sync"

	"github.com/efreitasn/liveauction/internal/domain"
)

// PlayerStore is a thread-safe in-memory store for players, with a
// primary index by player_id and a secondary index by auction_id in
// registration order. Sale fields are guarded by Player.Mu.
type PlayerStore struct {
	mu             sync.RWMutex
	players        map[string]*domain.Player
	auctionPlayers map[string][]*domain.Player // auction_id → players (append-only)
}

// NewPlayerStore creates an empty PlayerStore.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		players:        make(map[string]*domain.Player),
		auctionPlayers: make(map[string][]*domain.Player),
	}
}

// Create adds a player. It returns domain.ErrPlayerAlreadyExists if the
// ID is taken.
func (s *PlayerStore) Create(p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[p.PlayerID]; exists {
		return domain.ErrPlayerAlreadyExists
	}
	s.players[p.PlayerID] = p
	s.auctionPlayers[p.AuctionID] = append(s.auctionPlayers[p.AuctionID], p)
	return nil
}

// Get retrieves a player by ID. It returns domain.ErrPlayerNotFound if the
// player does not exist.
func (s *PlayerStore) Get(id string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return p, nil
}

// ListByAuction returns the auction's players in registration order.
func (s *PlayerStore) ListByAuction(auctionID string) []*domain.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := s.auctionPlayers[auctionID]
	result := make([]*domain.Player, len(players))
	copy(result, players)
	return result
}
