package store

import (
	"sync"

	"github.com/efreitasn/liveauction/internal/domain"
)

// TeamStore is a thread-safe in-memory store for teams, with a primary
// index by team_id and a secondary index by auction_id in registration
// order. Ledger fields on the returned teams are guarded by Team.Mu.
type TeamStore struct {
	mu           sync.RWMutex
	teams        map[string]*domain.Team
	auctionTeams map[string][]*domain.Team // auction_id → teams (append-only)
}

// NewTeamStore creates an empty TeamStore.
func NewTeamStore() *TeamStore {
	return &TeamStore{
		teams:        make(map[string]*domain.Team),
		auctionTeams: make(map[string][]*domain.Team),
	}
}

// Create adds a team. It returns domain.ErrTeamAlreadyExists if the ID is
// taken or another team in the same auction has the same name.
func (s *TeamStore) Create(t *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.teams[t.TeamID]; exists {
		return domain.ErrTeamAlreadyExists
	}
	for _, other := range s.auctionTeams[t.AuctionID] {
		if other.Name == t.Name {
			return domain.ErrTeamAlreadyExists
		}
	}
	s.teams[t.TeamID] = t
	s.auctionTeams[t.AuctionID] = append(s.auctionTeams[t.AuctionID], t)
	return nil
}

// Get retrieves a team by ID. It returns domain.ErrTeamNotFound if the
// team does not exist.
func (s *TeamStore) Get(id string) (*domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return t, nil
}

// ListByAuction returns the auction's teams in registration order.
// Returns an empty slice if the auction has no teams.
func (s *TeamStore) ListByAuction(auctionID string) []*domain.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams := s.auctionTeams[auctionID]
	result := make([]*domain.Team, len(teams))
	copy(result, teams)
	return result
}
