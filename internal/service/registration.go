package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/store"
)

const maxNameLength = 100

// CreateAuctionRequest represents the input for auction creation.
type CreateAuctionRequest struct {
	Name          string
	Auctioneer    string
	StartingCoins float64
	StartsAt      time.Time
	EndsAt        time.Time
}

// CreateTeamRequest represents the input for team registration. A nil
// Coins grants the auction's starting coins.
type CreateTeamRequest struct {
	Name  string
	Owner string
	Coins *float64
}

// CreatePlayerRequest represents the input for player registration.
type CreatePlayerRequest struct {
	Name        string
	Year        string
	Branch      string
	Preferences []string
	Achievement string
}

// TeamView is a consistent copy of a team's ledger.
type TeamView struct {
	TeamID      string
	AuctionID   string
	Name        string
	Owner       string
	BudgetTotal int64
	BudgetLeft  int64
	Spent       int64
	PlayerIDs   []string
	PlayerCount int
	CreatedAt   time.Time
}

// PlayerView is a consistent copy of a player record.
type PlayerView struct {
	PlayerID    string
	AuctionID   string
	Name        string
	Year        string
	Branch      string
	Preferences []string
	Achievement string
	Sold        bool
	TeamID      string
	FinalPrice  *int64
	SoldAt      *time.Time
	CreatedAt   time.Time
}

func viewTeam(t *domain.Team) TeamView {
	t.Mu.Lock()
	defer t.Mu.Unlock()

	ids := make([]string, len(t.PlayerIDs))
	copy(ids, t.PlayerIDs)
	return TeamView{
		TeamID:      t.TeamID,
		AuctionID:   t.AuctionID,
		Name:        t.Name,
		Owner:       t.Owner,
		BudgetTotal: t.BudgetTotal,
		BudgetLeft:  t.BudgetLeft,
		Spent:       t.Spent(),
		PlayerIDs:   ids,
		PlayerCount: t.PlayerCount,
		CreatedAt:   t.CreatedAt,
	}
}

func viewPlayer(p *domain.Player) PlayerView {
	p.Mu.Lock()
	defer p.Mu.Unlock()

	v := PlayerView{
		PlayerID:    p.PlayerID,
		AuctionID:   p.AuctionID,
		Name:        p.Name,
		Year:        p.Year,
		Branch:      p.Branch,
		Preferences: append([]string(nil), p.Preferences...),
		Achievement: p.Achievement,
		Sold:        p.Sold,
		TeamID:      p.TeamID,
		CreatedAt:   p.CreatedAt,
	}
	if p.Sold {
		price := p.FinalPrice
		v.FinalPrice = &price
		if p.SoldAt != nil {
			at := *p.SoldAt
			v.SoldAt = &at
		}
	}
	return v
}

// RegistrationService handles the auction, team and player records the
// live engine runs against.
type RegistrationService struct {
	auctions *store.AuctionStore
	teams    *store.TeamStore
	players  *store.PlayerStore
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(auctions *store.AuctionStore, teams *store.TeamStore, players *store.PlayerStore) *RegistrationService {
	return &RegistrationService{
		auctions: auctions,
		teams:    teams,
		players:  players,
	}
}

func validateName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &domain.ValidationError{Message: field + " is required"}
	}
	if len(name) > maxNameLength {
		return "", &domain.ValidationError{Message: fmt.Sprintf("%s must be at most %d characters", field, maxNameLength)}
	}
	return name, nil
}

// CreateAuction validates the request and stores a new auction in the
// registering phase.
func (s *RegistrationService) CreateAuction(req CreateAuctionRequest) (*domain.Auction, error) {
	name, err := validateName("name", req.Name)
	if err != nil {
		return nil, err
	}
	coins, err := domain.CoinsFromFloat(req.StartingCoins)
	if err != nil || coins <= 0 {
		return nil, &domain.ValidationError{Message: "starting_coins must be a positive whole number"}
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return nil, &domain.ValidationError{Message: "starts_at and ends_at are required"}
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, &domain.ValidationError{Message: "ends_at must be after starts_at"}
	}

	auction := &domain.Auction{
		AuctionID:     uuid.New().String(),
		Name:          name,
		Auctioneer:    strings.TrimSpace(req.Auctioneer),
		StartingCoins: coins,
		Status:        domain.AuctionStatusRegistering,
		StartsAt:      req.StartsAt.UTC(),
		EndsAt:        req.EndsAt.UTC(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.auctions.Create(auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// GetAuction retrieves an auction by ID.
func (s *RegistrationService) GetAuction(auctionID string) (*domain.Auction, error) {
	return s.auctions.Get(auctionID)
}

// SetAuctionStatus moves an auction to another phase. An ended auction
// stays ended.
func (s *RegistrationService) SetAuctionStatus(auctionID string, status domain.AuctionStatus) (*domain.Auction, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown status: %s. Must be one of: registering, live, ended, idle", status),
		}
	}
	current, err := s.auctions.Get(auctionID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.AuctionStatusEnded && status != domain.AuctionStatusEnded {
		return nil, domain.ErrInvalidState
	}
	return s.auctions.SetStatus(auctionID, status)
}

// CreateTeam registers a team in the auction with its full coin budget.
func (s *RegistrationService) CreateTeam(auctionID string, req CreateTeamRequest) (*TeamView, error) {
	auction, err := s.auctions.Get(auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status == domain.AuctionStatusEnded {
		return nil, domain.ErrInvalidState
	}
	name, err := validateName("name", req.Name)
	if err != nil {
		return nil, err
	}

	budget := auction.StartingCoins
	if req.Coins != nil {
		budget, err = domain.CoinsFromFloat(*req.Coins)
		if err != nil || budget < 0 {
			return nil, &domain.ValidationError{Message: "coins must be a non-negative whole number"}
		}
	}

	team := &domain.Team{
		TeamID:      uuid.New().String(),
		AuctionID:   auctionID,
		Name:        name,
		Owner:       strings.TrimSpace(req.Owner),
		BudgetTotal: budget,
		BudgetLeft:  budget,
		PlayerIDs:   []string{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.teams.Create(team); err != nil {
		return nil, err
	}
	v := viewTeam(team)
	return &v, nil
}

// GetTeam returns a consistent copy of a team's ledger.
func (s *RegistrationService) GetTeam(teamID string) (*TeamView, error) {
	team, err := s.teams.Get(teamID)
	if err != nil {
		return nil, err
	}
	v := viewTeam(team)
	return &v, nil
}

// ListTeams returns the auction's teams in registration order.
func (s *RegistrationService) ListTeams(auctionID string) ([]TeamView, error) {
	if !s.auctions.Exists(auctionID) {
		return nil, domain.ErrAuctionNotFound
	}
	teams := s.teams.ListByAuction(auctionID)
	result := make([]TeamView, 0, len(teams))
	for _, t := range teams {
		result = append(result, viewTeam(t))
	}
	return result, nil
}

// CreatePlayer registers an unsold player in the auction.
func (s *RegistrationService) CreatePlayer(auctionID string, req CreatePlayerRequest) (*PlayerView, error) {
	auction, err := s.auctions.Get(auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status == domain.AuctionStatusEnded {
		return nil, domain.ErrInvalidState
	}
	name, err := validateName("name", req.Name)
	if err != nil {
		return nil, err
	}
	prefs := make([]string, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}

	player := &domain.Player{
		PlayerID:    uuid.New().String(),
		AuctionID:   auctionID,
		Name:        name,
		Year:        strings.TrimSpace(req.Year),
		Branch:      strings.TrimSpace(req.Branch),
		Preferences: prefs,
		Achievement: strings.TrimSpace(req.Achievement),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.players.Create(player); err != nil {
		return nil, err
	}
	v := viewPlayer(player)
	return &v, nil
}

// GetPlayer returns a consistent copy of a player record.
func (s *RegistrationService) GetPlayer(playerID string) (*PlayerView, error) {
	player, err := s.players.Get(playerID)
	if err != nil {
		return nil, err
	}
	v := viewPlayer(player)
	return &v, nil
}

// ListPlayers returns the auction's players in registration order.
func (s *RegistrationService) ListPlayers(auctionID string) ([]PlayerView, error) {
	if !s.auctions.Exists(auctionID) {
		return nil, domain.ErrAuctionNotFound
	}
	players := s.players.ListByAuction(auctionID)
	result := make([]PlayerView, 0, len(players))
	for _, p := range players {
		result = append(result, viewPlayer(p))
	}
	return result, nil
}
