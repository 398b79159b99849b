package service

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/engine"
	"github.com/efreitasn/liveauction/internal/store"
)

const (
	dashboardNextPlayers = 5
	topSalesLimit        = 5
)

var hundred = decimal.NewFromInt(100)

// AuctionStats summarises an auction's progress.
type AuctionStats struct {
	AuctionID            string
	TotalPlayers         int
	SoldPlayers          int
	UnsoldPlayers        int
	RemainingInQueue     int
	CurrentlyAuctioning  int
	CompletionPercentage int64
	TotalSpent           int64
	AverageSalePrice     decimal.Decimal // two places; zero when nothing sold
	TopSales             []*domain.Sale
}

// TeamBiddingInfo is one team's bidding capacity.
type TeamBiddingInfo struct {
	TeamID       string
	TeamName     string
	CoinsLeft    int64
	TotalCoins   int64
	PlayersOwned int
	CanBid       bool
	BudgetUsed   decimal.Decimal // percent of the budget spent, one place
}

// DashboardTeam is a team row on the dashboard.
type DashboardTeam struct {
	TeamID          string
	TeamName        string
	CoinsLeft       int64
	IsCurrentBidder bool
}

// Dashboard is the combined live view an auctioneer screen polls.
type Dashboard struct {
	AuctionID        string
	Version          uint64
	Status           engine.Status
	CurrentPlayer    *PlayerView
	NextPlayers      []PlayerView
	CurrentBid       *int64
	BidHistory       []BidView // newest first
	TimeRemaining    time.Duration
	Teams            []DashboardTeam
	PlayersRemaining int
	UnsoldCount      int
}

// StatsService builds read models over the registry, the sale book and
// the live engine.
type StatsService struct {
	engine   *engine.Engine
	auctions *store.AuctionStore
	teams    *store.TeamStore
	players  *store.PlayerStore
	sales    *store.SaleStore
}

// NewStatsService creates a new StatsService with the given dependencies.
func NewStatsService(
	eng *engine.Engine,
	auctions *store.AuctionStore,
	teams *store.TeamStore,
	players *store.PlayerStore,
	sales *store.SaleStore,
) *StatsService {
	return &StatsService{
		engine:   eng,
		auctions: auctions,
		teams:    teams,
		players:  players,
		sales:    sales,
	}
}

// liveSnapshot returns the auction's snapshot, or nil if it has no live
// state yet.
func (s *StatsService) liveSnapshot(auctionID string) (*engine.Snapshot, error) {
	snap, err := s.engine.Snapshot(auctionID)
	if errors.Is(err, domain.ErrStateNotFound) {
		return nil, nil
	}
	return snap, err
}

// Stats counts the auction's players by outcome. An auction without live
// state reports nothing queued or unsold.
func (s *StatsService) Stats(auctionID string) (*AuctionStats, error) {
	if !s.auctions.Exists(auctionID) {
		return nil, domain.ErrAuctionNotFound
	}
	snap, err := s.liveSnapshot(auctionID)
	if err != nil {
		return nil, err
	}

	stats := &AuctionStats{AuctionID: auctionID}
	for _, p := range s.players.ListByAuction(auctionID) {
		stats.TotalPlayers++
		if viewPlayer(p).Sold {
			stats.SoldPlayers++
		}
	}
	if snap != nil {
		stats.UnsoldPlayers = len(snap.Unsold)
		stats.RemainingInQueue = snap.PlayersRemaining
		if snap.CurrentPlayerID != "" {
			stats.CurrentlyAuctioning = 1
		}
	}
	stats.CompletionPercentage = completionPercentage(stats.SoldPlayers+stats.UnsoldPlayers, stats.TotalPlayers)

	summary := s.sales.Summary(auctionID)
	stats.TotalSpent = summary.Total
	stats.AverageSalePrice = averagePrice(summary.Total, summary.Count)
	stats.TopSales = s.sales.Top(auctionID, topSalesLimit)
	return stats, nil
}

// completionPercentage returns done/total as a whole percentage, rounded
// half up.
func completionPercentage(done, total int) int64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(done)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).
		IntPart()
}

func averagePrice(total int64, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(count))).Round(2)
}

// TeamBidding reports every team's remaining capacity in registration
// order.
func (s *StatsService) TeamBidding(auctionID string) ([]TeamBiddingInfo, error) {
	if !s.auctions.Exists(auctionID) {
		return nil, domain.ErrAuctionNotFound
	}
	teams := s.teams.ListByAuction(auctionID)
	result := make([]TeamBiddingInfo, 0, len(teams))
	for _, t := range teams {
		v := viewTeam(t)
		used := decimal.Zero
		if v.BudgetTotal > 0 {
			used = decimal.NewFromInt(v.Spent).Mul(hundred).Div(decimal.NewFromInt(v.BudgetTotal)).Round(1)
		}
		result = append(result, TeamBiddingInfo{
			TeamID:       v.TeamID,
			TeamName:     v.Name,
			CoinsLeft:    v.BudgetLeft,
			TotalCoins:   v.BudgetTotal,
			PlayersOwned: v.PlayerCount,
			CanBid:       v.BudgetLeft > 0,
			BudgetUsed:   used,
		})
	}
	return result, nil
}

// Dashboard assembles the live view. It requires live state.
func (s *StatsService) Dashboard(auctionID string) (*Dashboard, error) {
	snap, err := s.engine.Snapshot(auctionID)
	if err != nil {
		return nil, err
	}

	next := snap.Queue
	if len(next) > dashboardNextPlayers {
		next = next[:dashboardNextPlayers]
	}

	history := make([]engine.Bid, len(snap.Bids))
	for i, b := range snap.Bids {
		history[len(snap.Bids)-1-i] = b
	}

	d := &Dashboard{
		AuctionID:        auctionID,
		Version:          snap.Version,
		Status:           snap.Status,
		NextPlayers:      playerViews(s.players, next),
		CurrentBid:       snap.CurrentBid,
		BidHistory:       bidViews(s.teams, history),
		TimeRemaining:    snap.TimeRemaining,
		PlayersRemaining: snap.PlayersRemaining,
		UnsoldCount:      len(snap.Unsold),
	}
	if snap.CurrentPlayerID != "" {
		if p, err := s.players.Get(snap.CurrentPlayerID); err == nil {
			v := viewPlayer(p)
			d.CurrentPlayer = &v
		}
	}

	teams := s.teams.ListByAuction(auctionID)
	d.Teams = make([]DashboardTeam, 0, len(teams))
	for _, t := range teams {
		v := viewTeam(t)
		d.Teams = append(d.Teams, DashboardTeam{
			TeamID:          v.TeamID,
			TeamName:        v.Name,
			CoinsLeft:       v.BudgetLeft,
			IsCurrentBidder: snap.CurrentBidderID != "" && v.TeamID == snap.CurrentBidderID,
		})
	}
	return d, nil
}
