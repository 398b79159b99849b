package handler

import (
	"net/http"

	"github.com/efreitasn/liveauction/internal/service"
	"github.com/go-chi/chi/v5"
)

// StatsHandler handles HTTP requests for auction read models.
type StatsHandler struct {
	statsSvc *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

type saleResponse struct {
	SaleID   string `json:"sale_id"`
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	Price    int64  `json:"price"`
	SoldAt   string `json:"sold_at"`
}

type statsResponse struct {
	AuctionID            string         `json:"auction_id"`
	TotalPlayers         int            `json:"total_players"`
	SoldPlayers          int            `json:"sold_players"`
	UnsoldPlayers        int            `json:"unsold_players"`
	RemainingInQueue     int            `json:"remaining_in_queue"`
	CurrentlyAuctioning  int            `json:"currently_auctioning"`
	CompletionPercentage int64          `json:"completion_percentage"`
	TotalSpent           int64          `json:"total_spent"`
	AverageSalePrice     float64        `json:"average_sale_price"`
	TopSales             []saleResponse `json:"top_sales"`
}

type teamBiddingResponse struct {
	TeamID       string  `json:"team_id"`
	TeamName     string  `json:"team_name"`
	CoinsLeft    int64   `json:"coins_left"`
	TotalCoins   int64   `json:"total_coins"`
	PlayersOwned int     `json:"players_owned"`
	CanBid       bool    `json:"can_bid"`
	BudgetUsed   float64 `json:"budget_used_percentage"`
}

type teamBiddingListResponse struct {
	Teams []teamBiddingResponse `json:"teams"`
}

type dashboardTeamResponse struct {
	TeamID          string `json:"team_id"`
	TeamName        string `json:"team_name"`
	CoinsLeft       int64  `json:"coins_left"`
	IsCurrentBidder bool   `json:"is_current_bidder"`
}

type dashboardResponse struct {
	AuctionID        string                  `json:"auction_id"`
	Version          uint64                  `json:"version"`
	Status           string                  `json:"status"`
	CurrentPlayer    *playerResponse         `json:"current_player"`
	NextPlayers      []playerResponse        `json:"next_players"`
	CurrentBid       *int64                  `json:"current_bid"`
	BidHistory       []bidResponse           `json:"bid_history"`
	TimeRemainingMs  int64                   `json:"time_remaining_ms"`
	Teams            []dashboardTeamResponse `json:"teams"`
	PlayersRemaining int                     `json:"players_remaining"`
	UnsoldCount      int                     `json:"unsold_count"`
}

// GetStats handles GET /auctions/{auction_id}/stats.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsSvc.Stats(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := statsResponse{
		AuctionID:            stats.AuctionID,
		TotalPlayers:         stats.TotalPlayers,
		SoldPlayers:          stats.SoldPlayers,
		UnsoldPlayers:        stats.UnsoldPlayers,
		RemainingInQueue:     stats.RemainingInQueue,
		CurrentlyAuctioning:  stats.CurrentlyAuctioning,
		CompletionPercentage: stats.CompletionPercentage,
		TotalSpent:           stats.TotalSpent,
		AverageSalePrice:     stats.AverageSalePrice.InexactFloat64(),
		TopSales:             make([]saleResponse, len(stats.TopSales)),
	}
	for i, s := range stats.TopSales {
		resp.TopSales[i] = saleResponse{
			SaleID:   s.SaleID,
			PlayerID: s.PlayerID,
			TeamID:   s.TeamID,
			Price:    s.Price,
			SoldAt:   formatTime(s.SoldAt),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetTeamBidding handles GET /auctions/{auction_id}/teams/bidding.
func (h *StatsHandler) GetTeamBidding(w http.ResponseWriter, r *http.Request) {
	teams, err := h.statsSvc.TeamBidding(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := teamBiddingListResponse{Teams: make([]teamBiddingResponse, len(teams))}
	for i, t := range teams {
		resp.Teams[i] = teamBiddingResponse{
			TeamID:       t.TeamID,
			TeamName:     t.TeamName,
			CoinsLeft:    t.CoinsLeft,
			TotalCoins:   t.TotalCoins,
			PlayersOwned: t.PlayersOwned,
			CanBid:       t.CanBid,
			BudgetUsed:   t.BudgetUsed.InexactFloat64(),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetDashboard handles GET /auctions/{auction_id}/dashboard.
func (h *StatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.statsSvc.Dashboard(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := dashboardResponse{
		AuctionID:        d.AuctionID,
		Version:          d.Version,
		Status:           string(d.Status),
		NextPlayers:      buildPlayerResponses(d.NextPlayers),
		CurrentBid:       d.CurrentBid,
		BidHistory:       buildBidViewResponses(d.BidHistory),
		TimeRemainingMs:  d.TimeRemaining.Milliseconds(),
		Teams:            make([]dashboardTeamResponse, len(d.Teams)),
		PlayersRemaining: d.PlayersRemaining,
		UnsoldCount:      d.UnsoldCount,
	}
	if d.CurrentPlayer != nil {
		p := buildPlayerResponse(*d.CurrentPlayer)
		resp.CurrentPlayer = &p
	}
	for i, t := range d.Teams {
		resp.Teams[i] = dashboardTeamResponse{
			TeamID:          t.TeamID,
			TeamName:        t.TeamName,
			CoinsLeft:       t.CoinsLeft,
			IsCurrentBidder: t.IsCurrentBidder,
		}
	}
	setVersion(w, d.Version)
	WriteJSON(w, http.StatusOK, resp)
}
