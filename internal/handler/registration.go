package handler

import (
	"net/http"
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/service"
	"github.com/go-chi/chi/v5"
)

// RegistrationHandler handles HTTP requests for auctions, teams and players.
type RegistrationHandler struct {
	regSvc *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(regSvc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{regSvc: regSvc}
}

// createAuctionRequest is the JSON request body for POST /auctions.
type createAuctionRequest struct {
	Name          string  `json:"name"`
	Auctioneer    string  `json:"auctioneer"`
	StartingCoins float64 `json:"starting_coins"`
	StartsAt      string  `json:"starts_at"`
	EndsAt        string  `json:"ends_at"`
}

// setAuctionStatusRequest is the JSON request body for PUT /auctions/{auction_id}/status.
type setAuctionStatusRequest struct {
	Status string `json:"status"`
}

// createTeamRequest is the JSON request body for POST /auctions/{auction_id}/teams.
type createTeamRequest struct {
	Name  string   `json:"name"`
	Owner string   `json:"owner"`
	Coins *float64 `json:"coins"`
}

// createPlayerRequest is the JSON request body for POST /auctions/{auction_id}/players.
type createPlayerRequest struct {
	Name        string   `json:"name"`
	Year        string   `json:"year"`
	Branch      string   `json:"branch"`
	Preferences []string `json:"preferences"`
	Achievement string   `json:"achievement"`
}

type auctionResponse struct {
	AuctionID     string `json:"auction_id"`
	Name          string `json:"name"`
	Auctioneer    string `json:"auctioneer"`
	StartingCoins int64  `json:"starting_coins"`
	Status        string `json:"status"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	CreatedAt     string `json:"created_at"`
}

type teamResponse struct {
	TeamID      string   `json:"team_id"`
	AuctionID   string   `json:"auction_id"`
	Name        string   `json:"name"`
	Owner       string   `json:"owner"`
	BudgetTotal int64    `json:"budget_total"`
	BudgetLeft  int64    `json:"budget_left"`
	Spent       int64    `json:"spent"`
	PlayerIDs   []string `json:"player_ids"`
	PlayerCount int      `json:"player_count"`
	CreatedAt   string   `json:"created_at"`
}

type teamListResponse struct {
	Teams []teamResponse `json:"teams"`
}

type playerResponse struct {
	PlayerID    string   `json:"player_id"`
	AuctionID   string   `json:"auction_id"`
	Name        string   `json:"name"`
	Year        string   `json:"year"`
	Branch      string   `json:"branch"`
	Preferences []string `json:"preferences"`
	Achievement string   `json:"achievement"`
	Sold        bool     `json:"sold"`
	TeamID      *string  `json:"team_id"`
	FinalPrice  *int64   `json:"final_price"`
	SoldAt      *string  `json:"sold_at"`
	CreatedAt   string   `json:"created_at"`
}

type playerListResponse struct {
	Players []playerResponse `json:"players"`
}

// CreateAuction handles POST /auctions.
func (h *RegistrationHandler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	startsAt, err := parseOptionalTime("starts_at", req.StartsAt)
	if err != nil {
		mapError(w, err)
		return
	}
	endsAt, err := parseOptionalTime("ends_at", req.EndsAt)
	if err != nil {
		mapError(w, err)
		return
	}

	auction, err := h.regSvc.CreateAuction(service.CreateAuctionRequest{
		Name:          req.Name,
		Auctioneer:    req.Auctioneer,
		StartingCoins: req.StartingCoins,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildAuctionResponse(auction))
}

// GetAuction handles GET /auctions/{auction_id}.
func (h *RegistrationHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	auction, err := h.regSvc.GetAuction(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAuctionResponse(auction))
}

// SetAuctionStatus handles PUT /auctions/{auction_id}/status.
func (h *RegistrationHandler) SetAuctionStatus(w http.ResponseWriter, r *http.Request) {
	var req setAuctionStatusRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	auction, err := h.regSvc.SetAuctionStatus(chi.URLParam(r, "auction_id"), domain.AuctionStatus(req.Status))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildAuctionResponse(auction))
}

// CreateTeam handles POST /auctions/{auction_id}/teams.
func (h *RegistrationHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	team, err := h.regSvc.CreateTeam(chi.URLParam(r, "auction_id"), service.CreateTeamRequest{
		Name:  req.Name,
		Owner: req.Owner,
		Coins: req.Coins,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildTeamResponse(*team))
}

// ListTeams handles GET /auctions/{auction_id}/teams.
func (h *RegistrationHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.regSvc.ListTeams(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := teamListResponse{Teams: make([]teamResponse, len(teams))}
	for i, t := range teams {
		resp.Teams[i] = buildTeamResponse(t)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetTeam handles GET /teams/{team_id}.
func (h *RegistrationHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.regSvc.GetTeam(chi.URLParam(r, "team_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildTeamResponse(*team))
}

// CreatePlayer handles POST /auctions/{auction_id}/players.
func (h *RegistrationHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	player, err := h.regSvc.CreatePlayer(chi.URLParam(r, "auction_id"), service.CreatePlayerRequest{
		Name:        req.Name,
		Year:        req.Year,
		Branch:      req.Branch,
		Preferences: req.Preferences,
		Achievement: req.Achievement,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildPlayerResponse(*player))
}

// ListPlayers handles GET /auctions/{auction_id}/players.
func (h *RegistrationHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.regSvc.ListPlayers(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, playerListResponse{Players: buildPlayerResponses(players)})
}

// GetPlayer handles GET /players/{player_id}.
func (h *RegistrationHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.regSvc.GetPlayer(chi.URLParam(r, "player_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildPlayerResponse(*player))
}

// parseOptionalTime parses an RFC 3339 timestamp. An empty value yields the
// zero time so the service reports it as missing.
func parseOptionalTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Message: field + " must be an RFC 3339 timestamp"}
	}
	return t, nil
}

func buildAuctionResponse(a *domain.Auction) auctionResponse {
	return auctionResponse{
		AuctionID:     a.AuctionID,
		Name:          a.Name,
		Auctioneer:    a.Auctioneer,
		StartingCoins: a.StartingCoins,
		Status:        string(a.Status),
		StartsAt:      formatTime(a.StartsAt),
		EndsAt:        formatTime(a.EndsAt),
		CreatedAt:     formatTime(a.CreatedAt),
	}
}

func buildTeamResponse(t service.TeamView) teamResponse {
	ids := t.PlayerIDs
	if ids == nil {
		ids = []string{}
	}
	return teamResponse{
		TeamID:      t.TeamID,
		AuctionID:   t.AuctionID,
		Name:        t.Name,
		Owner:       t.Owner,
		BudgetTotal: t.BudgetTotal,
		BudgetLeft:  t.BudgetLeft,
		Spent:       t.Spent,
		PlayerIDs:   ids,
		PlayerCount: t.PlayerCount,
		CreatedAt:   formatTime(t.CreatedAt),
	}
}

// buildPlayerResponse renders a player. Sale fields are null until the
// player is sold.
func buildPlayerResponse(p service.PlayerView) playerResponse {
	prefs := p.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	resp := playerResponse{
		PlayerID:    p.PlayerID,
		AuctionID:   p.AuctionID,
		Name:        p.Name,
		Year:        p.Year,
		Branch:      p.Branch,
		Preferences: prefs,
		Achievement: p.Achievement,
		Sold:        p.Sold,
		FinalPrice:  p.FinalPrice,
		SoldAt:      formatTimePtr(p.SoldAt),
		CreatedAt:   formatTime(p.CreatedAt),
	}
	if p.TeamID != "" {
		teamID := p.TeamID
		resp.TeamID = &teamID
	}
	return resp
}

func buildPlayerResponses(players []service.PlayerView) []playerResponse {
	result := make([]playerResponse, len(players))
	for i, p := range players {
		result[i] = buildPlayerResponse(p)
	}
	return result
}
