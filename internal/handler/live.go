package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/engine"
	"github.com/efreitasn/liveauction/internal/service"
	"github.com/go-chi/chi/v5"
)

// LiveHandler handles HTTP requests that drive an auction's live bidding.
//
// Every mutating endpoint honors an optional If-Match header carrying the
// state version the caller last saw; a stale version fails with 412 and
// nothing is written. Successful responses carry the new version in ETag.
type LiveHandler struct {
	liveSvc *service.LiveService
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(liveSvc *service.LiveService) *LiveHandler {
	return &LiveHandler{liveSvc: liveSvc}
}

// initializeRequest is the JSON request body for POST /auctions/{auction_id}/live.
// An omitted queue seeds every unsold player in registration order.
type initializeRequest struct {
	Queue []string `json:"queue"`
}

// advanceRequest is the JSON request body for POST .../live/advance.
type advanceRequest struct {
	WindowSeconds *float64 `json:"window_seconds"`
}

// placeBidRequest is the JSON request body for POST .../live/bids.
type placeBidRequest struct {
	TeamID string  `json:"team_id"`
	Amount float64 `json:"amount"`
}

// extendRequest is the JSON request body for POST .../live/extend.
type extendRequest struct {
	Seconds float64 `json:"seconds"`
}

type teamSummary struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

type bidResponse struct {
	BidID    string `json:"bid_id"`
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name,omitempty"`
	Amount   int64  `json:"amount"`
	PlacedAt string `json:"placed_at"`
}

type liveStateResponse struct {
	AuctionID        string          `json:"auction_id"`
	Version          uint64          `json:"version"`
	Status           string          `json:"status"`
	Queue            []string        `json:"queue"`
	Unsold           []string        `json:"unsold"`
	CurrentPlayer    *playerResponse `json:"current_player"`
	CurrentBid       *int64          `json:"current_bid"`
	CurrentBidder    *teamSummary    `json:"current_bidder"`
	CountdownEndsAt  *string         `json:"countdown_ends_at"`
	TimeRemainingMs  int64           `json:"time_remaining_ms"`
	Expired          bool            `json:"expired"`
	Bids             []bidResponse   `json:"bids"`
	PlayersRemaining int             `json:"players_remaining"`
	Complete         bool            `json:"complete"`
	InitializedAt    string          `json:"initialized_at"`
}

type advanceResponse struct {
	PlayerID        string  `json:"player_id"`
	CountdownEndsAt *string `json:"countdown_ends_at"`
	Version         uint64  `json:"version"`
}

type placeBidResponse struct {
	bidResponse
	Version uint64 `json:"version"`
}

type bidHistoryResponse struct {
	Bids []bidResponse `json:"bids"`
}

type extendResponse struct {
	CountdownEndsAt string `json:"countdown_ends_at"`
	Version         uint64 `json:"version"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Version uint64 `json:"version"`
}

type settleResponse struct {
	SaleID         string `json:"sale_id"`
	PlayerID       string `json:"player_id"`
	TeamID         string `json:"team_id"`
	Amount         int64  `json:"amount"`
	SoldAt         string `json:"sold_at"`
	HasMorePlayers bool   `json:"has_more_players"`
	Version        uint64 `json:"version"`
}

type passResponse struct {
	PlayerID       string `json:"player_id"`
	HasMorePlayers bool   `json:"has_more_players"`
	Version        uint64 `json:"version"`
}

type requeueResponse struct {
	Requeued int    `json:"requeued"`
	Version  uint64 `json:"version"`
}

type countdownResponse struct {
	Expired         bool    `json:"expired"`
	TimeRemainingMs int64   `json:"time_remaining_ms"`
	CountdownEndsAt *string `json:"countdown_ends_at"`
}

// Initialize handles POST /auctions/{auction_id}/live.
func (h *LiveHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := ParseOptionalJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	state, err := h.liveSvc.Initialize(chi.URLParam(r, "auction_id"), req.Queue)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, state.Version)
	WriteJSON(w, http.StatusCreated, buildLiveStateResponse(state))
}

// GetState handles GET /auctions/{auction_id}/live.
func (h *LiveHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.liveSvc.State(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, state.Version)
	WriteJSON(w, http.StatusOK, buildLiveStateResponse(state))
}

// Reset handles DELETE /auctions/{auction_id}/live.
func (h *LiveHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.liveSvc.Reset(chi.URLParam(r, "auction_id")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance handles POST /auctions/{auction_id}/live/advance.
func (h *LiveHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	var req advanceRequest
	if err := ParseOptionalJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var window time.Duration
	if req.WindowSeconds != nil {
		d, err := secondsToDuration("window_seconds", *req.WindowSeconds)
		if err != nil {
			mapError(w, err)
			return
		}
		if d <= 0 {
			mapError(w, &domain.ValidationError{Message: "window_seconds must be > 0"})
			return
		}
		window = d
	}

	res, err := h.liveSvc.Advance(chi.URLParam(r, "auction_id"), window, ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, res.Version)
	WriteJSON(w, http.StatusOK, advanceResponse{
		PlayerID:        res.PlayerID,
		CountdownEndsAt: formatTimePtr(res.CountdownEndsAt),
		Version:         res.Version,
	})
}

// PlaceBid handles POST /auctions/{auction_id}/live/bids.
func (h *LiveHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	var req placeBidRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.TeamID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "team_id is required")
		return
	}
	// Non-positive amounts are left to the engine so its check order holds.
	amount, err := domain.CoinsFromFloat(req.Amount)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	bid, version, err := h.liveSvc.PlaceBid(chi.URLParam(r, "auction_id"), req.TeamID, amount, ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, version)
	WriteJSON(w, http.StatusCreated, placeBidResponse{
		bidResponse: buildBidResponse(bid.Bid, bid.TeamName),
		Version:     version,
	})
}

// BidHistory handles GET /auctions/{auction_id}/live/bids.
func (h *LiveHandler) BidHistory(w http.ResponseWriter, r *http.Request) {
	bids, err := h.liveSvc.BidHistory(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, bidHistoryResponse{Bids: buildBidViewResponses(bids)})
}

// Extend handles POST /auctions/{auction_id}/live/extend.
func (h *LiveHandler) Extend(w http.ResponseWriter, r *http.Request) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	var req extendRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	delta, err := secondsToDuration("seconds", req.Seconds)
	if err != nil {
		mapError(w, err)
		return
	}

	endsAt, version, err := h.liveSvc.Extend(chi.URLParam(r, "auction_id"), delta, ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, version)
	WriteJSON(w, http.StatusOK, extendResponse{
		CountdownEndsAt: formatTime(endsAt),
		Version:         version,
	})
}

// Pause handles POST /auctions/{auction_id}/live/pause.
func (h *LiveHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.liveSvc.Pause)
}

// Resume handles POST /auctions/{auction_id}/live/resume.
func (h *LiveHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.liveSvc.Resume)
}

func (h *LiveHandler) setStatus(w http.ResponseWriter, r *http.Request, fn func(string, uint64) (engine.Status, uint64, error)) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	status, version, err := fn(chi.URLParam(r, "auction_id"), ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, version)
	WriteJSON(w, http.StatusOK, statusResponse{Status: string(status), Version: version})
}

// Settle handles POST /auctions/{auction_id}/live/settle.
func (h *LiveHandler) Settle(w http.ResponseWriter, r *http.Request) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	res, err := h.liveSvc.Settle(chi.URLParam(r, "auction_id"), ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, res.Version)
	WriteJSON(w, http.StatusOK, settleResponse{
		SaleID:         res.SaleID,
		PlayerID:       res.PlayerID,
		TeamID:         res.TeamID,
		Amount:         res.Amount,
		SoldAt:         formatTime(res.SoldAt),
		HasMorePlayers: res.HasMorePlayers,
		Version:        res.Version,
	})
}

// Pass handles POST /auctions/{auction_id}/live/pass.
func (h *LiveHandler) Pass(w http.ResponseWriter, r *http.Request) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	res, err := h.liveSvc.Pass(chi.URLParam(r, "auction_id"), ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, res.Version)
	WriteJSON(w, http.StatusOK, passResponse{
		PlayerID:       res.PlayerID,
		HasMorePlayers: res.HasMorePlayers,
		Version:        res.Version,
	})
}

// Requeue handles POST /auctions/{auction_id}/live/requeue.
func (h *LiveHandler) Requeue(w http.ResponseWriter, r *http.Request) {
	ifVersion, ok := ifMatch(w, r)
	if !ok {
		return
	}
	moved, version, err := h.liveSvc.RequeueUnsold(chi.URLParam(r, "auction_id"), ifVersion)
	if err != nil {
		mapError(w, err)
		return
	}
	setVersion(w, version)
	WriteJSON(w, http.StatusOK, requeueResponse{Requeued: moved, Version: version})
}

// Queue handles GET /auctions/{auction_id}/live/queue.
func (h *LiveHandler) Queue(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a positive integer")
			return
		}
		limit = n
	}

	players, err := h.liveSvc.Queue(chi.URLParam(r, "auction_id"), limit)
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, playerListResponse{Players: buildPlayerResponses(players)})
}

// Unsold handles GET /auctions/{auction_id}/live/unsold.
func (h *LiveHandler) Unsold(w http.ResponseWriter, r *http.Request) {
	players, err := h.liveSvc.Unsold(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, playerListResponse{Players: buildPlayerResponses(players)})
}

// Countdown handles GET /auctions/{auction_id}/live/countdown.
func (h *LiveHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	cs, err := h.liveSvc.Countdown(chi.URLParam(r, "auction_id"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, countdownResponse{
		Expired:         cs.Expired,
		TimeRemainingMs: cs.TimeRemaining.Milliseconds(),
		CountdownEndsAt: formatTimePtr(cs.EndsAt),
	})
}

// ifMatch reads the optional If-Match precondition. Both the quoted ETag
// form and a bare number are accepted; "*" or no header means
// unconditional. On a malformed value it writes a 400 and reports false.
func ifMatch(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return 0, true
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "If-Match must be a positive state version")
		return 0, false
	}
	return v, true
}

func setVersion(w http.ResponseWriter, version uint64) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatUint(version, 10)))
}

// secondsToDuration converts a JSON number of seconds, rejecting values
// that are not finite or not positive.
func secondsToDuration(field string, seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, &domain.ValidationError{Message: field + " must be a positive number"}
	}
	if seconds > math.MaxInt64/float64(time.Second) {
		return 0, &domain.ValidationError{Message: field + " is too large"}
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func buildLiveStateResponse(st *service.LiveState) liveStateResponse {
	resp := liveStateResponse{
		AuctionID:        st.AuctionID,
		Version:          st.Version,
		Status:           string(st.Status),
		Queue:            nonNil(st.Queue),
		Unsold:           nonNil(st.Unsold),
		CurrentBid:       st.CurrentBid,
		CountdownEndsAt:  formatTimePtr(st.CountdownEndsAt),
		TimeRemainingMs:  st.TimeRemaining.Milliseconds(),
		Expired:          st.Expired,
		Bids:             make([]bidResponse, len(st.Bids)),
		PlayersRemaining: st.PlayersRemaining,
		Complete:         st.Complete,
		InitializedAt:    formatTime(st.InitializedAt),
	}
	if st.CurrentPlayer != nil {
		p := buildPlayerResponse(*st.CurrentPlayer)
		resp.CurrentPlayer = &p
	}
	if st.CurrentBidderTeam != nil {
		resp.CurrentBidder = &teamSummary{
			TeamID: st.CurrentBidderTeam.TeamID,
			Name:   st.CurrentBidderTeam.Name,
		}
	}
	for i, b := range st.Bids {
		resp.Bids[i] = buildBidResponse(b, "")
	}
	return resp
}

func buildBidResponse(b engine.Bid, teamName string) bidResponse {
	return bidResponse{
		BidID:    b.BidID,
		PlayerID: b.PlayerID,
		TeamID:   b.TeamID,
		TeamName: teamName,
		Amount:   b.Amount,
		PlacedAt: formatTime(b.PlacedAt),
	}
}

func buildBidViewResponses(bids []service.BidView) []bidResponse {
	result := make([]bidResponse, len(bids))
	for i, b := range bids {
		result[i] = buildBidResponse(b.Bid, b.TeamName)
	}
	return result
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
