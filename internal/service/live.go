package service

import (
	"log/slog"
	"time"

	"github.com/efreitasn/liveauction/internal/engine"
	"github.com/efreitasn/liveauction/internal/store"
)

const unknownTeamName = "Unknown Team"

// LiveState is an engine snapshot with the current player and standing
// bidder resolved.
type LiveState struct {
	*engine.Snapshot
	CurrentPlayer     *PlayerView
	CurrentBidderTeam *TeamView
}

// BidView is a bid with its team's name.
type BidView struct {
	engine.Bid
	TeamName string
}

// AdvanceResult describes the player opened by Advance.
type AdvanceResult struct {
	PlayerID        string
	CountdownEndsAt *time.Time
	Version         uint64
}

// LiveService drives the live engine for the HTTP layer: it resolves
// records for read models, logs every committed transition and notifies
// webhook subscribers after commit.
type LiveService struct {
	engine     *engine.Engine
	teams      *store.TeamStore
	players    *store.PlayerStore
	webhookSvc *WebhookService
	logger     *slog.Logger
	peekLimit  int
}

// NewLiveService creates a new LiveService. webhookSvc may be nil.
func NewLiveService(
	eng *engine.Engine,
	teams *store.TeamStore,
	players *store.PlayerStore,
	webhookSvc *WebhookService,
	logger *slog.Logger,
	peekLimit int,
) *LiveService {
	if peekLimit <= 0 {
		peekLimit = 10
	}
	return &LiveService{
		engine:     eng,
		teams:      teams,
		players:    players,
		webhookSvc: webhookSvc,
		logger:     logger,
		peekLimit:  peekLimit,
	}
}

// Initialize creates the live state of an auction.
func (s *LiveService) Initialize(auctionID string, queue []string) (*LiveState, error) {
	snap, err := s.engine.Initialize(auctionID, queue)
	if err != nil {
		return nil, err
	}
	s.logger.Info("live auction initialized",
		slog.String("auction_id", auctionID),
		slog.Int("queue", len(snap.Queue)),
	)
	return s.resolve(snap), nil
}

// Advance opens the next queued player.
func (s *LiveService) Advance(auctionID string, window time.Duration, ifVersion uint64) (*AdvanceResult, error) {
	playerID, version, err := s.engine.Advance(auctionID, window, ifVersion)
	if err != nil {
		return nil, err
	}
	res := &AdvanceResult{PlayerID: playerID, Version: version}
	if cs, err := s.engine.CheckCountdown(auctionID); err == nil {
		res.CountdownEndsAt = cs.EndsAt
	}
	s.logger.Info("player opened",
		slog.String("auction_id", auctionID),
		slog.String("player_id", playerID),
		slog.Uint64("version", version),
	)
	return res, nil
}

// PlaceBid records a bid and notifies bid.placed subscribers.
func (s *LiveService) PlaceBid(auctionID, teamID string, amount int64, ifVersion uint64) (*BidView, uint64, error) {
	bid, version, err := s.engine.PlaceBid(auctionID, teamID, amount, ifVersion)
	if err != nil {
		return nil, 0, err
	}
	view := BidView{Bid: bid, TeamName: s.teamName(teamID)}

	s.logger.Info("bid placed",
		slog.String("auction_id", auctionID),
		slog.String("player_id", bid.PlayerID),
		slog.String("team_id", teamID),
		slog.Int64("amount", amount),
		slog.Uint64("version", version),
	)
	if s.webhookSvc != nil {
		s.webhookSvc.DispatchBidPlaced(auctionID, view.TeamName, bid, version)
	}
	return &view, version, nil
}

// Extend pushes the current deadline back by delta.
func (s *LiveService) Extend(auctionID string, delta time.Duration, ifVersion uint64) (time.Time, uint64, error) {
	endsAt, version, err := s.engine.Extend(auctionID, delta, ifVersion)
	if err != nil {
		return time.Time{}, 0, err
	}
	s.logger.Info("countdown extended",
		slog.String("auction_id", auctionID),
		slog.Time("countdown_ends_at", endsAt),
		slog.Uint64("version", version),
	)
	return endsAt, version, nil
}

// Pause suspends bidding on the current player.
func (s *LiveService) Pause(auctionID string, ifVersion uint64) (engine.Status, uint64, error) {
	return s.logStatus(auctionID, "bidding paused")(s.engine.Pause(auctionID, ifVersion))
}

// Resume re-opens bidding on the current player.
func (s *LiveService) Resume(auctionID string, ifVersion uint64) (engine.Status, uint64, error) {
	return s.logStatus(auctionID, "bidding resumed")(s.engine.Resume(auctionID, ifVersion))
}

func (s *LiveService) logStatus(auctionID, msg string) func(engine.Status, uint64, error) (engine.Status, uint64, error) {
	return func(status engine.Status, version uint64, err error) (engine.Status, uint64, error) {
		if err == nil {
			s.logger.Info(msg,
				slog.String("auction_id", auctionID),
				slog.String("status", string(status)),
				slog.Uint64("version", version),
			)
		}
		return status, version, err
	}
}

// Settle sells the current player and notifies player.sold subscribers.
func (s *LiveService) Settle(auctionID string, ifVersion uint64) (*engine.SettleResult, error) {
	res, err := s.engine.Settle(auctionID, ifVersion)
	if err != nil {
		return nil, err
	}
	s.logger.Info("player sold",
		slog.String("auction_id", auctionID),
		slog.String("player_id", res.PlayerID),
		slog.String("team_id", res.TeamID),
		slog.Int64("amount", res.Amount),
		slog.Uint64("version", res.Version),
	)
	if s.webhookSvc != nil {
		s.webhookSvc.DispatchPlayerSold(auctionID, res)
	}
	return res, nil
}

// Pass marks the current player unsold and notifies player.unsold
// subscribers.
func (s *LiveService) Pass(auctionID string, ifVersion uint64) (*engine.PassResult, error) {
	res, err := s.engine.Pass(auctionID, ifVersion)
	if err != nil {
		return nil, err
	}
	s.logger.Info("player unsold",
		slog.String("auction_id", auctionID),
		slog.String("player_id", res.PlayerID),
		slog.Uint64("version", res.Version),
	)
	if s.webhookSvc != nil {
		s.webhookSvc.DispatchPlayerUnsold(auctionID, res)
	}
	return res, nil
}

// RequeueUnsold gives every unsold player another round.
func (s *LiveService) RequeueUnsold(auctionID string, ifVersion uint64) (int, uint64, error) {
	moved, version, err := s.engine.RequeueUnsold(auctionID, ifVersion)
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("unsold players requeued",
		slog.String("auction_id", auctionID),
		slog.Int("moved", moved),
		slog.Uint64("version", version),
	)
	return moved, version, nil
}

// Reset discards the live state of an auction.
func (s *LiveService) Reset(auctionID string) error {
	if err := s.engine.Reset(auctionID); err != nil {
		return err
	}
	s.logger.Info("live auction reset", slog.String("auction_id", auctionID))
	return nil
}

// State returns the live state with its current player and bidder resolved.
func (s *LiveService) State(auctionID string) (*LiveState, error) {
	snap, err := s.engine.Snapshot(auctionID)
	if err != nil {
		return nil, err
	}
	return s.resolve(snap), nil
}

// Queue returns up to limit upcoming players; a non-positive limit uses
// the configured default.
func (s *LiveService) Queue(auctionID string, limit int) ([]PlayerView, error) {
	if limit <= 0 {
		limit = s.peekLimit
	}
	ids, err := s.engine.PeekQueue(auctionID, limit)
	if err != nil {
		return nil, err
	}
	return playerViews(s.players, ids), nil
}

// BidHistory returns the current player's bids, newest first.
func (s *LiveService) BidHistory(auctionID string) ([]BidView, error) {
	bids, err := s.engine.BidHistory(auctionID)
	if err != nil {
		return nil, err
	}
	return bidViews(s.teams, bids), nil
}

// Unsold returns the players passed without a sale.
func (s *LiveService) Unsold(auctionID string) ([]PlayerView, error) {
	ids, err := s.engine.Unsold(auctionID)
	if err != nil {
		return nil, err
	}
	return playerViews(s.players, ids), nil
}

// Countdown reports the current bid window.
func (s *LiveService) Countdown(auctionID string) (engine.CountdownStatus, error) {
	return s.engine.CheckCountdown(auctionID)
}

func (s *LiveService) resolve(snap *engine.Snapshot) *LiveState {
	st := &LiveState{Snapshot: snap}
	if snap.CurrentPlayerID != "" {
		if p, err := s.players.Get(snap.CurrentPlayerID); err == nil {
			v := viewPlayer(p)
			st.CurrentPlayer = &v
		}
	}
	if snap.CurrentBidderID != "" {
		if t, err := s.teams.Get(snap.CurrentBidderID); err == nil {
			v := viewTeam(t)
			st.CurrentBidderTeam = &v
		}
	}
	return st
}

func (s *LiveService) teamName(teamID string) string {
	t, err := s.teams.Get(teamID)
	if err != nil {
		return unknownTeamName
	}
	return t.Name
}

// playerViews resolves ids in order, skipping any that no longer exist.
func playerViews(players *store.PlayerStore, ids []string) []PlayerView {
	result := make([]PlayerView, 0, len(ids))
	for _, id := range ids {
		p, err := players.Get(id)
		if err != nil {
			continue
		}
		result = append(result, viewPlayer(p))
	}
	return result
}

func bidViews(teams *store.TeamStore, bids []engine.Bid) []BidView {
	result := make([]BidView, 0, len(bids))
	for _, b := range bids {
		name := unknownTeamName
		if t, err := teams.Get(b.TeamID); err == nil {
			name = t.Name
		}
		result = append(result, BidView{Bid: b, TeamName: name})
	}
	return result
}
