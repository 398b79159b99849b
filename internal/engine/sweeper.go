package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
)

// EventDispatcher is an interface for dispatching live-auction
// notifications from the engine layer without depending on the service
// layer directly.
type EventDispatcher interface {
	DispatchPlayerSold(auctionID string, result *SettleResult)
	DispatchPlayerUnsold(auctionID string, result *PassResult)
}

// Sweeper closes expired bid windows on a fixed interval: a running
// player whose window has closed is settled to the standing bidder, or
// passed when nobody bid. The engine itself never does this; the sweeper
// only acts through the engine's public operations.
type Sweeper struct {
	interval   time.Duration
	engine     *Engine
	dispatcher EventDispatcher
	logger     *slog.Logger
}

// NewSweeper creates a new Sweeper with the given dependencies.
func NewSweeper(interval time.Duration, engine *Engine, dispatcher EventDispatcher, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		interval:   interval,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval and closes expired windows. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// tick inspects every live auction once. It returns the number of
// players it closed.
func (s *Sweeper) tick() int {
	closed := 0
	for _, auctionID := range s.engine.AuctionIDs() {
		if s.sweep(auctionID) {
			closed++
		}
	}
	return closed
}

// sweep closes the auction's current player if its window has expired.
// The snapshot version is used as a precondition, so an extension or a
// pause that lands in between wins and the sweep backs off.
func (s *Sweeper) sweep(auctionID string) bool {
	snap, err := s.engine.Snapshot(auctionID)
	if err != nil || snap.Status != StatusRunning || !snap.Expired {
		return false
	}

	if snap.CurrentBid == nil {
		res, err := s.engine.Pass(auctionID, snap.Version)
		if err != nil {
			s.logFailure(auctionID, "pass", err)
			return false
		}
		s.logger.Info("bid window closed without bids",
			slog.String("auction_id", auctionID),
			slog.String("player_id", res.PlayerID),
		)
		if s.dispatcher != nil {
			s.dispatcher.DispatchPlayerUnsold(auctionID, res)
		}
		return true
	}

	res, err := s.engine.Settle(auctionID, snap.Version)
	if err != nil {
		s.logFailure(auctionID, "settle", err)
		return false
	}
	s.logger.Info("bid window closed with sale",
		slog.String("auction_id", auctionID),
		slog.String("player_id", res.PlayerID),
		slog.String("team_id", res.TeamID),
		slog.Int64("amount", res.Amount),
	)
	if s.dispatcher != nil {
		s.dispatcher.DispatchPlayerSold(auctionID, res)
	}
	return true
}

func (s *Sweeper) logFailure(auctionID, action string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, domain.ErrConcurrentConflict) || errors.Is(err, domain.ErrAuctionNotLive) {
		level = slog.LevelDebug
	}
	s.logger.Log(context.Background(), level, "auto-close failed",
		slog.String("auction_id", auctionID),
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
}
