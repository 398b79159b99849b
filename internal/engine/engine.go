package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/store"
)

// DefaultBidWindow is used when Advance is called without a window.
const DefaultBidWindow = 60 * time.Second

// SettleResult describes a completed sale.
type SettleResult struct {
	SaleID         string
	PlayerID       string
	TeamID         string
	Amount         int64
	SoldAt         time.Time
	HasMorePlayers bool
	Version        uint64
}

// PassResult describes a player moved to the unsold list.
type PassResult struct {
	PlayerID       string
	HasMorePlayers bool
	Version        uint64
}

// CountdownStatus reports the bid window of the current player.
type CountdownStatus struct {
	Expired       bool
	TimeRemaining time.Duration
	EndsAt        *time.Time
}

// Engine is the live auction state machine. It owns one session per
// auction in its Registry and consults the auction store before honoring
// any call. Mutations accept an ifVersion precondition: zero means
// unconditional, anything else must equal the current State.Version or
// the call fails with domain.ErrConcurrentConflict before any write.
type Engine struct {
	registry      *Registry
	auctionStore  *store.AuctionStore
	teamStore     *store.TeamStore
	playerStore   *store.PlayerStore
	saleStore     *store.SaleStore
	defaultWindow time.Duration
	now           func() time.Time
}

// NewEngine creates a new Engine with the given dependencies. A
// non-positive defaultWindow falls back to DefaultBidWindow.
func NewEngine(
	registry *Registry,
	auctionStore *store.AuctionStore,
	teamStore *store.TeamStore,
	playerStore *store.PlayerStore,
	saleStore *store.SaleStore,
	defaultWindow time.Duration,
) *Engine {
	if defaultWindow <= 0 {
		defaultWindow = DefaultBidWindow
	}
	return &Engine{
		registry:      registry,
		auctionStore:  auctionStore,
		teamStore:     teamStore,
		playerStore:   playerStore,
		saleStore:     saleStore,
		defaultWindow: defaultWindow,
		now:           time.Now,
	}
}

// checkLive confirms the auction exists and is in its live phase.
func (e *Engine) checkLive(auctionID string) error {
	auction, err := e.auctionStore.Get(auctionID)
	if err != nil {
		return err
	}
	if !auction.IsLive() {
		return domain.ErrAuctionNotLive
	}
	return nil
}

// mutate runs fn against the auction's State under the session write
// lock. fn must finish every validation before its first write and
// reports whether it changed anything; the version is bumped only then.
func (e *Engine) mutate(auctionID string, ifVersion uint64, fn func(st *State, now time.Time) (bool, error)) (uint64, error) {
	if err := e.checkLive(auctionID); err != nil {
		return 0, err
	}
	sess, ok := e.registry.get(auctionID)
	if !ok {
		return 0, domain.ErrStateNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.discarded {
		return 0, domain.ErrStateNotFound
	}
	if ifVersion != 0 && ifVersion != sess.state.Version {
		return 0, domain.ErrConcurrentConflict
	}
	changed, err := fn(sess.state, e.now())
	if err != nil {
		return 0, err
	}
	if changed {
		sess.state.Version++
	}
	return sess.state.Version, nil
}

// read runs fn against the auction's State under the session read lock.
// Reads only need the auction to exist, not to be live.
func (e *Engine) read(auctionID string, fn func(st *State, now time.Time)) error {
	if !e.auctionStore.Exists(auctionID) {
		return domain.ErrAuctionNotFound
	}
	sess, ok := e.registry.get(auctionID)
	if !ok {
		return domain.ErrStateNotFound
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	if sess.discarded {
		return domain.ErrStateNotFound
	}
	fn(sess.state, e.now())
	return nil
}

// Initialize creates the live State for an auction, seeded with queue.
// An empty queue seeds every unsold player of the auction in
// registration order.
func (e *Engine) Initialize(auctionID string, queue []string) (*Snapshot, error) {
	if err := e.checkLive(auctionID); err != nil {
		return nil, err
	}
	if _, exists := e.registry.get(auctionID); exists {
		return nil, domain.ErrAlreadyInitialized
	}

	if len(queue) == 0 {
		for _, p := range e.playerStore.ListByAuction(auctionID) {
			p.Mu.Lock()
			sold := p.Sold
			p.Mu.Unlock()
			if !sold {
				queue = append(queue, p.PlayerID)
			}
		}
	} else if err := e.validateQueue(auctionID, queue); err != nil {
		return nil, err
	}

	now := e.now()
	state := newState(auctionID, queue, now)
	if err := e.registry.create(state); err != nil {
		return nil, err
	}
	return state.snapshot(now), nil
}

// validateQueue checks that every id is a distinct, unsold player of the
// auction.
func (e *Engine) validateQueue(auctionID string, queue []string) error {
	seen := make(map[string]bool, len(queue))
	for _, id := range queue {
		if seen[id] {
			return &domain.ValidationError{Message: fmt.Sprintf("duplicate player in queue: %s", id)}
		}
		seen[id] = true

		p, err := e.playerStore.Get(id)
		if err != nil {
			return err
		}
		p.Mu.Lock()
		sold := p.Sold
		p.Mu.Unlock()
		if p.AuctionID != auctionID {
			return &domain.ValidationError{Message: fmt.Sprintf("player %s is not registered in this auction", id)}
		}
		if sold {
			return &domain.ValidationError{Message: fmt.Sprintf("player %s is already sold", id)}
		}
	}
	return nil
}

// Advance opens the next queued player for window (zero uses the default
// window). Only valid while idle.
func (e *Engine) Advance(auctionID string, window time.Duration, ifVersion uint64) (string, uint64, error) {
	if window < 0 {
		return "", 0, &domain.ValidationError{Message: "window must be >= 0"}
	}
	if window == 0 {
		window = e.defaultWindow
	}

	var playerID string
	version, err := e.mutate(auctionID, ifVersion, func(st *State, now time.Time) (bool, error) {
		id, err := st.advance(now, window)
		if err != nil {
			return false, err
		}
		playerID = id
		return true, nil
	})
	if err != nil {
		return "", 0, err
	}
	return playerID, version, nil
}

// PlaceBid records a bid by teamID on the current player. Checks run in
// order and the first failure wins: running with a player open
// (ErrInvalidState), window not expired (ErrBiddingExpired), amount above
// the standing bid (ErrBidTooLow), team can afford it
// (ErrInsufficientCoins). A concurrent bidder that loses the race is
// validated against the winner's state and gets ErrBidTooLow.
func (e *Engine) PlaceBid(auctionID, teamID string, amount int64, ifVersion uint64) (Bid, uint64, error) {
	var accepted Bid
	version, err := e.mutate(auctionID, ifVersion, func(st *State, now time.Time) (bool, error) {
		if err := st.checkBid(now, amount); err != nil {
			return false, err
		}

		team, err := e.teamStore.Get(teamID)
		if err != nil {
			return false, err
		}
		if team.AuctionID != auctionID {
			return false, domain.ErrTeamNotFound
		}
		team.Mu.Lock()
		affordable := team.CanAfford(amount)
		team.Mu.Unlock()
		if !affordable {
			return false, domain.ErrInsufficientCoins
		}

		bid := Bid{
			BidID:    uuid.New().String(),
			PlayerID: st.current,
			TeamID:   teamID,
			Amount:   amount,
			PlacedAt: now,
		}
		if err := st.bids.Append(bid); err != nil {
			return false, err
		}
		accepted = bid
		return true, nil
	})
	if err != nil {
		return Bid{}, 0, err
	}
	return accepted, version, nil
}

// Extend pushes the running deadline back by delta and returns the new
// deadline.
func (e *Engine) Extend(auctionID string, delta time.Duration, ifVersion uint64) (time.Time, uint64, error) {
	if delta <= 0 {
		return time.Time{}, 0, &domain.ValidationError{Message: "extension must be > 0"}
	}

	var endsAt time.Time
	version, err := e.mutate(auctionID, ifVersion, func(st *State, now time.Time) (bool, error) {
		t, err := st.extend(now, delta)
		if err != nil {
			return false, err
		}
		endsAt = t
		return true, nil
	})
	if err != nil {
		return time.Time{}, 0, err
	}
	return endsAt, version, nil
}

// Pause suspends bidding on the current player. Pausing a paused player
// is a no-op. The deadline is not moved.
func (e *Engine) Pause(auctionID string, ifVersion uint64) (Status, uint64, error) {
	return e.setPaused(auctionID, true, ifVersion)
}

// Resume re-opens bidding on a paused player. Resuming a running player
// is a no-op.
func (e *Engine) Resume(auctionID string, ifVersion uint64) (Status, uint64, error) {
	return e.setPaused(auctionID, false, ifVersion)
}

func (e *Engine) setPaused(auctionID string, paused bool, ifVersion uint64) (Status, uint64, error) {
	var status Status
	version, err := e.mutate(auctionID, ifVersion, func(st *State, _ time.Time) (bool, error) {
		changed, err := st.setPaused(paused)
		if err != nil {
			return false, err
		}
		status = st.Status
		return changed, nil
	})
	if err != nil {
		return "", 0, err
	}
	return status, version, nil
}

// Settle sells the current player to the standing bidder. See settle for
// the cross-record commit.
func (e *Engine) Settle(auctionID string, ifVersion uint64) (*SettleResult, error) {
	var result *SettleResult
	version, err := e.mutate(auctionID, ifVersion, func(st *State, now time.Time) (bool, error) {
		res, err := e.settle(st, now)
		if err != nil {
			return false, err
		}
		result = res
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	result.Version = version
	return result, nil
}

// Pass moves the current player to the unsold list without a sale.
func (e *Engine) Pass(auctionID string, ifVersion uint64) (*PassResult, error) {
	var result PassResult
	version, err := e.mutate(auctionID, ifVersion, func(st *State, _ time.Time) (bool, error) {
		playerID, err := st.pass()
		if err != nil {
			return false, err
		}
		result.PlayerID = playerID
		result.HasMorePlayers = st.queue.Len() > 0
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	result.Version = version
	return &result, nil
}

// RequeueUnsold moves every unsold player to the back of the queue for
// another round. Only valid while idle.
func (e *Engine) RequeueUnsold(auctionID string, ifVersion uint64) (int, uint64, error) {
	var moved int
	version, err := e.mutate(auctionID, ifVersion, func(st *State, _ time.Time) (bool, error) {
		n, err := st.requeueUnsold()
		if err != nil {
			return false, err
		}
		moved = n
		return n > 0, nil
	})
	if err != nil {
		return 0, 0, err
	}
	return moved, version, nil
}

// Reset discards the auction's live State whatever its status. Sold
// players and team ledgers are left as they are.
func (e *Engine) Reset(auctionID string) error {
	if !e.auctionStore.Exists(auctionID) {
		return domain.ErrAuctionNotFound
	}
	return e.registry.remove(auctionID)
}

// Snapshot returns a consistent copy of the auction's live State.
func (e *Engine) Snapshot(auctionID string) (*Snapshot, error) {
	var snap *Snapshot
	err := e.read(auctionID, func(st *State, now time.Time) {
		snap = st.snapshot(now)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// PeekQueue returns up to n upcoming player ids.
func (e *Engine) PeekQueue(auctionID string, n int) ([]string, error) {
	var ids []string
	err := e.read(auctionID, func(st *State, _ time.Time) {
		ids = st.queue.Peek(n)
	})
	return ids, err
}

// BidHistory returns the current player's bids, newest first.
func (e *Engine) BidHistory(auctionID string) ([]Bid, error) {
	var bids []Bid
	err := e.read(auctionID, func(st *State, _ time.Time) {
		bids = st.bids.All()
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(bids)-1; i < j; i, j = i+1, j-1 {
		bids[i], bids[j] = bids[j], bids[i]
	}
	return bids, nil
}

// Unsold returns the unsold player ids in the order they were passed.
func (e *Engine) Unsold(auctionID string) ([]string, error) {
	var ids []string
	err := e.read(auctionID, func(st *State, _ time.Time) {
		ids = st.unsold.Items()
	})
	return ids, err
}

// CheckCountdown reports the bid window of the current player.
func (e *Engine) CheckCountdown(auctionID string) (CountdownStatus, error) {
	var cs CountdownStatus
	err := e.read(auctionID, func(st *State, now time.Time) {
		cs.Expired = st.countdown.Expired(now)
		cs.TimeRemaining = st.countdown.Remaining(now)
		if endsAt, ok := st.countdown.EndsAt(); ok {
			cs.EndsAt = &endsAt
		}
	})
	return cs, err
}

// AuctionIDs returns the ids of every auction with a live State.
func (e *Engine) AuctionIDs() []string {
	return e.registry.AuctionIDs()
}
