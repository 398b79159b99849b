package engine

import (
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
)

// Status is the live bidding status of an auction.
type Status string

const (
	StatusIdle    Status = "idle"    // no player open
	StatusRunning Status = "running" // player open, bids accepted
	StatusPaused  Status = "paused"  // player open, bids suspended
)

// State is the live state of one auction. It is only touched while the
// owning session's lock is held.
//
// The standing bid and bidder are the last entry of bids, so they are
// set together or not at all, and only while a player is current.
type State struct {
	AuctionID     string
	Version       uint64
	Status        Status
	InitializedAt time.Time

	queue     *LotQueue
	unsold    *LotQueue
	current   string
	countdown Countdown
	bids      BidLedger
}

func newState(auctionID string, queue []string, now time.Time) *State {
	return &State{
		AuctionID:     auctionID,
		Version:       1,
		Status:        StatusIdle,
		InitializedAt: now,
		queue:         NewLotQueue(queue),
		unsold:        NewLotQueue(nil),
	}
}

// hasCurrent reports whether a player is open.
func (s *State) hasCurrent() bool {
	return s.current != ""
}

// advance opens the next queued player.
func (s *State) advance(now time.Time, window time.Duration) (string, error) {
	if s.Status != StatusIdle || s.hasCurrent() {
		return "", domain.ErrInvalidState
	}
	next, ok := s.queue.PopFront()
	if !ok {
		return "", domain.ErrEmptyQueue
	}
	s.current = next
	s.countdown = NewCountdown(now, window)
	s.bids.Reset()
	s.Status = StatusRunning
	return next, nil
}

// checkBid runs the bid preconditions in order: open and running, window
// not expired, amount above the standing bid.
func (s *State) checkBid(now time.Time, amount int64) error {
	if s.Status != StatusRunning || !s.hasCurrent() {
		return domain.ErrInvalidState
	}
	if s.countdown.Expired(now) {
		return domain.ErrBiddingExpired
	}
	if amount <= s.bids.Floor() {
		return domain.ErrBidTooLow
	}
	return nil
}

// setPaused moves an open player between running and paused. It reports
// whether the status changed.
func (s *State) setPaused(paused bool) (bool, error) {
	if !s.hasCurrent() {
		return false, domain.ErrInvalidState
	}
	target := StatusRunning
	if paused {
		target = StatusPaused
	}
	if s.Status == target {
		return false, nil
	}
	s.Status = target
	return true, nil
}

// extend pushes the running deadline back by delta.
func (s *State) extend(now time.Time, delta time.Duration) (time.Time, error) {
	if s.Status != StatusRunning || !s.hasCurrent() {
		return time.Time{}, domain.ErrInvalidState
	}
	s.countdown = s.countdown.Extend(now, delta)
	endsAt, _ := s.countdown.EndsAt()
	return endsAt, nil
}

// pass moves the current player to the unsold list.
func (s *State) pass() (string, error) {
	if !s.hasCurrent() {
		return "", domain.ErrInvalidState
	}
	playerID := s.current
	s.unsold.PushBack(playerID)
	s.closeLot()
	return playerID, nil
}

// closeLot clears every current-player field and returns to idle.
func (s *State) closeLot() {
	s.current = ""
	s.countdown = s.countdown.Clear()
	s.bids.Reset()
	s.Status = StatusIdle
}

// requeueUnsold moves every unsold player to the back of the queue.
func (s *State) requeueUnsold() (int, error) {
	if s.Status != StatusIdle || s.hasCurrent() {
		return 0, domain.ErrInvalidState
	}
	moved := 0
	for {
		id, ok := s.unsold.PopFront()
		if !ok {
			return moved, nil
		}
		s.queue.PushBack(id)
		moved++
	}
}

// Snapshot is a consistent, detached copy of a State.
type Snapshot struct {
	AuctionID        string
	Version          uint64
	Status           Status
	Queue            []string
	Unsold           []string
	CurrentPlayerID  string     // empty when idle
	CountdownEndsAt  *time.Time // nil when no window is open
	TimeRemaining    time.Duration
	Expired          bool
	CurrentBid       *int64 // nil until a bid is accepted
	CurrentBidderID  string
	Bids             []Bid // submission order
	PlayersRemaining int
	Complete         bool // idle, empty queue, no current player
	InitializedAt    time.Time
}

func (s *State) snapshot(now time.Time) *Snapshot {
	snap := &Snapshot{
		AuctionID:        s.AuctionID,
		Version:          s.Version,
		Status:           s.Status,
		Queue:            s.queue.Items(),
		Unsold:           s.unsold.Items(),
		CurrentPlayerID:  s.current,
		TimeRemaining:    s.countdown.Remaining(now),
		Expired:          s.countdown.Expired(now),
		Bids:             s.bids.All(),
		PlayersRemaining: s.queue.Len(),
		Complete:         s.Status == StatusIdle && !s.hasCurrent() && s.queue.Len() == 0,
		InitializedAt:    s.InitializedAt,
	}
	if endsAt, ok := s.countdown.EndsAt(); ok {
		snap.CountdownEndsAt = &endsAt
	}
	if top, ok := s.bids.Highest(); ok {
		amount := top.Amount
		snap.CurrentBid = &amount
		snap.CurrentBidderID = top.TeamID
	}
	return snap
}
