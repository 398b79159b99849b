package engine

import (
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
)

// Bid is one accepted bid on the current player.
type Bid struct {
	BidID    string
	PlayerID string
	TeamID   string
	Amount   int64 // coins
	PlacedAt time.Time
}

// BidLedger is the append-only, time-ordered record of accepted bids for
// the current player. Amounts are strictly increasing, so the last entry
// is always the standing bid.
type BidLedger struct {
	bids []Bid
}

// Append records b. It returns domain.ErrBidTooLow unless b.Amount is
// positive and strictly greater than the standing bid.
func (l *BidLedger) Append(b Bid) error {
	if b.Amount <= l.Floor() {
		return domain.ErrBidTooLow
	}
	l.bids = append(l.bids, b)
	return nil
}

// Floor returns the amount a new bid must exceed: the standing bid, or 0.
func (l *BidLedger) Floor() int64 {
	if top, ok := l.Highest(); ok {
		return top.Amount
	}
	return 0
}

// Highest returns the standing bid.
func (l *BidLedger) Highest() (Bid, bool) {
	if len(l.bids) == 0 {
		return Bid{}, false
	}
	return l.bids[len(l.bids)-1], true
}

// Len returns the number of accepted bids.
func (l *BidLedger) Len() int {
	return len(l.bids)
}

// All returns a copy of the bids in submission order.
func (l *BidLedger) All() []Bid {
	out := make([]Bid, len(l.bids))
	copy(out, l.bids)
	return out
}

// Reset drops every bid.
func (l *BidLedger) Reset() {
	l.bids = nil
}
