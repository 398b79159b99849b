package domain

import "time"

// AuctionStatus is the registration-level lifecycle of an auction.
type AuctionStatus string

const (
	AuctionStatusRegistering AuctionStatus = "registering"
	AuctionStatusLive        AuctionStatus = "live"
	AuctionStatusEnded       AuctionStatus = "ended"
	AuctionStatusIdle        AuctionStatus = "idle"
)

// Valid reports whether s is a known auction status.
func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionStatusRegistering, AuctionStatusLive, AuctionStatusEnded, AuctionStatusIdle:
		return true
	}
	return false
}

// Auction is the registry record for one auction. The live bidding state
// is held separately by the engine and only exists while the auction is
// in its live phase.
type Auction struct {
	AuctionID     string
	Name          string
	Auctioneer    string
	StartingCoins int64
	Status        AuctionStatus
	StartsAt      time.Time
	EndsAt        time.Time
	CreatedAt     time.Time
}

// IsLive reports whether the auction accepts live engine operations.
func (a *Auction) IsLive() bool {
	return a.Status == AuctionStatusLive
}
