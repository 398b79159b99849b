package domain

import "time"

// Sale records a settled player: who bought it, for how much, and when.
type Sale struct {
	SaleID    string
	AuctionID string
	PlayerID  string
	TeamID    string
	Price     int64 // coins
	SoldAt    time.Time
}
