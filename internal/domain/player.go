package domain

import (
	"sync"
	"time"
)

// Player is a lot: the item sold to a team during the live auction.
type Player struct {
	PlayerID    string
	AuctionID   string
	Name        string
	Year        string
	Branch      string
	Preferences []string
	Achievement string
	TeamID      string // owning team, empty until sold
	Sold        bool
	FinalPrice  int64 // coins, 0 until sold
	SoldAt      *time.Time
	CreatedAt   time.Time
	Mu          sync.Mutex
}

// MarkSold assigns the player to teamID at price. Sold, TeamID and
// FinalPrice always change together. The caller must hold Mu.
func (p *Player) MarkSold(teamID string, price int64, at time.Time) error {
	if p.Sold {
		return ErrInvalidState
	}
	if teamID == "" || price <= 0 {
		return &ValidationError{Message: "sale requires a team and a positive price"}
	}
	p.TeamID = teamID
	p.FinalPrice = price
	p.Sold = true
	p.SoldAt = &at
	return nil
}
