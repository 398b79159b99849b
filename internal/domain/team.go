package domain

import (
	"sync"
	"time"
)

// Team represents a bidding participant with a coin budget.
type Team struct {
	TeamID      string
	AuctionID   string
	Name        string
	Owner       string
	BudgetTotal int64    // coins granted at registration
	BudgetLeft  int64    // coins not yet spent on won players
	PlayerIDs   []string // players won, in settlement order
	PlayerCount int
	CreatedAt   time.Time
	Mu          sync.Mutex // per-team lock for ledger mutations
}

// Spent returns the coins committed to won players.
func (t *Team) Spent() int64 {
	return t.BudgetTotal - t.BudgetLeft
}

// CanAfford reports whether the team has at least amount coins left.
func (t *Team) CanAfford(amount int64) bool {
	return amount >= 0 && t.BudgetLeft >= amount
}

// Debit removes amount coins from the team's budget and credits the player
// to its roster. The caller must hold Mu.
func (t *Team) Debit(amount int64, playerID string) error {
	if amount <= 0 {
		return &ValidationError{Message: "debit amount must be > 0"}
	}
	if !t.CanAfford(amount) {
		return ErrInsufficientCoins
	}
	t.BudgetLeft -= amount
	t.PlayerIDs = append(t.PlayerIDs, playerID)
	t.PlayerCount++
	return nil
}

// Credit returns amount coins to the team and drops the player from its
// roster. It is the inverse of Debit. The caller must hold Mu.
func (t *Team) Credit(amount int64, playerID string) error {
	if amount <= 0 {
		return &ValidationError{Message: "credit amount must be > 0"}
	}
	idx := -1
	for i, id := range t.PlayerIDs {
		if id == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPlayerNotFound
	}
	if t.BudgetLeft+amount > t.BudgetTotal {
		return &ValidationError{Message: "credit would exceed budget total"}
	}
	t.BudgetLeft += amount
	t.PlayerIDs = append(t.PlayerIDs[:idx], t.PlayerIDs[idx+1:]...)
	t.PlayerCount--
	return nil
}
