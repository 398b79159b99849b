package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/liveauction/internal/domain"
)

// settle sells the current player to the standing bidder. It runs inside
// mutate, so the session write lock is already held; it then takes the
// team lock and the player lock, in that order.
//
// Every check happens before the first write: the player sold, the team
// debited, the roster updated and the live State closed either all become
// visible together or none of them do.
func (e *Engine) settle(st *State, now time.Time) (*SettleResult, error) {
	if !st.hasCurrent() {
		return nil, domain.ErrInvalidState
	}
	top, ok := st.bids.Highest()
	if !ok {
		return nil, domain.ErrNoBid
	}

	team, err := e.teamStore.Get(top.TeamID)
	if err != nil {
		return nil, err
	}
	player, err := e.playerStore.Get(st.current)
	if err != nil {
		return nil, err
	}

	team.Mu.Lock()
	defer team.Mu.Unlock()
	player.Mu.Lock()
	defer player.Mu.Unlock()

	// Budget is re-read: time has passed since the bid was accepted.
	if !team.CanAfford(top.Amount) {
		return nil, domain.ErrInsufficientCoins
	}
	if player.Sold {
		return nil, domain.ErrInvalidState
	}

	if err := team.Debit(top.Amount, player.PlayerID); err != nil {
		return nil, err
	}
	if err := player.MarkSold(team.TeamID, top.Amount, now); err != nil {
		// Undo the debit so the ledger never shows a sale that did not happen.
		_ = team.Credit(top.Amount, player.PlayerID)
		return nil, err
	}

	sale := &domain.Sale{
		SaleID:    uuid.New().String(),
		AuctionID: st.AuctionID,
		PlayerID:  player.PlayerID,
		TeamID:    team.TeamID,
		Price:     top.Amount,
		SoldAt:    now,
	}
	e.saleStore.Record(sale)

	st.closeLot()

	return &SettleResult{
		SaleID:         sale.SaleID,
		PlayerID:       sale.PlayerID,
		TeamID:         sale.TeamID,
		Amount:         sale.Price,
		SoldAt:         now,
		HasMorePlayers: st.queue.Len() > 0,
	}, nil
}
