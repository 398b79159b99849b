package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
)

func TestSettle_BudgetSpentElsewhere(t *testing.T) {
	env := newTestEnv(t)
	team := env.addTeam(t, "A", 100)
	env.start(t, time.Minute, "L1", "L2")

	if _, _, err := env.engine.PlaceBid(testAuction, "A", 80, 0); err != nil {
		t.Fatalf("bid: %v", err)
	}
	before := env.snapshot(t)

	// The team's coins are committed to another player after the bid.
	team.Mu.Lock()
	_ = team.Debit(50, "elsewhere")
	team.Mu.Unlock()

	if _, err := env.engine.Settle(testAuction, 0); !errors.Is(err, domain.ErrInsufficientCoins) {
		t.Fatalf("got %v, want ErrInsufficientCoins", err)
	}

	after := env.snapshot(t)
	if after.Version != before.Version || after.CurrentPlayerID != "L1" || *after.CurrentBid != 80 {
		t.Errorf("failed settle changed the state: before %+v after %+v", before, after)
	}
	if team.BudgetLeft != 50 || team.PlayerCount != 1 {
		t.Errorf("team ledger changed: left %d, players %d", team.BudgetLeft, team.PlayerCount)
	}
	if p, _ := env.players.Get("L1"); p.Sold {
		t.Error("player must stay unsold")
	}
	if env.sales.Summary(testAuction).Count != 0 {
		t.Error("no sale should be recorded")
	}
}

func TestSettle_PlayerAlreadySold(t *testing.T) {
	env := newTestEnv(t)
	team := env.addTeam(t, "A", 1000)
	env.start(t, time.Minute, "L1")

	if _, _, err := env.engine.PlaceBid(testAuction, "A", 80, 0); err != nil {
		t.Fatalf("bid: %v", err)
	}
	p, _ := env.players.Get("L1")
	p.Mu.Lock()
	_ = p.MarkSold("other", 5, env.clock.Now())
	p.Mu.Unlock()

	if _, err := env.engine.Settle(testAuction, 0); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
	if team.BudgetLeft != 1000 || len(team.PlayerIDs) != 0 {
		t.Errorf("team must not be charged, left %d roster %v", team.BudgetLeft, team.PlayerIDs)
	}
}

func TestSettle_RecordsSale(t *testing.T) {
	env := newTestEnv(t)
	env.addTeam(t, "A", 1000)
	env.start(t, time.Minute, "L1")

	if _, _, err := env.engine.PlaceBid(testAuction, "A", 250, 0); err != nil {
		t.Fatalf("bid: %v", err)
	}
	env.clock.Advance(5 * time.Second)
	res, err := env.engine.Settle(testAuction, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	top := env.sales.Top(testAuction, 1)
	if len(top) != 1 {
		t.Fatalf("expected one sale, got %d", len(top))
	}
	if top[0].SaleID != res.SaleID || top[0].Price != 250 || !top[0].SoldAt.Equal(env.clock.Now()) {
		t.Errorf("sale = %+v, result = %+v", top[0], res)
	}
	p, _ := env.players.Get("L1")
	if p.SoldAt == nil || !p.SoldAt.Equal(res.SoldAt) {
		t.Errorf("player SoldAt = %v, want %v", p.SoldAt, res.SoldAt)
	}
}
