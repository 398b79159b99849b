package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/engine"
	"github.com/efreitasn/liveauction/internal/store"
)

// testLiveEnv bundles all dependencies needed for live and stats tests.
type testLiveEnv struct {
	auctions *store.AuctionStore
	teams    *store.TeamStore
	players  *store.PlayerStore
	sales    *store.SaleStore
	webhooks *store.WebhookStore
	engine   *engine.Engine
	reg      *RegistrationService
	live     *LiveService
	stats    *StatsService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLiveEnv() *testLiveEnv {
	as := store.NewAuctionStore()
	ts := store.NewTeamStore()
	ps := store.NewPlayerStore()
	ss := store.NewSaleStore()
	ws := store.NewWebhookStore()
	eng := engine.NewEngine(engine.NewRegistry(), as, ts, ps, ss, time.Minute)
	return &testLiveEnv{
		auctions: as,
		teams:    ts,
		players:  ps,
		sales:    ss,
		webhooks: ws,
		engine:   eng,
		reg:      NewRegistrationService(as, ts, ps),
		live:     NewLiveService(eng, ts, ps, nil, discardLogger(), 0),
		stats:    NewStatsService(eng, as, ts, ps, ss),
	}
}

// liveAuction registers an auction and moves it to its live phase.
func (env *testLiveEnv) liveAuction(t *testing.T, name string) string {
	t.Helper()
	auction, err := env.reg.CreateAuction(validAuctionRequest(name))
	if err != nil {
		t.Fatalf("failed to create auction: %v", err)
	}
	if _, err := env.reg.SetAuctionStatus(auction.AuctionID, domain.AuctionStatusLive); err != nil {
		t.Fatalf("failed to set auction live: %v", err)
	}
	return auction.AuctionID
}

func (env *testLiveEnv) team(t *testing.T, auctionID, name string, coins float64) string {
	t.Helper()
	team, err := env.reg.CreateTeam(auctionID, CreateTeamRequest{Name: name, Coins: &coins})
	if err != nil {
		t.Fatalf("failed to create team %s: %v", name, err)
	}
	return team.TeamID
}

func (env *testLiveEnv) player(t *testing.T, auctionID, name string) string {
	t.Helper()
	player, err := env.reg.CreatePlayer(auctionID, CreatePlayerRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create player %s: %v", name, err)
	}
	return player.PlayerID
}

func TestLive_FullRound(t *testing.T) {
	env := newTestLiveEnv()
	auctionID := env.liveAuction(t, "Draft")
	falcons := env.team(t, auctionID, "Falcons", 1000)
	hawks := env.team(t, auctionID, "Hawks", 500)
	ravi := env.player(t, auctionID, "Ravi")
	env.player(t, auctionID, "Meera")

	state, err := env.live.Initialize(auctionID, nil)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if state.PlayersRemaining != 2 || state.CurrentPlayer != nil {
		t.Fatalf("fresh state = %+v", state.Snapshot)
	}

	adv, err := env.live.Advance(auctionID, 0, 0)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if adv.PlayerID != ravi || adv.CountdownEndsAt == nil {
		t.Errorf("advance result = %+v", adv)
	}

	if _, _, err := env.live.PlaceBid(auctionID, falcons, 100, 0); err != nil {
		t.Fatalf("bid: %v", err)
	}
	bid, _, err := env.live.PlaceBid(auctionID, hawks, 150, 0)
	if err != nil {
		t.Fatalf("bid: %v", err)
	}
	if bid.TeamName != "Hawks" || bid.PlayerID != ravi {
		t.Errorf("bid view = %+v", bid)
	}

	state, err = env.live.State(auctionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.CurrentPlayer == nil || state.CurrentPlayer.Name != "Ravi" {
		t.Errorf("current player = %+v", state.CurrentPlayer)
	}
	if state.CurrentBidderTeam == nil || state.CurrentBidderTeam.Name != "Hawks" {
		t.Errorf("current bidder = %+v", state.CurrentBidderTeam)
	}

	history, err := env.live.BidHistory(auctionID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].TeamName != "Hawks" || history[1].TeamName != "Falcons" {
		t.Errorf("history = %+v", history)
	}

	res, err := env.live.Settle(auctionID, 0)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if res.TeamID != hawks || res.Amount != 150 || !res.HasMorePlayers {
		t.Errorf("settle result = %+v", res)
	}

	team, _ := env.reg.GetTeam(hawks)
	if team.BudgetLeft != 350 || team.PlayerCount != 1 {
		t.Errorf("hawks ledger = %+v", team)
	}
	player, _ := env.reg.GetPlayer(ravi)
	if !player.Sold || *player.FinalPrice != 150 || player.TeamID != hawks {
		t.Errorf("ravi = %+v", player)
	}
}

func TestLive_PassAndRequeue(t *testing.T) {
	env := newTestLiveEnv()
	auctionID := env.liveAuction(t, "Draft")
	ravi := env.player(t, auctionID, "Ravi")

	if _, err := env.live.Initialize(auctionID, []string{ravi}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := env.live.Advance(auctionID, time.Minute, 0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	res, err := env.live.Pass(auctionID, 0)
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if res.PlayerID != ravi || res.HasMorePlayers {
		t.Errorf("pass result = %+v", res)
	}

	unsold, err := env.live.Unsold(auctionID)
	if err != nil {
		t.Fatalf("unsold: %v", err)
	}
	if len(unsold) != 1 || unsold[0].Name != "Ravi" {
		t.Errorf("unsold = %+v", unsold)
	}

	moved, _, err := env.live.RequeueUnsold(auctionID, 0)
	if err != nil || moved != 1 {
		t.Fatalf("requeue: moved %d, err %v", moved, err)
	}
	queue, err := env.live.Queue(auctionID, 0)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queue) != 1 || queue[0].PlayerID != ravi {
		t.Errorf("queue = %+v", queue)
	}
}

func TestLive_QueueLimit(t *testing.T) {
	env := newTestLiveEnv()
	env.live = NewLiveService(env.engine, env.teams, env.players, nil, discardLogger(), 3)
	auctionID := env.liveAuction(t, "Draft")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		env.player(t, auctionID, name)
	}
	if _, err := env.live.Initialize(auctionID, nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	all, _ := env.live.Queue(auctionID, 0)
	if len(all) != 3 {
		t.Errorf("default limit: got %d players, want 3", len(all))
	}
	two, _ := env.live.Queue(auctionID, 2)
	if len(two) != 2 || two[0].Name != "a" {
		t.Errorf("limit 2: got %+v", two)
	}
}

func TestLive_PauseResumeExtend(t *testing.T) {
	env := newTestLiveEnv()
	auctionID := env.liveAuction(t, "Draft")
	env.player(t, auctionID, "Ravi")
	_, _ = env.live.Initialize(auctionID, nil)
	_, _ = env.live.Advance(auctionID, time.Minute, 0)

	status, _, err := env.live.Pause(auctionID, 0)
	if err != nil || status != engine.StatusPaused {
		t.Fatalf("pause: %s %v", status, err)
	}
	if _, _, err := env.live.Extend(auctionID, time.Second, 0); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("extend while paused: got %v, want ErrInvalidState", err)
	}
	status, _, err = env.live.Resume(auctionID, 0)
	if err != nil || status != engine.StatusRunning {
		t.Fatalf("resume: %s %v", status, err)
	}

	before, _ := env.live.Countdown(auctionID)
	endsAt, _, err := env.live.Extend(auctionID, 30*time.Second, 0)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !endsAt.Equal(before.EndsAt.Add(30 * time.Second)) {
		t.Errorf("deadline = %v, want %v", endsAt, before.EndsAt.Add(30*time.Second))
	}
}

func TestLive_Reset(t *testing.T) {
	env := newTestLiveEnv()
	auctionID := env.liveAuction(t, "Draft")
	env.player(t, auctionID, "Ravi")
	_, _ = env.live.Initialize(auctionID, nil)

	if err := env.live.Reset(auctionID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := env.live.State(auctionID); !errors.Is(err, domain.ErrStateNotFound) {
		t.Errorf("got %v, want ErrStateNotFound", err)
	}
}

func TestLive_ErrorsPassThrough(t *testing.T) {
	env := newTestLiveEnv()
	auctionID := env.liveAuction(t, "Draft")
	team := env.team(t, auctionID, "Falcons", 100)
	env.player(t, auctionID, "Ravi")
	_, _ = env.live.Initialize(auctionID, nil)
	_, _ = env.live.Advance(auctionID, time.Minute, 0)

	if _, _, err := env.live.PlaceBid(auctionID, team, 500, 0); !errors.Is(err, domain.ErrInsufficientCoins) {
		t.Errorf("got %v, want ErrInsufficientCoins", err)
	}
	if _, err := env.live.Settle(auctionID, 0); !errors.Is(err, domain.ErrNoBid) {
		t.Errorf("got %v, want ErrNoBid", err)
	}
	if _, err := env.live.Pass(auctionID, 12345); !errors.Is(err, domain.ErrConcurrentConflict) {
		t.Errorf("got %v, want ErrConcurrentConflict", err)
	}
}
