package service

import (
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/store"
)

func newTestRegistrationService() *RegistrationService {
	return NewRegistrationService(store.NewAuctionStore(), store.NewTeamStore(), store.NewPlayerStore())
}

func validAuctionRequest(name string) CreateAuctionRequest {
	start := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	return CreateAuctionRequest{
		Name:          name,
		Auctioneer:    "host",
		StartingCoins: 1000,
		StartsAt:      start,
		EndsAt:        start.Add(3 * time.Hour),
	}
}

func TestCreateAuction_Success(t *testing.T) {
	svc := newTestRegistrationService()

	auction, err := svc.CreateAuction(validAuctionRequest("  Spring Draft  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auction.AuctionID == "" {
		t.Error("expected an auction_id to be assigned")
	}
	if auction.Name != "Spring Draft" {
		t.Errorf("got name %q, want %q", auction.Name, "Spring Draft")
	}
	if auction.Status != domain.AuctionStatusRegistering {
		t.Errorf("got status %q, want registering", auction.Status)
	}
	if auction.StartingCoins != 1000 {
		t.Errorf("got starting_coins %d, want 1000", auction.StartingCoins)
	}
}

func TestCreateAuction_DuplicateName(t *testing.T) {
	svc := newTestRegistrationService()
	if _, err := svc.CreateAuction(validAuctionRequest("Draft")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateAuction(validAuctionRequest("Draft"))
	if !errors.Is(err, domain.ErrAuctionAlreadyExists) {
		t.Fatalf("got %v, want ErrAuctionAlreadyExists", err)
	}
}

func TestCreateAuction_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateAuctionRequest)
	}{
		{"empty name", func(r *CreateAuctionRequest) { r.Name = "   " }},
		{"zero coins", func(r *CreateAuctionRequest) { r.StartingCoins = 0 }},
		{"fractional coins", func(r *CreateAuctionRequest) { r.StartingCoins = 10.5 }},
		{"missing times", func(r *CreateAuctionRequest) { r.StartsAt = time.Time{} }},
		{"ends before start", func(r *CreateAuctionRequest) { r.EndsAt = r.StartsAt.Add(-time.Hour) }},
		{"ends at start", func(r *CreateAuctionRequest) { r.EndsAt = r.StartsAt }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestRegistrationService()
			req := validAuctionRequest("Draft")
			tc.mutate(&req)

			_, err := svc.CreateAuction(req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestSetAuctionStatus(t *testing.T) {
	svc := newTestRegistrationService()
	auction, _ := svc.CreateAuction(validAuctionRequest("Draft"))

	updated, err := svc.SetAuctionStatus(auction.AuctionID, domain.AuctionStatusLive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.AuctionStatusLive {
		t.Errorf("got status %q, want live", updated.Status)
	}

	if _, err := svc.SetAuctionStatus(auction.AuctionID, "closed"); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := svc.SetAuctionStatus("missing", domain.AuctionStatusLive); !errors.Is(err, domain.ErrAuctionNotFound) {
		t.Errorf("got %v, want ErrAuctionNotFound", err)
	}

	if _, err := svc.SetAuctionStatus(auction.AuctionID, domain.AuctionStatusEnded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SetAuctionStatus(auction.AuctionID, domain.AuctionStatusLive); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("reopening an ended auction: got %v, want ErrInvalidState", err)
	}
}

func TestCreateTeam_DefaultsToStartingCoins(t *testing.T) {
	svc := newTestRegistrationService()
	auction, _ := svc.CreateAuction(validAuctionRequest("Draft"))

	team, err := svc.CreateTeam(auction.AuctionID, CreateTeamRequest{Name: "Falcons", Owner: "ana"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.BudgetTotal != 1000 || team.BudgetLeft != 1000 {
		t.Errorf("got budget %d/%d, want 1000/1000", team.BudgetLeft, team.BudgetTotal)
	}
	if team.PlayerCount != 0 || len(team.PlayerIDs) != 0 {
		t.Errorf("new team should own no players, got %v", team.PlayerIDs)
	}

	coins := 250.0
	custom, err := svc.CreateTeam(auction.AuctionID, CreateTeamRequest{Name: "Hawks", Coins: &coins})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if custom.BudgetTotal != 250 {
		t.Errorf("got budget %d, want 250", custom.BudgetTotal)
	}
}

func TestCreateTeam_Errors(t *testing.T) {
	svc := newTestRegistrationService()
	auction, _ := svc.CreateAuction(validAuctionRequest("Draft"))
	_, _ = svc.CreateTeam(auction.AuctionID, CreateTeamRequest{Name: "Falcons"})

	if _, err := svc.CreateTeam(auction.AuctionID, CreateTeamRequest{Name: "Falcons"}); !errors.Is(err, domain.ErrTeamAlreadyExists) {
		t.Errorf("duplicate name: got %v, want ErrTeamAlreadyExists", err)
	}
	if _, err := svc.CreateTeam("missing", CreateTeamRequest{Name: "X"}); !errors.Is(err, domain.ErrAuctionNotFound) {
		t.Errorf("missing auction: got %v, want ErrAuctionNotFound", err)
	}
	negative := -5.0
	if _, err := svc.CreateTeam(auction.AuctionID, CreateTeamRequest{Name: "Y", Coins: &negative}); err == nil {
		t.Error("expected error for negative coins")
	}

	// Same name in another auction is fine.
	other, _ := svc.CreateAuction(validAuctionRequest("Other"))
	if _, err := svc.CreateTeam(other.AuctionID, CreateTeamRequest{Name: "Falcons"}); err != nil {
		t.Errorf("same team name in another auction: %v", err)
	}
}

func TestCreatePlayer_Success(t *testing.T) {
	svc := newTestRegistrationService()
	auction, _ := svc.CreateAuction(validAuctionRequest("Draft"))

	player, err := svc.CreatePlayer(auction.AuctionID, CreatePlayerRequest{
		Name:        "Ravi",
		Year:        "3",
		Branch:      "CSE",
		Preferences: []string{"batting", " ", "fielding"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if player.Sold || player.FinalPrice != nil || player.TeamID != "" {
		t.Errorf("new player should be unsold, got %+v", player)
	}
	if len(player.Preferences) != 2 {
		t.Errorf("blank preferences should be dropped, got %v", player.Preferences)
	}

	got, err := svc.GetPlayer(player.PlayerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ravi" {
		t.Errorf("got name %q, want Ravi", got.Name)
	}
}

func TestCreatePlayer_EndedAuction(t *testing.T) {
	svc := newTestRegistrationService()
	auction, _ := svc.CreateAuction(validAuctionRequest("Draft"))
	_, _ = svc.SetAuctionStatus(auction.AuctionID, domain.AuctionStatusEnded)

	if _, err := svc.CreatePlayer(auction.AuctionID, CreatePlayerRequest{Name: "Late"}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestListTeamsAndPlayers_RegistrationOrder(t *testing.T) {
	svc := newTestRegistrationService()
	auction, _ := svc.CreateAuction(validAuctionRequest("Draft"))
	for _, name := range []string{"C", "A", "B"} {
		_, _ = svc.CreateTeam(auction.AuctionID, CreateTeamRequest{Name: name})
		_, _ = svc.CreatePlayer(auction.AuctionID, CreatePlayerRequest{Name: name})
	}

	teams, err := svc.ListTeams(auction.AuctionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	players, err := svc.ListPlayers(auction.AuctionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"C", "A", "B"} {
		if teams[i].Name != want || players[i].Name != want {
			t.Errorf("position %d: team %q player %q, want %q", i, teams[i].Name, players[i].Name, want)
		}
	}

	if _, err := svc.ListTeams("missing"); !errors.Is(err, domain.ErrAuctionNotFound) {
		t.Errorf("got %v, want ErrAuctionNotFound", err)
	}
}
