package store

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/efreitasn/liveauction/internal/domain"
)

func TestPlayerStore_CreateGetList(t *testing.T) {
	s := NewPlayerStore()

	assert.NoError(t, s.Create(&domain.Player{PlayerID: "p1", AuctionID: "auction-1", Name: "Asha"}))
	assert.NoError(t, s.Create(&domain.Player{PlayerID: "p2", AuctionID: "auction-1", Name: "Ravi"}))
	assert.NoError(t, s.Create(&domain.Player{PlayerID: "p3", AuctionID: "auction-2", Name: "Mina"}))

	check.True(t, errors.Is(s.Create(&domain.Player{PlayerID: "p1", AuctionID: "auction-1"}), domain.ErrPlayerAlreadyExists))

	got, err := s.Get("p2")
	assert.NoError(t, err)
	check.Equal(t, "Ravi", got.Name)

	_, err = s.Get("missing")
	check.True(t, errors.Is(err, domain.ErrPlayerNotFound))

	players := s.ListByAuction("auction-1")
	assert.Equal(t, 2, len(players))
	check.Equal(t, "p1", players[0].PlayerID)
	check.Equal(t, "p2", players[1].PlayerID)
}
