package store

import (
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/efreitasn/liveauction/internal/domain"
)

func newTestAuction(id, name string) *domain.Auction {
	return &domain.Auction{
		AuctionID:     id,
		Name:          name,
		Auctioneer:    "admin",
		StartingCoins: 1000,
		Status:        domain.AuctionStatusRegistering,
		CreatedAt:     time.Now(),
	}
}

func TestAuctionStore_Create(t *testing.T) {
	s := NewAuctionStore()

	assert.NoError(t, s.Create(newTestAuction("auction-1", "Spring Draft")))

	check.True(t, errors.Is(s.Create(newTestAuction("auction-1", "Other")), domain.ErrAuctionAlreadyExists))
	check.True(t, errors.Is(s.Create(newTestAuction("auction-2", "Spring Draft")), domain.ErrAuctionAlreadyExists))
	check.True(t, s.Exists("auction-1"))
	check.False(t, s.Exists("auction-2"))
}

func TestAuctionStore_Get_ReturnsCopy(t *testing.T) {
	s := NewAuctionStore()
	assert.NoError(t, s.Create(newTestAuction("auction-1", "Spring Draft")))

	got, err := s.Get("auction-1")
	assert.NoError(t, err)
	got.Status = domain.AuctionStatusEnded

	again, err := s.Get("auction-1")
	assert.NoError(t, err)
	check.Equal(t, domain.AuctionStatusRegistering, again.Status)

	_, err = s.Get("missing")
	check.True(t, errors.Is(err, domain.ErrAuctionNotFound))
}

func TestAuctionStore_SetStatus(t *testing.T) {
	s := NewAuctionStore()
	assert.NoError(t, s.Create(newTestAuction("auction-1", "Spring Draft")))

	updated, err := s.SetStatus("auction-1", domain.AuctionStatusLive)
	assert.NoError(t, err)
	check.True(t, updated.IsLive())

	got, _ := s.Get("auction-1")
	check.True(t, got.IsLive())

	_, err = s.SetStatus("missing", domain.AuctionStatusLive)
	check.True(t, errors.Is(err, domain.ErrAuctionNotFound))
}
