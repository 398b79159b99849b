package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"pgregory.net/rapid"

	"github.com/efreitasn/liveauction/internal/domain"
)

func newTestSale(id, auctionID string, price int64, soldAt time.Time) *domain.Sale {
	return &domain.Sale{
		SaleID:    id,
		AuctionID: auctionID,
		PlayerID:  "player-" + id,
		TeamID:    "team-1",
		Price:     price,
		SoldAt:    soldAt,
	}
}

func TestSaleStore_TopOrdering(t *testing.T) {
	s := NewSaleStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.Record(newTestSale("s1", "auction-1", 150, base))
	s.Record(newTestSale("s2", "auction-1", 400, base.Add(time.Minute)))
	s.Record(newTestSale("s3", "auction-1", 400, base))
	s.Record(newTestSale("s4", "auction-1", 90, base))
	s.Record(newTestSale("s5", "auction-2", 999, base))

	top := s.Top("auction-1", 3)
	assert.Equal(t, 3, len(top))
	// Equal prices: the earlier sale ranks first.
	check.Equal(t, "s3", top[0].SaleID)
	check.Equal(t, "s2", top[1].SaleID)
	check.Equal(t, "s1", top[2].SaleID)

	check.Equal(t, 4, len(s.Top("auction-1", 10)))
	check.Equal(t, 0, len(s.Top("auction-1", 0)))
	check.Equal(t, 0, len(s.Top("missing", 5)))
}

func TestSaleStore_Summary(t *testing.T) {
	s := NewSaleStore()
	now := time.Now()

	empty := s.Summary("auction-1")
	check.Equal(t, 0, empty.Count)
	check.Nil(t, empty.Highest)

	s.Record(newTestSale("s1", "auction-1", 150, now))
	s.Record(newTestSale("s2", "auction-1", 350, now))
	// Re-recording the same sale does not double count.
	s.Record(newTestSale("s2", "auction-1", 350, now))

	summary := s.Summary("auction-1")
	check.Equal(t, 2, summary.Count)
	check.Equal(t, int64(500), summary.Total)
	assert.NotNil(t, summary.Highest)
	check.Equal(t, "s2", summary.Highest.SaleID)
}

func TestProperty_SaleBookSortedByPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSaleStore()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		n := rapid.IntRange(1, 60).Draw(t, "sales")
		var total int64
		for i := 0; i < n; i++ {
			price := rapid.Int64Range(1, 500).Draw(t, fmt.Sprintf("price-%d", i))
			sec := rapid.IntRange(0, 10).Draw(t, fmt.Sprintf("sec-%d", i))
			s.Record(newTestSale(fmt.Sprintf("s%03d", i), "auction-1", price, base.Add(time.Duration(sec)*time.Second)))
			total += price
		}

		top := s.Top("auction-1", n)
		if len(top) != n {
			t.Fatalf("got %d sales, want %d", len(top), n)
		}
		for i := 1; i < len(top); i++ {
			if top[i].Price > top[i-1].Price {
				t.Fatalf("sale %d price %d ranks after cheaper %d", i, top[i].Price, top[i-1].Price)
			}
		}
		if got := s.Summary("auction-1").Total; got != total {
			t.Fatalf("total %d, want %d", got, total)
		}
	})
}
