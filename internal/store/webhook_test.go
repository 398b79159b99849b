package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/efreitasn/liveauction/internal/domain"
)

func newTestWebhook(id, auctionID, event, url string, createdAt time.Time) *domain.Webhook {
	return &domain.Webhook{
		WebhookID: id,
		AuctionID: auctionID,
		Event:     event,
		URL:       url,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestWebhookStore_Upsert_NewSubscription(t *testing.T) {
	s := NewWebhookStore()
	w := newTestWebhook("wh-1", "auction-1", domain.EventPlayerSold, "https://example.com/hook", time.Now())

	stored, created := s.Upsert(w)
	check.True(t, created)
	check.Equal(t, "wh-1", stored.WebhookID)

	got, err := s.Get("wh-1")
	assert.NoError(t, err)
	check.Equal(t, "auction-1", got.AuctionID)
}

func TestWebhookStore_Upsert_SameURLKeepsID(t *testing.T) {
	s := NewWebhookStore()
	now := time.Now()
	s.Upsert(newTestWebhook("wh-1", "auction-1", domain.EventPlayerSold, "https://example.com/hook", now))

	stored, created := s.Upsert(newTestWebhook("wh-2", "auction-1", domain.EventPlayerSold, "https://example.com/hook", now))
	check.False(t, created)
	check.Equal(t, "wh-1", stored.WebhookID)

	_, err := s.Get("wh-2")
	check.True(t, errors.Is(err, domain.ErrWebhookNotFound))
}

func TestWebhookStore_Subscribers_FanOut(t *testing.T) {
	s := NewWebhookStore()
	now := time.Now()
	s.Upsert(newTestWebhook("wh-1", "auction-1", domain.EventBidPlaced, "https://a.example.com", now))
	s.Upsert(newTestWebhook("wh-2", "auction-1", domain.EventBidPlaced, "https://b.example.com", now.Add(time.Second)))
	s.Upsert(newTestWebhook("wh-3", "auction-1", domain.EventPlayerSold, "https://a.example.com", now))
	s.Upsert(newTestWebhook("wh-4", "auction-2", domain.EventBidPlaced, "https://a.example.com", now))

	subs := s.Subscribers("auction-1", domain.EventBidPlaced)
	assert.Equal(t, 2, len(subs))
	check.Equal(t, "wh-1", subs[0].WebhookID)
	check.Equal(t, "wh-2", subs[1].WebhookID)

	check.Equal(t, 0, len(s.Subscribers("auction-1", domain.EventPlayerUnsold)))
	check.Equal(t, 3, len(s.ListByAuction("auction-1")))
}

func TestWebhookStore_ListByAuction_Empty(t *testing.T) {
	s := NewWebhookStore()

	list := s.ListByAuction("nope")
	check.NotNil(t, list)
	check.Equal(t, 0, len(list))
}

func TestWebhookStore_Delete(t *testing.T) {
	s := NewWebhookStore()
	s.Upsert(newTestWebhook("wh-1", "auction-1", domain.EventPlayerSold, "https://example.com/hook", time.Now()))

	assert.NoError(t, s.Delete("wh-1"))
	check.Equal(t, 0, len(s.ListByAuction("auction-1")))
	check.True(t, errors.Is(s.Delete("wh-1"), domain.ErrWebhookNotFound))

	// The same subscription can be created again after deletion.
	_, created := s.Upsert(newTestWebhook("wh-5", "auction-1", domain.EventPlayerSold, "https://example.com/hook", time.Now()))
	check.True(t, created)
}

func TestWebhookStore_ConcurrentUpsert(t *testing.T) {
	s := NewWebhookStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://%d.example.com", i%10)
			s.Upsert(newTestWebhook(fmt.Sprintf("wh-%d", i), "auction-1", domain.EventBidPlaced, url, time.Now()))
		}(i)
	}
	wg.Wait()

	check.Equal(t, 10, len(s.Subscribers("auction-1", domain.EventBidPlaced)))
}
