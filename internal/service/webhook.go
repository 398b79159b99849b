package service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/engine"
	"github.com/efreitasn/liveauction/internal/store"
)

// UpsertWebhookRequest represents the input for webhook registration.
type UpsertWebhookRequest struct {
	AuctionID string
	URL       string
	Events    []string
}

// WebhookService handles webhook CRUD and fans live-auction events out to
// every subscriber. It implements engine.EventDispatcher.
type WebhookService struct {
	store        *store.WebhookStore
	auctionStore *store.AuctionStore
	client       *http.Client
	logger       *slog.Logger
}

var _ engine.EventDispatcher = (*WebhookService)(nil)

// NewWebhookService creates a new WebhookService with the given dependencies.
func NewWebhookService(
	webhookStore *store.WebhookStore,
	auctionStore *store.AuctionStore,
	webhookTimeout time.Duration,
	logger *slog.Logger,
) *WebhookService {
	return &WebhookService{
		store:        webhookStore,
		auctionStore: auctionStore,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		logger: logger,
	}
}

// Upsert validates the request and creates the missing subscriptions.
// Returns the resulting webhooks, whether any new subscriptions were created, and any error.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) ([]*domain.Webhook, bool, error) {
	if !s.auctionStore.Exists(req.AuctionID) {
		return nil, false, domain.ErrAuctionNotFound
	}

	// Validate URL.
	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use https scheme"}
	}

	dedupedEvents, err := domain.NormalizeWebhookEvents(req.Events)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	anyCreated := false
	webhooks := make([]*domain.Webhook, 0, len(dedupedEvents))

	for _, event := range dedupedEvents {
		stored, created := s.store.Upsert(&domain.Webhook{
			WebhookID: uuid.New().String(),
			AuctionID: req.AuctionID,
			Event:     event,
			URL:       req.URL,
			CreatedAt: now,
			UpdatedAt: now,
		})
		anyCreated = anyCreated || created
		webhooks = append(webhooks, stored)
	}

	return webhooks, anyCreated, nil
}

// List validates the auction exists and returns all its webhook subscriptions.
func (s *WebhookService) List(auctionID string) ([]*domain.Webhook, error) {
	if !s.auctionStore.Exists(auctionID) {
		return nil, domain.ErrAuctionNotFound
	}
	return s.store.ListByAuction(auctionID), nil
}

// Delete removes a webhook subscription by ID.
func (s *WebhookService) Delete(webhookID string) error {
	return s.store.Delete(webhookID)
}

// eventPayload is the JSON envelope of every live-auction webhook.
type eventPayload struct {
	Event     string `json:"event"`
	AuctionID string `json:"auction_id"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

type bidPlacedData struct {
	BidID    string `json:"bid_id"`
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Amount   int64  `json:"amount"`
	Version  uint64 `json:"version"`
}

type playerSoldData struct {
	SaleID         string `json:"sale_id"`
	PlayerID       string `json:"player_id"`
	TeamID         string `json:"team_id"`
	Amount         int64  `json:"amount"`
	HasMorePlayers bool   `json:"has_more_players"`
	Version        uint64 `json:"version"`
}

type playerUnsoldData struct {
	PlayerID       string `json:"player_id"`
	HasMorePlayers bool   `json:"has_more_players"`
	Version        uint64 `json:"version"`
}

// DispatchBidPlaced notifies bid.placed subscribers. Fire-and-forget.
func (s *WebhookService) DispatchBidPlaced(auctionID, teamName string, bid engine.Bid, version uint64) {
	s.dispatch(auctionID, domain.EventBidPlaced, bid.PlacedAt, bidPlacedData{
		BidID:    bid.BidID,
		PlayerID: bid.PlayerID,
		TeamID:   bid.TeamID,
		TeamName: teamName,
		Amount:   bid.Amount,
		Version:  version,
	})
}

// DispatchPlayerSold notifies player.sold subscribers. Fire-and-forget.
func (s *WebhookService) DispatchPlayerSold(auctionID string, result *engine.SettleResult) {
	s.dispatch(auctionID, domain.EventPlayerSold, result.SoldAt, playerSoldData{
		SaleID:         result.SaleID,
		PlayerID:       result.PlayerID,
		TeamID:         result.TeamID,
		Amount:         result.Amount,
		HasMorePlayers: result.HasMorePlayers,
		Version:        result.Version,
	})
}

// DispatchPlayerUnsold notifies player.unsold subscribers. Fire-and-forget.
func (s *WebhookService) DispatchPlayerUnsold(auctionID string, result *engine.PassResult) {
	s.dispatch(auctionID, domain.EventPlayerUnsold, time.Now(), playerUnsoldData{
		PlayerID:       result.PlayerID,
		HasMorePlayers: result.HasMorePlayers,
		Version:        result.Version,
	})
}

// dispatch delivers one payload to every subscriber of event, each on its
// own goroutine.
func (s *WebhookService) dispatch(auctionID, event string, at time.Time, data any) {
	subs := s.store.Subscribers(auctionID, event)
	if len(subs) == 0 {
		return
	}

	body, err := json.Marshal(eventPayload{
		Event:     event,
		AuctionID: auctionID,
		Timestamp: at.UTC().Truncate(time.Second).Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return
	}

	for _, wh := range subs {
		go s.deliver(wh, event, body)
	}
}

// deliver sends the webhook payload via HTTP POST with the required headers.
// Failures are logged and not retried.
func (s *WebhookService) deliver(wh *domain.Webhook, eventType string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logDeliveryFailure(wh, eventType, slog.String("error", err.Error()))
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		s.logDeliveryFailure(wh, eventType, slog.Int("status", resp.StatusCode))
	}
}

func (s *WebhookService) logDeliveryFailure(wh *domain.Webhook, eventType string, attr slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.Warn("webhook delivery failed",
		slog.String("webhook_id", wh.WebhookID),
		slog.String("auction_id", wh.AuctionID),
		slog.String("event", eventType),
		attr,
	)
}
