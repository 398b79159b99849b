package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Webhook event types.
const (
	EventBidPlaced    = "bid.placed"
	EventPlayerSold   = "player.sold"
	EventPlayerUnsold = "player.unsold"
)

// WebhookEvents lists every event a subscription may name.
var WebhookEvents = []string{EventBidPlaced, EventPlayerSold, EventPlayerUnsold}

// IsWebhookEvent reports whether event is one of WebhookEvents.
func IsWebhookEvent(event string) bool {
	return slices.Contains(WebhookEvents, event)
}

// NormalizeWebhookEvents validates events and drops repeats, keeping the
// first occurrence of each.
func NormalizeWebhookEvents(events []string) ([]string, error) {
	if len(events) == 0 {
		return nil, &ValidationError{Message: "events must be a non-empty array"}
	}
	out := make([]string, 0, len(events))
	for _, event := range events {
		if !IsWebhookEvent(event) {
			return nil, &ValidationError{
				Message: fmt.Sprintf("unknown event type %q, must be one of: %s", event, strings.Join(WebhookEvents, ", ")),
			}
		}
		if !slices.Contains(out, event) {
			out = append(out, event)
		}
	}
	return out, nil
}

// Webhook represents a subscription to an auction's live events. Several
// URLs may subscribe to the same event; each (auction, event, url) triple
// is one subscription.
type Webhook struct {
	WebhookID string
	AuctionID string
	Event     string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
