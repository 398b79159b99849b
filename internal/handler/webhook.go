package handler

import (
	"net/http"

	"github.com/efreitasn/liveauction/internal/domain"
	"github.com/efreitasn/liveauction/internal/service"
	"github.com/go-chi/chi/v5"
)

// WebhookHandler serves subscriptions to an auction's live events.
type WebhookHandler struct {
	webhookSvc *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// subscribeRequest is the JSON request body for POST /webhooks.
type subscribeRequest struct {
	AuctionID string   `json:"auction_id"`
	URL       string   `json:"url"`
	Events    []string `json:"events"`
}

// subscriptionResponse is one (auction, event, url) subscription.
type subscriptionResponse struct {
	WebhookID string `json:"webhook_id"`
	AuctionID string `json:"auction_id"`
	Event     string `json:"event"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type subscriptionListResponse struct {
	Webhooks []subscriptionResponse `json:"webhooks"`
}

// Upsert handles POST /webhooks. It answers 201 when at least one of the
// requested events gained this URL and 200 when every subscription already
// existed.
func (h *WebhookHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.AuctionID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "auction_id is required")
		return
	}
	events, err := domain.NormalizeWebhookEvents(req.Events)
	if err != nil {
		mapError(w, err)
		return
	}

	subs, created, err := h.webhookSvc.Upsert(service.UpsertWebhookRequest{
		AuctionID: req.AuctionID,
		URL:       req.URL,
		Events:    events,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, subscriptionListResponse{Webhooks: buildSubscriptions(subs, "")})
}

// List handles GET /webhooks?auction_id=&event=. The event filter is
// optional.
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	auctionID := q.Get("auction_id")
	if auctionID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "auction_id query parameter is required")
		return
	}
	event := q.Get("event")
	if event != "" && !domain.IsWebhookEvent(event) {
		WriteError(w, http.StatusBadRequest, "validation_error", "unknown event type "+event)
		return
	}

	subs, err := h.webhookSvc.List(auctionID)
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, subscriptionListResponse{Webhooks: buildSubscriptions(subs, event)})
}

// Delete handles DELETE /webhooks/{webhook_id}.
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.webhookSvc.Delete(chi.URLParam(r, "webhook_id")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildSubscriptions renders subs, keeping only those for event when it is
// set.
func buildSubscriptions(subs []*domain.Webhook, event string) []subscriptionResponse {
	out := make([]subscriptionResponse, 0, len(subs))
	for _, wh := range subs {
		if event != "" && wh.Event != event {
			continue
		}
		out = append(out, subscriptionResponse{
			WebhookID: wh.WebhookID,
			AuctionID: wh.AuctionID,
			Event:     wh.Event,
			URL:       wh.URL,
			CreatedAt: formatTime(wh.CreatedAt),
			UpdatedAt: formatTime(wh.UpdatedAt),
		})
	}
	return out
}
