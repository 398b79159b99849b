package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/efreitasn/liveauction/internal/service"
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware.
func NewRouter(
	regSvc *service.RegistrationService,
	liveSvc *service.LiveService,
	statsSvc *service.StatsService,
	webhookSvc *service.WebhookService,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	regH := NewRegistrationHandler(regSvc)
	liveH := NewLiveHandler(liveSvc)
	statsH := NewStatsHandler(statsSvc)
	webhookH := NewWebhookHandler(webhookSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Registration routes.
	r.Post("/auctions", regH.CreateAuction)
	r.Route("/auctions/{auction_id}", func(r chi.Router) {
		r.Get("/", regH.GetAuction)
		r.Put("/status", regH.SetAuctionStatus)
		r.Post("/teams", regH.CreateTeam)
		r.Get("/teams", regH.ListTeams)
		r.Post("/players", regH.CreatePlayer)
		r.Get("/players", regH.ListPlayers)

		// Read models.
		r.Get("/stats", statsH.GetStats)
		r.Get("/dashboard", statsH.GetDashboard)
		r.Get("/teams/bidding", statsH.GetTeamBidding)

		// Live bidding routes.
		r.Route("/live", func(r chi.Router) {
			r.Post("/", liveH.Initialize)
			r.Get("/", liveH.GetState)
			r.Delete("/", liveH.Reset)
			r.Post("/advance", liveH.Advance)
			r.Post("/bids", liveH.PlaceBid)
			r.Get("/bids", liveH.BidHistory)
			r.Post("/extend", liveH.Extend)
			r.Post("/pause", liveH.Pause)
			r.Post("/resume", liveH.Resume)
			r.Post("/settle", liveH.Settle)
			r.Post("/pass", liveH.Pass)
			r.Post("/requeue", liveH.Requeue)
			r.Get("/queue", liveH.Queue)
			r.Get("/unsold", liveH.Unsold)
			r.Get("/countdown", liveH.Countdown)
		})
	})
	r.Get("/teams/{team_id}", regH.GetTeam)
	r.Get("/players/{player_id}", regH.GetPlayer)

	// Webhook routes.
	r.Post("/webhooks", webhookH.Upsert)
	r.Get("/webhooks", webhookH.List)
	r.Delete("/webhooks/{webhook_id}", webhookH.Delete)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests that carry a body. If the Content-Type header doesn't start
// with "application/json", it returns 400 Bad Request before the handler runs.
// Bodyless commands such as POST .../live/settle pass through.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.ContentLength != 0
		if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
