package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/liveauction/internal/domain"
)

// errorStatus pairs a sentinel with the status code it maps to.
type errorStatus struct {
	err    error
	status int
}

// errorStatuses is checked in order; the sentinel's text doubles as the
// error code in the response body.
var errorStatuses = []errorStatus{
	{domain.ErrAuctionNotFound, http.StatusNotFound},
	{domain.ErrTeamNotFound, http.StatusNotFound},
	{domain.ErrPlayerNotFound, http.StatusNotFound},
	{domain.ErrStateNotFound, http.StatusNotFound},
	{domain.ErrWebhookNotFound, http.StatusNotFound},

	{domain.ErrAuctionAlreadyExists, http.StatusConflict},
	{domain.ErrTeamAlreadyExists, http.StatusConflict},
	{domain.ErrPlayerAlreadyExists, http.StatusConflict},
	{domain.ErrAlreadyInitialized, http.StatusConflict},
	{domain.ErrAuctionNotLive, http.StatusConflict},
	{domain.ErrInvalidState, http.StatusConflict},

	{domain.ErrBiddingExpired, http.StatusGone},

	{domain.ErrBidTooLow, http.StatusUnprocessableEntity},
	{domain.ErrInsufficientCoins, http.StatusUnprocessableEntity},
	{domain.ErrNoBid, http.StatusUnprocessableEntity},
	{domain.ErrEmptyQueue, http.StatusUnprocessableEntity},

	{domain.ErrConcurrentConflict, http.StatusPreconditionFailed},
}

// mapError maps domain errors to HTTP responses.
func mapError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			if domain.IsRetryable(err) {
				w.Header().Set("Retry-After", "0")
			}
			WriteError(w, es.status, es.err.Error(), err.Error())
			return
		}
	}

	WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
