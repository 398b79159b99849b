package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAuctionAlreadyExists = errors.New("auction_already_exists")
	ErrAuctionNotFound      = errors.New("auction_not_found")
	ErrAuctionNotLive       = errors.New("auction_not_live")
	ErrTeamAlreadyExists    = errors.New("team_already_exists")
	ErrTeamNotFound         = errors.New("team_not_found")
	ErrPlayerAlreadyExists  = errors.New("player_already_exists")
	ErrPlayerNotFound       = errors.New("player_not_found")
	ErrWebhookNotFound      = errors.New("webhook_not_found")

	// Live engine errors.
	ErrStateNotFound      = errors.New("auction_state_not_found")
	ErrAlreadyInitialized = errors.New("auction_state_already_initialized")
	ErrInvalidState       = errors.New("invalid_state")
	ErrEmptyQueue         = errors.New("empty_queue")
	ErrBiddingExpired     = errors.New("bidding_expired")
	ErrBidTooLow          = errors.New("bid_too_low")
	ErrInsufficientCoins  = errors.New("insufficient_coins")
	ErrNoBid              = errors.New("no_bid")
	ErrConcurrentConflict = errors.New("concurrent_conflict")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsRetryable reports whether repeating the identical call may succeed.
// Only a lost optimistic precondition qualifies; every other failure needs
// the caller to change its request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentConflict)
}
