package engine

import (
	"sort"
	"sync"

	"github.com/efreitasn/liveauction/internal/domain"
)

// session guards one auction's live State. Every mutating operation runs
// read-validate-write under mu, so each is one indivisible step.
type session struct {
	mu        sync.RWMutex
	state     *State
	discarded bool // set by Reset; holders of a stale pointer must not write
}

// Registry is a thread-safe map of auction_id → live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
	}
}

// get returns the session for the auction, if one exists.
func (r *Registry) get(auctionID string) (*session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[auctionID]
	return sess, ok
}

// create installs state as the auction's session. It returns
// domain.ErrAlreadyInitialized if one already exists.
func (r *Registry) create(state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[state.AuctionID]; exists {
		return domain.ErrAlreadyInitialized
	}
	r.sessions[state.AuctionID] = &session{state: state}
	return nil
}

// remove drops the auction's session and marks it discarded. It returns
// domain.ErrStateNotFound if there is none.
func (r *Registry) remove(auctionID string) error {
	r.mu.Lock()
	sess, ok := r.sessions[auctionID]
	if !ok {
		r.mu.Unlock()
		return domain.ErrStateNotFound
	}
	delete(r.sessions, auctionID)
	r.mu.Unlock()

	// Wait out any in-flight operation before marking it dead.
	sess.mu.Lock()
	sess.discarded = true
	sess.mu.Unlock()
	return nil
}

// AuctionIDs returns the ids of every initialized auction, sorted.
func (r *Registry) AuctionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of initialized auctions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
