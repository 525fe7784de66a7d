package oauth

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/mcoot/gameaccounts/internal/dependencies/clock"
)

// PendingAuthorization is an outstanding authorize redirect awaiting its
// callback
type PendingAuthorization struct {
	State     string
	Provider  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// pendingStore holds at most one pending authorization per browser
// binding. A new Initiate from the same browser replaces the old one.
// At capacity, expired records are swept first and then the oldest
// record is evicted.
type pendingStore struct {
	clock clock.Clock
	max   int

	mu      sync.Mutex
	records map[string]*PendingAuthorization
}

func newPendingStore(clock clock.Clock, max int) *pendingStore {
	return &pendingStore{
		clock:   clock,
		max:     max,
		records: make(map[string]*PendingAuthorization),
	}
}

func (p *pendingStore) put(binding string, pending *PendingAuthorization) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.records[binding]; !ok && len(p.records) >= p.max {
		p.sweepLocked()
		if len(p.records) >= p.max {
			p.evictOldestLocked()
		}
	}
	p.records[binding] = pending
}

// consume removes the record for binding and reports whether it matched
// provider and state and was still live. The record is gone afterwards
// whatever the outcome, so a state value is accepted at most once.
func (p *pendingStore) consume(binding, provider, state string) bool {
	p.mu.Lock()
	pending, ok := p.records[binding]
	delete(p.records, binding)
	p.mu.Unlock()

	if !ok || state == "" {
		return false
	}
	if clock.Expired(p.clock, pending.ExpiresAt) {
		return false
	}
	if pending.Provider != provider {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pending.State), []byte(state)) == 1
}

func (p *pendingStore) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

// sweep removes expired records and returns how many were removed
func (p *pendingStore) sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sweepLocked()
}

func (p *pendingStore) sweepLocked() int {
	removed := 0
	for binding, pending := range p.records {
		if clock.Expired(p.clock, pending.ExpiresAt) {
			delete(p.records, binding)
			removed++
		}
	}
	return removed
}

func (p *pendingStore) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for binding, pending := range p.records {
		if oldest == "" || pending.IssuedAt.Before(oldestAt) {
			oldest, oldestAt = binding, pending.IssuedAt
		}
	}
	delete(p.records, oldest)
}
