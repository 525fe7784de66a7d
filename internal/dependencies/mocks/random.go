package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/gameaccounts/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing. Queued tokens
// are returned in order; once the queue is empty it falls back to a
// deterministic counter so every token stays distinct.
type MockRandom struct {
	mu      sync.Mutex
	tokens  []string
	index   int
	counter int

	// Err, when set, is returned from every Token call
	Err error
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued token, or a generated one
func (r *MockRandom) Token(n int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return "", r.Err
	}
	if r.index < len(r.tokens) {
		result := r.tokens[r.index]
		r.index++
		return result, nil
	}
	r.counter++
	return fmt.Sprintf("mock-token-%d-%d", n, r.counter), nil
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	r.tokens = append(r.tokens, values...)
	r.mu.Unlock()
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	r.tokens = nil
	r.index = 0
	r.counter = 0
	r.Err = nil
	r.mu.Unlock()
}
