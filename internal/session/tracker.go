package session

import "github.com/saturnino-fabrica-de-software/chamada/internal/domain"

// Tracker remembers which identities were already marked in a session.
// It is owned by the capture loop and is not safe for concurrent use.
type Tracker struct {
	expected int
	seen     map[domain.IdentityKey]struct{}
	order    []domain.IdentityKey
}

func NewTracker(expected int) *Tracker {
	return &Tracker{
		expected: expected,
		seen:     make(map[domain.IdentityKey]struct{}, expected),
	}
}

// Observe records a sighting and reports whether it was the first one.
func (t *Tracker) Observe(key domain.IdentityKey) bool {
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	t.order = append(t.order, key)
	return true
}

// IsComplete is true once every identity of the index has been seen.
func (t *Tracker) IsComplete() bool {
	return t.expected > 0 && len(t.seen) >= t.expected
}

func (t *Tracker) Len() int {
	return len(t.seen)
}

// Marked returns the keys in first-sighting order.
func (t *Tracker) Marked() []domain.IdentityKey {
	out := make([]domain.IdentityKey, len(t.order))
	copy(out, t.order)
	return out
}
