// SPDX-License-Identifier: MIT
package channel

// Set is the ordered working collection of unique channels for one
// pipeline run. Order is insertion order after deduplication. The
// pipeline runner owns the set; stages receive it in turn and must not
// retain a reference once their turn ends.
type Set struct {
	items []*Channel
}

// NewSet returns an empty set with room for n channels.
func NewSet(n int) *Set {
	return &Set{items: make([]*Channel, 0, n)}
}

// Append adds a channel at the end of the set. Uniqueness is the
// deduplicator's responsibility, not the set's.
func (s *Set) Append(c *Channel) {
	s.items = append(s.items, c)
}

// Items returns the channels in insertion order. Callers treat the
// slice as read-only.
func (s *Set) Items() []*Channel {
	return s.items
}

// Len returns the number of channels in the set.
func (s *Set) Len() int {
	return len(s.items)
}
