// File: internal/bench/stack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Zero-alloc batch of handles. NOT thread-safe; no mutex in the hot path.

package bench

// stack holds the handles of one batch and releases them newest first.
type stack[H any] struct {
	items []H
}

func newStack[H any](capacity int) *stack[H] {
	return &stack[H]{items: make([]H, 0, capacity)}
}

func (s *stack[H]) push(h H) {
	s.items = append(s.items, h)
}

func (s *stack[H]) pop() (h H, ok bool) {
	n := len(s.items)
	if n == 0 {
		return h, false
	}
	h = s.items[n-1]
	var zero H
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return h, true
}
