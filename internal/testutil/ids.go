package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out UUID-shaped identifiers in ascending order:
// 00000000-0000-0000-0000-000000000001, ...000002, and so on. Lexical order
// matches creation order, which keeps id-ordered results predictable.
type SequentialIDs struct {
	mu sync.Mutex
	n  int64
}

// Next returns the next identifier.
func (s *SequentialIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", s.n)
}
