// Package access describes per-lookup read consistency for finding an
// entity by identifier.
//
// A Plan is a value. Refresh and Lock return modified copies:
//
//	plan := access.Refresh().Lock(access.PessimisticWrite)
//
// Plans do not check transactional context. The dao package rejects lock
// modes other than LockDefault and LockNone outside a transaction.
package access

import "fmt"

// LockType selects the locking strategy of a lookup.
type LockType string

const (
	// LockDefault uses the provider's default strategy: no explicit lock.
	LockDefault LockType = "default"
	// LockNone explicitly requests no lock.
	LockNone LockType = "none"
	// Optimistic records the entity version on read and verifies it is
	// unchanged when the enclosing transaction commits.
	Optimistic LockType = "optimistic"
	// PessimisticWrite locks the row for the rest of the transaction.
	PessimisticWrite LockType = "pessimistic_write"
)

// Valid reports whether l is a known lock type.
func (l LockType) Valid() bool {
	switch l {
	case LockDefault, LockNone, Optimistic, PessimisticWrite:
		return true
	}
	return false
}

// RequiresTransaction reports whether lookups with l need an active
// transaction.
func (l LockType) RequiresTransaction() bool {
	return l == Optimistic || l == PessimisticWrite
}

// ParseLockType parses a lock type name as written by LockType.String.
func ParseLockType(s string) (LockType, error) {
	l := LockType(s)
	if s == "" {
		return LockDefault, nil
	}
	if !l.Valid() {
		return "", fmt.Errorf("unknown lock type %q", s)
	}
	return l, nil
}

func (l LockType) String() string { return string(l) }

// Plan is the access configuration of one lookup.
// The zero Plan is equivalent to Default().
type Plan struct {
	lock    LockType
	refresh bool
}

// Default returns the plan for a plain lookup: default lock, no refresh.
func Default() Plan {
	return Plan{lock: LockDefault}
}

// Refresh returns the default plan with refresh set.
func Refresh() Plan {
	return Default().Refresh()
}

// Lock returns the default plan with lock mode l.
func Lock(l LockType) Plan {
	return Default().Lock(l)
}

// Refresh returns a copy of p that reloads an already-resident instance.
func (p Plan) Refresh() Plan {
	p.refresh = true
	return p
}

// Lock returns a copy of p with lock mode l.
func (p Plan) Lock(l LockType) Plan {
	p.lock = l
	return p
}

// LockMode returns the lock mode.
func (p Plan) LockMode() LockType {
	if p.lock == "" {
		return LockDefault
	}
	return p.lock
}

// IsRefresh reports whether the lookup reloads resident instances.
func (p Plan) IsRefresh() bool { return p.refresh }

func (p Plan) String() string {
	if p.refresh {
		return fmt.Sprintf("lock=%s refresh", p.LockMode())
	}
	return fmt.Sprintf("lock=%s", p.LockMode())
}
