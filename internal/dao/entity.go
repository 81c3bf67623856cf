package dao

import "reflect"

// Identifiable is implemented by entities with a string primary key.
type Identifiable interface {
	GetID() string
}

// Versioned is implemented by entities with an incrementing version. A
// version of zero marks an entity that was never stored.
type Versioned interface {
	GetVersion() int64
}

// Entity is what the typed DAO stores. Values returns the entity's state
// keyed by catalog attribute path; identifier, version and timestamp
// entries are managed by the provider and may be omitted.
type Entity interface {
	Identifiable
	Versioned
	Values() map[string]any
}

// isNil reports whether v is nil or a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
