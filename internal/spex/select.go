package spex

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order sorts a selection by one attribute.
type Order struct {
	Ref       Ref
	Direction Direction
}

// Selection is the type-erased form of a Select, consumed by backends.
// Limit and Offset are meaningful only when HasLimit and HasOffset are set.
type Selection struct {
	Where     Node
	Orders    []Order
	Limit     int
	HasLimit  bool
	Offset    int
	HasOffset bool
}

// Select describes a retrieval of entities of type E: a filter, an
// ordering, and an optional window. Each method returns a new Select.
type Select[E any] struct {
	sel Selection
}

// From starts a Select over E that matches every entity.
func From[E any]() Select[E] {
	return Select[E]{}
}

// Where replaces the filter.
func (s Select[E]) Where(spec Specification[E]) Select[E] {
	s.sel.Where = spec.Node()
	return s
}

// OrderBy appends a sort key. Earlier keys take precedence.
func (s Select[E]) OrderBy(p Path[E], dir Direction) Select[E] {
	orders := make([]Order, len(s.sel.Orders), len(s.sel.Orders)+1)
	copy(orders, s.sel.Orders)
	s.sel.Orders = append(orders, Order{Ref: p.Ref(), Direction: dir})
	return s
}

// Limit caps the number of results. A negative n removes the cap.
func (s Select[E]) Limit(n int) Select[E] {
	s.sel.Limit, s.sel.HasLimit = n, n >= 0
	return s
}

// Offset skips the first n results. A negative n removes the offset.
func (s Select[E]) Offset(n int) Select[E] {
	s.sel.Offset, s.sel.HasOffset = n, n >= 0
	return s
}

// Selection returns the type-erased selection.
func (s Select[E]) Selection() Selection {
	sel := s.sel
	sel.Orders = append([]Order(nil), s.sel.Orders...)
	return sel
}
