package query

import (
	"fmt"
	"slices"
)

// ValidationResult reports problems found in a query before execution.
type ValidationResult struct {
	// Valid is false when Errors is non-empty. Warnings do not affect it.
	Valid bool

	// Errors lists problems that make the query unexecutable.
	Errors []string

	// Warnings lists constructs that execute but are likely mistakes.
	Warnings []string
}

// Validate checks q for structural problems.
//
// Errors:
//   - missing variant or empty text
//   - a parameter with an empty key
//   - a literal query placeholder with no bound parameter
//
// Warnings:
//   - a key bound more than once (the last binding wins)
//   - a literal query parameter no placeholder references
//   - :KEY placeholders in a native query, which binds positionally
//
// Named query text lives in the catalog, so placeholders of named queries
// are checked when the query is rendered.
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{}
	v.validate(q)
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(q Query) {
	switch q.Type() {
	case TypeNamed, TypeLiteral, TypeNative:
	case "":
		v.addError("query has no type")
		return
	default:
		v.addError("unknown query type %q", q.Type())
		return
	}

	if q.Text() == "" {
		if q.Type() == TypeNamed {
			v.addError("named query requires a name")
		} else {
			v.addError("%s query requires text", q.Type())
		}
	}

	seen := make(map[string]bool)
	for i, p := range q.params {
		if p.Key == "" {
			v.addError("parameter %d has an empty key", i)
			continue
		}
		if seen[p.Key] {
			v.addWarning("parameter %q is bound more than once; the last value is used", p.Key)
		}
		seen[p.Key] = true
	}

	switch q.Type() {
	case TypeLiteral:
		v.validatePlaceholders(q, seen)
	case TypeNative:
		if names := Placeholders(q.Text()); len(names) > 0 {
			v.addWarning("native query contains named placeholders %v; native parameters bind positionally", names)
		}
	}
}

func (v *validator) validatePlaceholders(q Query, bound map[string]bool) {
	names := Placeholders(q.Text())
	for _, name := range names {
		if !bound[name] {
			v.addError("placeholder :%s has no bound parameter", name)
			bound[name] = true
		}
	}
	for _, p := range q.params {
		if p.Key != "" && !slices.Contains(names, p.Key) {
			v.addWarning("parameter %q is not referenced by the query text", p.Key)
		}
	}
}
