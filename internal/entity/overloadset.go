package entity

import "github.com/cwbudde/protolang/internal/token"

// OverloadSet is an ordered collection of Callables sharing a name in one
// Scope, with an optional link to the nearest enclosing scope's set of the
// same name (spec §3.3, §3.5). Concrete record rather than a polymorphic
// subclass, per spec §9.
type OverloadSet struct {
	name    string
	rng     token.Range
	locals  []Callable
	Parent  *OverloadSet
}

// NewOverloadSet creates an empty set chained to parent (nil at the root
// for a given name).
func NewOverloadSet(name string, rng token.Range, parent *OverloadSet) *OverloadSet {
	return &OverloadSet{name: name, rng: rng, Parent: parent}
}

func (s *OverloadSet) EntityName() string { return s.name }
func (s *OverloadSet) Range() token.Range { return s.rng }

// Append adds func to the local set. The caller is responsible for
// assigning func's mangled name using Count() *before* calling Append, so
// that numbering matches original_source's add_to_overload_set (the index
// is taken before the new entry is appended).
func (s *OverloadSet) Append(fn Callable) {
	s.locals = append(s.locals, fn)
}

// Count is the total number of callables reachable from s: locals plus
// everything in the parent chain (original_source OverloadSet::count()).
// A new local overload's mangled-name index is this value, taken before
// Append, so numbering survives across nested scopes that extend an outer
// overload set rather than shadowing it (SPEC_FULL.md supplement #5).
func (s *OverloadSet) Count() int {
	n := len(s.locals)
	if s.Parent != nil {
		n += s.Parent.Count()
	}
	return n
}

// Locals returns this set's own callables (excluding the parent chain), in
// insertion order.
func (s *OverloadSet) Locals() []Callable {
	return s.locals
}

// All returns every reachable callable: this set's locals first
// (innermost-first), then the parent chain's, in insertion order within
// each set (spec §4.2 "Iteration contract for overload sets").
func (s *OverloadSet) All() []Callable {
	var out []Callable
	for set := s; set != nil; set = set.Parent {
		out = append(out, set.locals...)
	}
	return out
}
