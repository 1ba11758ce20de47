package entity

import (
	"fmt"
	"strings"
)

// DebugString renders a JSON-ish dump of e, dispatching on capability
// (Callable/Var/Scalar/Type) rather than concrete type, the same
// hand-formatted-string approach as ast.DebugString and for the same
// reason original_source's entity_system.h gives every IEntity a
// dump_json(): ad-hoc debugging, not a marshaled struct.
func DebugString(e Entity) string {
	if e == nil {
		return "null"
	}

	switch v := e.(type) {
	case *OverloadSet:
		return v.DebugString()
	case Callable:
		var params []string
		for i := 0; i < v.ParamCount(); i++ {
			params = append(params, fmt.Sprintf("%s: %s", v.ParamName(i), v.ParamType(i).TypeName()))
		}
		return fmt.Sprintf("{\"kind\": \"Callable\", \"name\": %q, \"mangled\": %q, \"params\": [%s], \"return\": %q}",
			e.EntityName(), v.MangledName(), strings.Join(params, ", "), v.ReturnType().TypeName())
	case Var:
		return fmt.Sprintf("{\"kind\": \"Var\", \"name\": %q, \"type\": %q}", e.EntityName(), v.VarType().TypeName())
	case Scalar:
		return fmt.Sprintf("{\"kind\": \"Scalar\", \"name\": %q, \"scalarKind\": %q, \"bits\": %d}", e.EntityName(), v.Kind(), v.Bits())
	case Type:
		return fmt.Sprintf("{\"kind\": \"Type\", \"name\": %q}", v.TypeName())
	default:
		return fmt.Sprintf("{\"kind\": \"Entity\", \"name\": %q}", e.EntityName())
	}
}

// DebugString renders s's own callables plus a reference to its parent
// chain, without re-dumping the parent's members (original_source's
// OverloadSet::dump_json only walks its own `m_set`).
func (s *OverloadSet) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "{\"kind\": \"OverloadSet\", \"name\": %q, \"locals\": [", s.name)
	for i, fn := range s.locals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(DebugString(fn))
	}
	sb.WriteString("]")
	if s.Parent != nil {
		fmt.Fprintf(&sb, ", \"parentCount\": %d", s.Parent.Count())
	}
	sb.WriteString("}")
	return sb.String()
}
