package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde/protolang/internal/entity"
)

// DebugString renders a JSON-ish dump of a node including the resolved
// types and resolved entities that String() deliberately omits; operator
// overloads, call targets and implicit-cast annotations are not rendered.
// It is used by the `protolang parse --debug-ast`
// subcommand and by snapshot tests (SPEC_FULL.md supplemented feature #1).
func DebugString(n Node) string {
	var sb strings.Builder
	writeDebug(&sb, n, 0)
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func writeDebug(sb *strings.Builder, n Node, depth int) {
	if n == nil {
		sb.WriteString("null")
		return
	}

	switch v := n.(type) {
	case *Program:
		sb.WriteString("{\"kind\": \"Program\", \"decls\": [\n")
		for i, d := range v.Decls {
			indent(sb, depth+1)
			writeDebug(sb, d, depth+1)
			if i < len(v.Decls)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		indent(sb, depth)
		sb.WriteString("]}")

	case *IntLiteral:
		fmt.Fprintf(sb, "{\"kind\": \"IntLiteral\", \"value\": %d, \"type\": %q}", v.Value, typeName(v.ResolvedType()))

	case *FloatLiteral:
		fmt.Fprintf(sb, "{\"kind\": \"FloatLiteral\", \"value\": %v, \"type\": %q}", v.Value, typeName(v.ResolvedType()))

	case *Ident:
		fmt.Fprintf(sb, "{\"kind\": \"Ident\", \"name\": %q, \"type\": %q, \"resolved\": %s}", v.Name, typeName(v.ResolvedType()), entity.DebugString(v.Resolved))

	case *Assign:
		sb.WriteString("{\"kind\": \"Assign\", \"target\": ")
		writeDebug(sb, v.Target, depth)
		sb.WriteString(", \"value\": ")
		writeDebug(sb, v.Value, depth)
		fmt.Fprintf(sb, ", \"type\": %q}", typeName(v.ResolvedType()))

	case *Unary:
		fmt.Fprintf(sb, "{\"kind\": \"Unary\", \"op\": %q, \"operand\": ", v.Op)
		writeDebug(sb, v.Operand, depth)
		fmt.Fprintf(sb, ", \"type\": %q}", typeName(v.ResolvedType()))

	case *Binary:
		fmt.Fprintf(sb, "{\"kind\": \"Binary\", \"op\": %q, \"left\": ", v.Op)
		writeDebug(sb, v.Left, depth)
		sb.WriteString(", \"right\": ")
		writeDebug(sb, v.Right, depth)
		fmt.Fprintf(sb, ", \"type\": %q}", typeName(v.ResolvedType()))

	case *Grouped:
		sb.WriteString("{\"kind\": \"Grouped\", \"inner\": ")
		writeDebug(sb, v.Inner, depth)
		sb.WriteString("}")

	case *Call:
		fmt.Fprintf(sb, "{\"kind\": \"Call\", \"callee\": %q, \"args\": [", v.Callee.String())
		for i, a := range v.Args {
			writeDebug(sb, a, depth)
			if i < len(v.Args)-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("]}")

	case *Subscript:
		sb.WriteString("{\"kind\": \"Subscript\", \"receiver\": ")
		writeDebug(sb, v.Receiver, depth)
		sb.WriteString(", \"index\": ")
		writeDebug(sb, v.Index, depth)
		sb.WriteString("}")

	case *Member:
		fmt.Fprintf(sb, "{\"kind\": \"Member\", \"name\": %q, \"receiver\": ", v.Name)
		writeDebug(sb, v.Receiver, depth)
		sb.WriteString("}")

	case *ExprStmt:
		sb.WriteString("{\"kind\": \"ExprStmt\", \"x\": ")
		writeDebug(sb, v.X, depth)
		sb.WriteString("}")

	case *ReturnStmt:
		sb.WriteString("{\"kind\": \"ReturnStmt\", \"value\": ")
		writeDebug(sb, v.Value, depth)
		sb.WriteString("}")

	case *CompoundStmt:
		sb.WriteString("{\"kind\": \"CompoundStmt\", \"stmts\": [\n")
		for i, s := range v.Stmts {
			indent(sb, depth+1)
			writeDebug(sb, s, depth+1)
			if i < len(v.Stmts)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		indent(sb, depth)
		sb.WriteString("]}")

	case *VarDecl:
		fmt.Fprintf(sb, "{\"kind\": \"VarDecl\", \"name\": %q, \"declaredType\": %q, \"resolved\": %s, \"init\": ", v.Name, v.TypeName, entity.DebugString(v.Resolved))
		writeDebug(sb, v.Init, depth)
		sb.WriteString("}")

	case *ParamDecl:
		fmt.Fprintf(sb, "{\"kind\": \"ParamDecl\", \"name\": %q, \"declaredType\": %q}", v.Name, v.TypeName)

	case *FuncDecl:
		fmt.Fprintf(sb, "{\"kind\": \"FuncDecl\", \"name\": %q, \"resolved\": %s, \"params\": [", v.Name, entity.DebugString(v.Resolved))
		for i, p := range v.Params {
			writeDebug(sb, p, depth)
			if i < len(v.Params)-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("], \"body\": ")
		writeDebug(sb, v.Body, depth)
		sb.WriteString("}")

	default:
		fmt.Fprintf(sb, "{\"kind\": \"Unknown\", \"repr\": %q}", n.String())
	}
}

func typeName(t interface{ TypeName() string }) string {
	if t == nil {
		return ""
	}
	return t.TypeName()
}
