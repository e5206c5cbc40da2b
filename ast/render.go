package ast

import "fmt"

// RenderExpr renders e back to IPL source syntax, with no type checking and
// no HTML escaping — used for graph node labels, where only a readable
// rendering is needed, not the printer's full canonical-form contract.
func RenderExpr(e Expr) string {
	switch n := e.(type) {
	case *BinaryExpr:
		return RenderExpr(n.Lhs) + " " + n.Op + " " + RenderExpr(n.Rhs)
	case *UnaryNot:
		return "!" + RenderExpr(n.Operand)
	case *ParenExpr:
		return "(" + RenderExpr(n.Inner) + ")"
	case *VarDeref:
		if n.Index != nil {
			return fmt.Sprintf("%s[%s]", n.Name, RenderExpr(n.Index))
		}
		return n.Name
	case *CallExpr:
		return fmt.Sprintf("%s(%s)", n.Name, renderExprList(n.Args))
	case *ReadExpr:
		return "read()"
	case *HeadExpr:
		return "head(" + RenderExpr(n.List) + ")"
	case *TailExpr:
		return "tail(" + RenderExpr(n.List) + ")"
	case *IntLit:
		return n.Text
	case *FloatLit:
		return n.Text
	case *BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *StringLit:
		return n.Raw
	case *ListLit:
		return "[" + renderExprList(n.Elems) + "]"
	case *ArrayLit:
		return "{" + renderExprList(n.Elems) + "}"
	case *TupleLit:
		return "|" + renderExprList(n.Elems) + "|"
	default:
		return ""
	}
}

func renderExprList(exprs []Expr) string {
	s := ""
	for i, e := range exprs {
		if i > 0 {
			s += ", "
		}
		s += RenderExpr(e)
	}
	return s
}

// RenderType renders a TypeExpr back to its declared type syntax.
func RenderType(te *TypeExpr) string {
	switch te.Base {
	case "list":
		return "list<" + RenderType(te.Elems[0]) + ">"
	case "array":
		return fmt.Sprintf("array<%s, %d>", RenderType(te.Elems[0]), te.Size)
	case "tuple":
		s := "tuple<"
		for i, e := range te.Elems {
			if i > 0 {
				s += ", "
			}
			s += RenderType(e)
		}
		return s + ">"
	default:
		return te.Base
	}
}
