package ast

// Equal reports whether two Units are structurally identical. It is used by
// the pretty-print round-trip property test: the printed-and-reparsed AST
// must equal the original one, node for node, modulo whitespace (which never
// reaches the tree to begin with).
func Equal(a, b *Unit) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Constructs) != len(b.Constructs) {
		return false
	}
	for i := range a.Constructs {
		if !constructEqual(a.Constructs[i], b.Constructs[i]) {
			return false
		}
	}
	return true
}

func constructEqual(a, b Construct) bool {
	switch x := a.(type) {
	case *FuncDefn:
		y, ok := b.(*FuncDefn)
		return ok && funcDefnEqual(x, y)
	case *VarDefn:
		y, ok := b.(*VarDefn)
		return ok && varDefnEqual(x, y)
	default:
		return false
	}
}

func funcDefnEqual(a, b *FuncDefn) bool {
	if a.Name != b.Name || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Name != b.Params[i].Name || !typeExprEqual(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	if !typeExprEqual(a.RetType, b.RetType) {
		return false
	}
	return instructionsEqual(a.Body, b.Body)
}

func varDefnEqual(a, b *VarDefn) bool {
	return a.Name == b.Name && typeExprEqual(a.Type, b.Type) && exprEqual(a.Init, b.Init)
}

func typeExprEqual(a, b *TypeExpr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Base != b.Base || a.Size != b.Size || len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !typeExprEqual(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}

func instructionsEqual(a, b []Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !instructionEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func instructionEqual(a, b Instruction) bool {
	switch x := a.(type) {
	case *VarDefn:
		y, ok := b.(*VarDefn)
		return ok && varDefnEqual(x, y)
	case *Return:
		y, ok := b.(*Return)
		return ok && exprEqual(x.Value, y.Value)
	case *Write:
		y, ok := b.(*Write)
		return ok && exprsEqual(x.Args, y.Args)
	case *ExprStmt:
		y, ok := b.(*ExprStmt)
		return ok && exprEqual(x.Call, y.Call)
	case *Assign:
		y, ok := b.(*Assign)
		return ok && x.Name == y.Name && exprEqual(x.Index, y.Index) && exprEqual(x.Value, y.Value)
	case *If:
		y, ok := b.(*If)
		if !ok || !exprEqual(x.Cond, y.Cond) || !instructionsEqual(x.Body, y.Body) ||
			x.HasElse != y.HasElse || len(x.Elifs) != len(y.Elifs) {
			return false
		}
		for i := range x.Elifs {
			if !exprEqual(x.Elifs[i].Cond, y.Elifs[i].Cond) || !instructionsEqual(x.Elifs[i].Body, y.Elifs[i].Body) {
				return false
			}
		}
		return instructionsEqual(x.Else, y.Else)
	case *Unless:
		y, ok := b.(*Unless)
		return ok && exprEqual(x.Cond, y.Cond) && instructionsEqual(x.Body, y.Body)
	case *Case:
		y, ok := b.(*Case)
		if !ok || !exprEqual(x.Scrutinee, y.Scrutinee) || len(x.Ofs) != len(y.Ofs) {
			return false
		}
		for i := range x.Ofs {
			if !exprEqual(x.Ofs[i].Value, y.Ofs[i].Value) || !instructionsEqual(x.Ofs[i].Body, y.Ofs[i].Body) {
				return false
			}
		}
		return instructionsEqual(x.Default, y.Default)
	case *While:
		y, ok := b.(*While)
		return ok && exprEqual(x.Cond, y.Cond) && instructionsEqual(x.Body, y.Body)
	case *DoWhile:
		y, ok := b.(*DoWhile)
		return ok && exprEqual(x.Cond, y.Cond) && instructionsEqual(x.Body, y.Body)
	case *For:
		y, ok := b.(*For)
		return ok && x.Var == y.Var && exprEqual(x.Iterable, y.Iterable) && instructionsEqual(x.Body, y.Body)
	default:
		return false
	}
}

func exprsEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !exprEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func exprEqual(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && exprEqual(x.Lhs, y.Lhs) && exprEqual(x.Rhs, y.Rhs)
	case *UnaryNot:
		y, ok := b.(*UnaryNot)
		return ok && exprEqual(x.Operand, y.Operand)
	case *ParenExpr:
		y, ok := b.(*ParenExpr)
		return ok && exprEqual(x.Inner, y.Inner)
	case *VarDeref:
		y, ok := b.(*VarDeref)
		return ok && x.Name == y.Name && exprEqual(x.Index, y.Index)
	case *CallExpr:
		y, ok := b.(*CallExpr)
		return ok && x.Name == y.Name && exprsEqual(x.Args, y.Args)
	case *ReadExpr:
		_, ok := b.(*ReadExpr)
		return ok
	case *HeadExpr:
		y, ok := b.(*HeadExpr)
		return ok && exprEqual(x.List, y.List)
	case *TailExpr:
		y, ok := b.(*TailExpr)
		return ok && exprEqual(x.List, y.List)
	case *IntLit:
		y, ok := b.(*IntLit)
		return ok && x.Text == y.Text
	case *FloatLit:
		y, ok := b.(*FloatLit)
		return ok && x.Text == y.Text
	case *BoolLit:
		y, ok := b.(*BoolLit)
		return ok && x.Value == y.Value
	case *StringLit:
		y, ok := b.(*StringLit)
		return ok && x.Raw == y.Raw
	case *ListLit:
		y, ok := b.(*ListLit)
		return ok && exprsEqual(x.Elems, y.Elems)
	case *ArrayLit:
		y, ok := b.(*ArrayLit)
		return ok && exprsEqual(x.Elems, y.Elems)
	case *TupleLit:
		y, ok := b.(*TupleLit)
		return ok && exprsEqual(x.Elems, y.Elems)
	default:
		return false
	}
}
