// Package analyzer implements the IPL's static analyzer (spec §4.4): a
// depth-first AST walk that composes the type model, scoped symbol table
// and pretty-printer to produce an annotated HTML listing plus a
// diagnostics log.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/iplang/iplanalyze/ast"
	"github.com/iplang/iplanalyze/diagnostics"
	"github.com/iplang/iplanalyze/printer"
	"github.com/iplang/iplanalyze/symtab"
	"github.com/iplang/iplanalyze/typesys"
)

// Error message strings. These are the exact, binding text the listing and
// log must carry (spec §7) — never reworded, never parameterized beyond
// what's shown here.
const (
	msgVarAlreadyDefined        = "Variable already defined"
	msgVarNotInScope            = "Variable not in scope"
	msgFuncAlreadyDefined       = "Function already defined"
	msgFuncNotInScope           = "Function not in scope"
	msgMismatchedTypes          = "Mismatched types"
	msgMismatchedAssign         = "Mismatched types in assignment"
	msgMismatchedReturn         = "Mismatched types in return statement"
	msgMismatchedArg            = "Mismatched types in function call argument"
	msgArityMismatch            = "Number of function parameters and given arguments must match"
	msgIndexLhsNotArray         = "Type of lhs operand for operator [] must be array"
	msgIndexRhsNotInt           = "Type of rhs operand for operator [] must be int"
	msgConsRhsNotList           = "Type of rhs operand for operator ^:/$: must be list"
	msgConsLhsMismatch          = "Type of lhs operand for operator ^:/$: must be the same as rhs's typename"
	msgCondNotBool              = "Type of condition expression must be bool"
	msgCaseNotIntOrString       = "Type of case expression must be int or string"
	msgForNotIterable           = "Type of expression must iterable"
	msgListNotHomogeneous       = "Lists must have homogeneous types"
	msgArrayNotHomogeneous      = "Arrays must have homogeneous types"
	msgHeadTailNotList          = "head()/tail() operations can only be used on lists"
)

func msgOperandsMustBe(op, desc string) string {
	return fmt.Sprintf("Type of operands for operator %s must be %s", op, desc)
}

// Analyzer owns all state for analyzing one source file: one instance per
// file, discarded after output is written (spec §5).
type Analyzer struct {
	vars    *symtab.VarTable
	funcs   *symtab.FuncTable
	p       *printer.Printer
	log     *diagnostics.Log
	retType typesys.Type
	inFunc  bool

	// FuncNames records function names in definition order, for the
	// caller to link headers and drive per-function graph generation.
	FuncNames []string
}

// New returns a fresh Analyzer.
func New() *Analyzer {
	return &Analyzer{
		vars:  symtab.NewVarTable(),
		funcs: symtab.NewFuncTable(),
		p:     printer.New(),
		log:   diagnostics.NewLog(),
	}
}

// Result bundles the analyzer's output.
type Result struct {
	HTML      string
	HasErrors bool
	Log       *diagnostics.Log
	FuncNames []string
}

// Analyze visits every top-level construct in source order and returns the
// finished listing.
func (a *Analyzer) Analyze(u *ast.Unit) Result {
	for _, c := range u.Constructs {
		switch n := c.(type) {
		case *ast.FuncDefn:
			a.visitFuncDefn(n)
		case *ast.VarDefn:
			a.visitVarDefn(n)
		}
	}
	return Result{
		HTML:      a.p.HTML(),
		HasErrors: a.log.ContainsErrors(),
		Log:       a.log,
		FuncNames: a.FuncNames,
	}
}

func (a *Analyzer) stage(msg string) {
	a.p.StageError(msg)
	a.log.Log(diagnostics.ERROR, msg)
}

func (a *Analyzer) emit(line string) {
	a.p.FlushLine(printer.Escape(a.p.IndentString() + line))
}

func (a *Analyzer) emitDedented(line string) {
	a.p.FlushLine(printer.Escape(a.p.DedentedIndentString() + line))
}

// --- Type-expression resolution and rendering ---

func resolveTypeExpr(te *ast.TypeExpr) typesys.Type {
	switch te.Base {
	case "int":
		return typesys.MakePrimitive(typesys.Int)
	case "bool":
		return typesys.MakePrimitive(typesys.Bool)
	case "float":
		return typesys.MakePrimitive(typesys.Float)
	case "string":
		return typesys.MakePrimitive(typesys.String)
	case "list":
		return typesys.MakeList(resolveTypeExpr(te.Elems[0]))
	case "array":
		return typesys.MakeArray(resolveTypeExpr(te.Elems[0]), te.Size)
	case "tuple":
		elems := make([]typesys.Type, len(te.Elems))
		for i, e := range te.Elems {
			elems[i] = resolveTypeExpr(e)
		}
		return typesys.MakeTuple(elems...)
	default:
		return typesys.AnyType()
	}
}

func typeExprCode(te *ast.TypeExpr) string {
	switch te.Base {
	case "list":
		return "list<" + typeExprCode(te.Elems[0]) + ">"
	case "array":
		return fmt.Sprintf("array<%s, %d>", typeExprCode(te.Elems[0]), te.Size)
	case "tuple":
		parts := make([]string, len(te.Elems))
		for i, e := range te.Elems {
			parts[i] = typeExprCode(e)
		}
		return "tuple<" + strings.Join(parts, ", ") + ">"
	default:
		return te.Base
	}
}

// --- Top-level constructs ---

func (a *Analyzer) visitFuncDefn(fd *ast.FuncDefn) {
	a.FuncNames = append(a.FuncNames, fd.Name)

	paramTypes := make([]typesys.Type, len(fd.Params))
	for i, pb := range fd.Params {
		paramTypes[i] = resolveTypeExpr(pb.Type)
	}
	retType := typesys.MakePrimitive(typesys.Void)
	if fd.RetType != nil {
		retType = resolveTypeExpr(fd.RetType)
	}
	if err := a.funcs.DeclareFunction(fd.Name, paramTypes, retType); err != nil {
		a.stage(msgFuncAlreadyDefined)
	}

	paramParts := make([]string, len(fd.Params))
	for i, pb := range fd.Params {
		paramParts[i] = fmt.Sprintf("%s: %s", pb.Name, typeExprCode(pb.Type))
	}
	retCode := ""
	if fd.RetType != nil {
		retCode = " -> " + typeExprCode(fd.RetType)
	}
	a.emit(fmt.Sprintf("fn %s(%s)%s {", fd.Name, strings.Join(paramParts, ", "), retCode))

	a.p.Push()
	a.vars.EnterScope()
	prevInFunc, prevRet := a.inFunc, a.retType
	a.inFunc, a.retType = true, retType
	for i, pb := range fd.Params {
		if err := a.vars.Declare(pb.Name, paramTypes[i]); err != nil {
			a.stage(msgVarAlreadyDefined)
		}
	}
	a.visitBlock(fd.Body)
	a.inFunc, a.retType = prevInFunc, prevRet
	a.vars.LeaveScope()
	a.p.Pop()

	a.emit("}")
	a.p.Blank()
}

func (a *Analyzer) visitVarDefn(vd *ast.VarDefn) {
	declType := resolveTypeExpr(vd.Type)
	initType, initCode := a.visitExpr(vd.Init)
	if !typesys.Equals(declType, initType) {
		a.stage(msgMismatchedTypes)
	}
	if err := a.vars.Declare(vd.Name, declType); err != nil {
		a.stage(msgVarAlreadyDefined)
	}
	a.emit(fmt.Sprintf("let %s: %s = %s;", vd.Name, typeExprCode(vd.Type), initCode))
}

// --- Instructions ---

func (a *Analyzer) visitBlock(instrs []ast.Instruction) {
	for _, instr := range instrs {
		a.visitInstruction(instr)
	}
}

func (a *Analyzer) visitInstruction(instr ast.Instruction) {
	switch n := instr.(type) {
	case *ast.VarDefn:
		a.visitVarDefn(n)
	case *ast.Return:
		a.visitReturn(n)
	case *ast.Write:
		a.visitWrite(n)
	case *ast.ExprStmt:
		a.visitExprStmt(n)
	case *ast.Assign:
		a.visitAssign(n)
	case *ast.If:
		a.visitIf(n)
	case *ast.Unless:
		a.visitUnless(n)
	case *ast.Case:
		a.visitCase(n)
	case *ast.While:
		a.visitWhile(n)
	case *ast.DoWhile:
		a.visitDoWhile(n)
	case *ast.For:
		a.visitFor(n)
	}
}

func (a *Analyzer) visitReturn(r *ast.Return) {
	if r.Value == nil {
		if a.inFunc && !typesys.Equals(a.retType, typesys.MakePrimitive(typesys.Void)) {
			a.stage(msgMismatchedReturn)
		}
		a.emit("return;")
		return
	}
	valType, code := a.visitExpr(r.Value)
	if a.inFunc && !typesys.Equals(valType, a.retType) {
		a.stage(msgMismatchedReturn)
	}
	a.emit(fmt.Sprintf("return %s;", code))
}

func (a *Analyzer) visitWrite(w *ast.Write) {
	codes := make([]string, len(w.Args))
	for i, arg := range w.Args {
		_, codes[i] = a.visitExpr(arg)
	}
	a.emit(fmt.Sprintf("write(%s);", strings.Join(codes, ", ")))
}

func (a *Analyzer) visitExprStmt(e *ast.ExprStmt) {
	_, code := a.visitExpr(e.Call)
	a.emit(code + ";")
}

func (a *Analyzer) visitAssign(asn *ast.Assign) {
	typ, err := a.vars.Lookup(asn.Name)
	if err != nil {
		a.stage(msgVarNotInScope)
	}

	if asn.Index == nil {
		valType, valCode := a.visitExpr(asn.Value)
		if err == nil && !typesys.Equals(typ, valType) {
			a.stage(msgMismatchedAssign)
		}
		a.emit(fmt.Sprintf("%s = %s;", asn.Name, valCode))
		return
	}

	elemType := typesys.AnyType()
	if err == nil {
		if typ.Base != typesys.Array {
			a.stage(msgIndexLhsNotArray)
		} else {
			elemType = *typ.Elem
		}
	}
	idxType, idxCode := a.visitExpr(asn.Index)
	if !typesys.Equals(idxType, typesys.MakePrimitive(typesys.Int)) {
		a.stage(msgIndexRhsNotInt)
	}
	valType, valCode := a.visitExpr(asn.Value)
	if !typesys.Equals(valType, elemType) {
		a.stage(msgMismatchedAssign)
	}
	a.emit(fmt.Sprintf("%s[%s] = %s;", asn.Name, idxCode, valCode))
}

func (a *Analyzer) visitCond(cond ast.Expr) string {
	condType, code := a.visitExpr(cond)
	if !typesys.Equals(condType, typesys.MakePrimitive(typesys.Bool)) {
		a.stage(msgCondNotBool)
	}
	return code
}

func (a *Analyzer) visitScopedBody(body []ast.Instruction) {
	a.p.Push()
	a.vars.EnterScope()
	a.visitBlock(body)
	a.vars.LeaveScope()
	a.p.Pop()
}

func (a *Analyzer) visitIf(n *ast.If) {
	code := a.visitCond(n.Cond)
	a.emit(fmt.Sprintf("if (%s) {", code))
	a.visitScopedBody(n.Body)
	a.emit("}")

	for _, elif := range n.Elifs {
		ec := a.visitCond(elif.Cond)
		a.emit(fmt.Sprintf("elif (%s) {", ec))
		a.visitScopedBody(elif.Body)
		a.emit("}")
	}

	if n.HasElse {
		a.emit("else {")
		a.visitScopedBody(n.Else)
		a.emit("}")
	}
}

func (a *Analyzer) visitUnless(n *ast.Unless) {
	code := a.visitCond(n.Cond)
	a.emit(fmt.Sprintf("unless (%s) {", code))
	a.visitScopedBody(n.Body)
	a.emit("}")
}

func (a *Analyzer) visitCase(n *ast.Case) {
	scrutType, code := a.visitExpr(n.Scrutinee)
	if !typesys.Equals(scrutType, typesys.MakePrimitive(typesys.Int)) &&
		!typesys.Equals(scrutType, typesys.MakePrimitive(typesys.String)) {
		a.stage(msgCaseNotIntOrString)
	}
	a.emit(fmt.Sprintf("case (%s) {", code))
	a.p.Push()
	for _, arm := range n.Ofs {
		_, litCode := a.visitExpr(arm.Value)
		a.emit(fmt.Sprintf("of (%s) {", litCode))
		a.visitScopedBody(arm.Body)
		a.emit("}")
	}
	a.emit("default {")
	a.visitScopedBody(n.Default)
	a.emit("}")
	a.p.Pop()
	a.emit("}")
}

func (a *Analyzer) visitWhile(n *ast.While) {
	code := a.visitCond(n.Cond)
	a.emit(fmt.Sprintf("while (%s) {", code))
	a.visitScopedBody(n.Body)
	a.emit("}")
}

func (a *Analyzer) visitDoWhile(n *ast.DoWhile) {
	a.emit("do {")
	a.visitScopedBody(n.Body)
	code := a.visitCond(n.Cond)
	a.emit(fmt.Sprintf("} while (%s);", code))
}

func (a *Analyzer) visitFor(n *ast.For) {
	iterType, iterCode := a.visitExpr(n.Iterable)
	elemType := typesys.AnyType()
	if iterType.Base == typesys.List || iterType.Base == typesys.Array {
		elemType = *iterType.Elem
	} else {
		a.stage(msgForNotIterable)
	}

	// The for-loop's own body indent is pushed before the header line is
	// printed, matching the source's header/body indentation quirk: the
	// header aligns with the enclosing block, the body one level deeper.
	a.p.Push()
	a.emitDedented(fmt.Sprintf("for(%s in %s) {", n.Var, iterCode))
	a.vars.EnterScope()
	if err := a.vars.Declare(n.Var, elemType); err != nil {
		a.stage(msgVarAlreadyDefined)
	}
	a.visitBlock(n.Body)
	a.vars.LeaveScope()
	a.p.Pop()
	a.emit("}")
}

// --- Expressions ---

func (a *Analyzer) visitExpr(e ast.Expr) (typesys.Type, string) {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		return a.visitBinary(n)
	case *ast.UnaryNot:
		operandType, code := a.visitExpr(n.Operand)
		if !typesys.Equals(operandType, typesys.MakePrimitive(typesys.Bool)) {
			a.stage(msgOperandsMustBe("!", "bool"))
		}
		return typesys.MakePrimitive(typesys.Bool), "!" + code
	case *ast.ParenExpr:
		t, code := a.visitExpr(n.Inner)
		return t, "(" + code + ")"
	case *ast.VarDeref:
		return a.visitVarDeref(n)
	case *ast.CallExpr:
		return a.visitCall(n)
	case *ast.ReadExpr:
		return typesys.AnyType(), "read()"
	case *ast.HeadExpr:
		return a.visitHeadTail(n.List, false)
	case *ast.TailExpr:
		return a.visitHeadTail(n.List, true)
	case *ast.IntLit:
		return typesys.MakePrimitive(typesys.Int), n.Text
	case *ast.FloatLit:
		return typesys.MakePrimitive(typesys.Float), n.Text
	case *ast.BoolLit:
		if n.Value {
			return typesys.MakePrimitive(typesys.Bool), "true"
		}
		return typesys.MakePrimitive(typesys.Bool), "false"
	case *ast.StringLit:
		return typesys.MakePrimitive(typesys.String), n.Raw
	case *ast.ListLit:
		return a.visitListLit(n)
	case *ast.ArrayLit:
		return a.visitArrayLit(n)
	case *ast.TupleLit:
		return a.visitTupleLit(n)
	default:
		return typesys.AnyType(), ""
	}
}

func (a *Analyzer) visitBinary(n *ast.BinaryExpr) (typesys.Type, string) {
	lhsType, lhsCode := a.visitExpr(n.Lhs)
	rhsType, rhsCode := a.visitExpr(n.Rhs)
	code := fmt.Sprintf("%s %s %s", lhsCode, n.Op, rhsCode)

	switch n.Op {
	case "+":
		return a.arith(n.Op, "int, float or string", isIntFloatString, lhsType, rhsType), code
	case "-", "*", "/", "^":
		return a.arith(n.Op, "int or float", isIntOrFloat, lhsType, rhsType), code
	case "%":
		return a.arith(n.Op, "int", isInt, lhsType, rhsType), code
	case "==", "!=":
		if !typesys.Equals(lhsType, rhsType) {
			a.stage(msgOperandsMustBe(n.Op, "the same"))
		}
		return typesys.MakePrimitive(typesys.Bool), code
	case "&&", "||":
		if !typesys.Equals(lhsType, typesys.MakePrimitive(typesys.Bool)) || !typesys.Equals(rhsType, typesys.MakePrimitive(typesys.Bool)) {
			a.stage(msgOperandsMustBe(n.Op, "bool"))
		}
		return typesys.MakePrimitive(typesys.Bool), code
	case "^:", "$:":
		if rhsType.Base != typesys.List {
			a.stage(msgConsRhsNotList)
			return typesys.AnyType(), code
		}
		if !typesys.Equals(lhsType, *rhsType.Elem) {
			a.stage(msgConsLhsMismatch)
		}
		return rhsType, code
	default:
		return typesys.AnyType(), code
	}
}

func isIntFloatString(t typesys.Type) bool {
	return t.Base == typesys.Int || t.Base == typesys.Float || t.Base == typesys.String
}

func isIntOrFloat(t typesys.Type) bool {
	return t.Base == typesys.Int || t.Base == typesys.Float
}

func isInt(t typesys.Type) bool {
	return t.Base == typesys.Int
}

func (a *Analyzer) arith(op, desc string, allowed func(typesys.Type) bool, lhs, rhs typesys.Type) typesys.Type {
	if !typesys.Equals(lhs, rhs) {
		a.stage(msgOperandsMustBe(op, "the same"))
		return typesys.AnyType()
	}
	if !allowed(lhs) {
		a.stage(msgOperandsMustBe(op, desc))
		return typesys.AnyType()
	}
	return lhs
}

func (a *Analyzer) visitVarDeref(n *ast.VarDeref) (typesys.Type, string) {
	typ, err := a.vars.Lookup(n.Name)
	if err != nil {
		a.stage(msgVarNotInScope)
		if n.Index != nil {
			_, idxCode := a.visitExpr(n.Index)
			return typesys.AnyType(), fmt.Sprintf("%s[%s]", n.Name, idxCode)
		}
		return typesys.AnyType(), n.Name
	}
	if n.Index == nil {
		return typ, n.Name
	}
	elemType := typesys.AnyType()
	if typ.Base != typesys.Array {
		a.stage(msgIndexLhsNotArray)
	} else {
		elemType = *typ.Elem
	}
	idxType, idxCode := a.visitExpr(n.Index)
	if !typesys.Equals(idxType, typesys.MakePrimitive(typesys.Int)) {
		a.stage(msgIndexRhsNotInt)
	}
	return elemType, fmt.Sprintf("%s[%s]", n.Name, idxCode)
}

func (a *Analyzer) visitCall(n *ast.CallExpr) (typesys.Type, string) {
	argTypes := make([]typesys.Type, len(n.Args))
	argCodes := make([]string, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i], argCodes[i] = a.visitExpr(arg)
	}
	code := fmt.Sprintf("%s(%s)", n.Name, strings.Join(argCodes, ", "))

	sig, err := a.funcs.LookupFunction(n.Name)
	if err != nil {
		a.stage(msgFuncNotInScope)
		return typesys.AnyType(), code
	}
	if len(argTypes) != len(sig.Params) {
		a.stage(msgArityMismatch)
		return typesys.AnyType(), code
	}
	for i := range argTypes {
		if !typesys.Equals(argTypes[i], sig.Params[i]) {
			a.stage(msgMismatchedArg)
			return typesys.AnyType(), code
		}
	}
	return sig.Ret, code
}

func (a *Analyzer) visitHeadTail(list ast.Expr, tail bool) (typesys.Type, string) {
	listType, code := a.visitExpr(list)
	name := "head"
	if tail {
		name = "tail"
	}
	fullCode := fmt.Sprintf("%s(%s)", name, code)
	if listType.Base != typesys.List {
		a.stage(msgHeadTailNotList)
		return typesys.AnyType(), fullCode
	}
	if tail {
		return listType, fullCode
	}
	return *listType.Elem, fullCode
}

func (a *Analyzer) visitListLit(n *ast.ListLit) (typesys.Type, string) {
	if len(n.Elems) == 0 {
		return typesys.MakeList(typesys.AnyType()), "[]"
	}
	elemType, firstCode := a.visitExpr(n.Elems[0])
	codes := []string{firstCode}
	for _, e := range n.Elems[1:] {
		t, c := a.visitExpr(e)
		if !typesys.Equals(t, elemType) {
			a.stage(msgListNotHomogeneous)
		}
		codes = append(codes, c)
	}
	return typesys.MakeList(elemType), "[" + strings.Join(codes, ", ") + "]"
}

func (a *Analyzer) visitArrayLit(n *ast.ArrayLit) (typesys.Type, string) {
	elemType, firstCode := a.visitExpr(n.Elems[0])
	codes := []string{firstCode}
	for _, e := range n.Elems[1:] {
		t, c := a.visitExpr(e)
		if !typesys.Equals(t, elemType) {
			a.stage(msgArrayNotHomogeneous)
		}
		codes = append(codes, c)
	}
	return typesys.MakeArray(elemType, len(n.Elems)), "{" + strings.Join(codes, ", ") + "}"
}

func (a *Analyzer) visitTupleLit(n *ast.TupleLit) (typesys.Type, string) {
	types := make([]typesys.Type, len(n.Elems))
	codes := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		types[i], codes[i] = a.visitExpr(e)
	}
	return typesys.MakeTuple(types...), "|" + strings.Join(codes, ", ") + "|"
}
