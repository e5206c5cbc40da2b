// Package ast defines the abstract syntax tree the parser builds and the
// analyzer, printer and graph builders walk. Every node family here mirrors
// one rule of the IPL grammar: a Unit is a sequence of Constructs, a
// FuncDefn's body is a sequence of Instructions, and so on down to
// Expressions and Literals.
package ast

// Unit is the root of a parsed source file: a sequence of top-level
// constructs in source order.
type Unit struct {
	Constructs []Construct
}

// Construct is either a FuncDefn or a top-level VarDefn.
type Construct interface {
	construct()
}

// TypeExpr is the syntactic form of a type, as written in source, before
// it is resolved to a typesys.Type by the analyzer.
type TypeExpr struct {
	Base string // "int", "bool", "float", "string", "tuple", "array", "list"
	// Elems holds the tuple's element types (len >= 2), the list's single
	// element type (len == 1), or the array's single element type (len == 1).
	Elems []*TypeExpr
	// Size is only meaningful when Base == "array".
	Size int
}

// ParamBinding is one "name: type" pair in a function's parameter list.
type ParamBinding struct {
	Name string
	Type *TypeExpr
}

// FuncDefn is a top-level function definition.
type FuncDefn struct {
	Name    string
	Params  []ParamBinding
	RetType *TypeExpr // nil when the function declares no return type
	Body    []Instruction
}

func (*FuncDefn) construct() {}

// VarDefn declares a new variable, initialized by an expression. It is both
// a top-level Construct and an Instruction, since "let" bindings occur in
// both places.
type VarDefn struct {
	Name string
	Type *TypeExpr
	Init Expr
}

func (*VarDefn) construct()   {}
func (*VarDefn) instruction() {}

// Instruction is one statement inside a function body or control-flow arm.
type Instruction interface {
	instruction()
}

// Return is "return expr;" or the bare "return;".
type Return struct {
	Value Expr // nil for a bare return
}

func (*Return) instruction() {}

// Write is "write(e1, e2, ...);"; the grammar requires at least one argument.
type Write struct {
	Args []Expr
}

func (*Write) instruction() {}

// ExprStmt is a standalone function-call statement, "f(args);".
type ExprStmt struct {
	Call *CallExpr
}

func (*ExprStmt) instruction() {}

// Assign is "x = e;" or the indexed form "x[i] = e;" (Index == nil for the
// plain form).
type Assign struct {
	Name  string
	Index Expr
	Value Expr
}

func (*Assign) instruction() {}

// If is "if (cond) { ... } elif (cond) { ... }* else? { ... }".
type If struct {
	Cond    Expr
	Body    []Instruction
	Elifs   []ElifArm
	Else    []Instruction
	HasElse bool
}

func (*If) instruction() {}

// ElifArm is one "elif (cond) { ... }" clause of an If.
type ElifArm struct {
	Cond Expr
	Body []Instruction
}

// Unless is "unless (cond) { ... }", the mirror image of a single-arm If.
type Unless struct {
	Cond Expr
	Body []Instruction
}

func (*Unless) instruction() {}

// Case is "case (e) { of (lit) { ... }* default { ... } }".
type Case struct {
	Scrutinee Expr
	Ofs       []OfArm
	Default   []Instruction
}

func (*Case) instruction() {}

// OfArm is one "of (lit) { ... }" clause of a Case. Value is an *IntLit or
// a *StringLit.
type OfArm struct {
	Value Expr
	Body  []Instruction
}

// While is "while (cond) { ... }".
type While struct {
	Cond Expr
	Body []Instruction
}

func (*While) instruction() {}

// DoWhile is "do { ... } while (cond);".
type DoWhile struct {
	Body []Instruction
	Cond Expr
}

func (*DoWhile) instruction() {}

// For is "for (x in e) { ... }".
type For struct {
	Var      string
	Iterable Expr
	Body     []Instruction
}

func (*For) instruction() {}

// Expr is any IPL expression node.
type Expr interface {
	expr()
}

// BinaryExpr covers every binary operator: arithmetic (+ - * / % ^),
// comparison (== !=), logical (&& ||), and the list operators (^: $:).
type BinaryExpr struct {
	Op  string
	Lhs Expr
	Rhs Expr
}

func (*BinaryExpr) expr() {}

// UnaryNot is "!e".
type UnaryNot struct {
	Operand Expr
}

func (*UnaryNot) expr() {}

// ParenExpr is "(e)".
type ParenExpr struct {
	Inner Expr
}

func (*ParenExpr) expr() {}

// VarDeref is a plain "x" dereference, or the indexed form "x[i]" when
// Index != nil.
type VarDeref struct {
	Name  string
	Index Expr
}

func (*VarDeref) expr() {}

// CallExpr is "f(e1, e2, ...)", used both as an expression and (wrapped in
// an ExprStmt) as a standalone statement.
type CallExpr struct {
	Name string
	Args []Expr
}

func (*CallExpr) expr() {}

// ReadExpr is "read()".
type ReadExpr struct{}

func (*ReadExpr) expr() {}

// HeadExpr is "head(e)".
type HeadExpr struct {
	List Expr
}

func (*HeadExpr) expr() {}

// TailExpr is "tail(e)".
type TailExpr struct {
	List Expr
}

func (*TailExpr) expr() {}

// IntLit is an integer literal; Text is the literal's exact source spelling
// (e.g. "-1"), since the grammar allows a leading '-' inside the token
// itself rather than treating it as a unary operator.
type IntLit struct {
	Text string
}

func (*IntLit) expr() {}

// FloatLit is a float literal, spelled exactly as in source.
type FloatLit struct {
	Text string
}

func (*FloatLit) expr() {}

// BoolLit is "true" or "false".
type BoolLit struct {
	Value bool
}

func (*BoolLit) expr() {}

// StringLit is a double-quoted string literal; Raw is the exact source
// spelling including the surrounding quotes and any escape sequences.
type StringLit struct {
	Raw string
}

func (*StringLit) expr() {}

// ListLit is "[e1, e2, ...]"; an empty list is [].
type ListLit struct {
	Elems []Expr
}

func (*ListLit) expr() {}

// ArrayLit is "{e1, e2, ...}". The grammar this module implements rejects
// the empty form "{}" (see SPEC_FULL.md §9).
type ArrayLit struct {
	Elems []Expr
}

func (*ArrayLit) expr() {}

// TupleLit is "|e1, e2, ...|" with at least two elements.
type TupleLit struct {
	Elems []Expr
}

func (*TupleLit) expr() {}
