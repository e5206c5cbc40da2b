// Package sdg builds the per-function structural dependency graph (spec
// §4.6): the same nodes and edges as the CFG, but edges carry no color and
// the nodes of statements following an unconditional return are filled
// light gray and recorded in Result.Dead (the dead-code cluster). The DOT
// output does not group those nodes into a separate labeled subgraph; they
// stay connected to the live nodes by ordinary edges.
package sdg

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/iplang/iplanalyze/ast"
	"github.com/iplang/iplanalyze/graph"
)

const deadFill = "lightgray"

// Result is one function's SDG, plus the set of node IDs the builder
// placed in the "Dead code" cluster (property test 6: dead-code locality).
type Result struct {
	G    *graph.Builder
	Dead *bitset.BitSet
}

// Build constructs the SDG for one function.
func Build(fd *ast.FuncDefn) *Result {
	gb := graph.NewBuilder()
	sig := gb.NewNode(signatureLabel(fd), graph.ShapeOval, "green")
	endFn := gb.NewNode("end fn", graph.ShapeDiamond, "gray")

	b := &builder{gb: gb, dead: bitset.New(0)}
	tail := b.block(sig, fd.Body, false)
	gb.AddEdge(tail, endFn, graph.ColorNone, "", "")

	complexity := gb.Complexity()
	gb.NewNode(fmt.Sprintf("McCabe's complexity: %d", complexity), graph.ShapePlaintext, "")
	return &Result{G: gb, Dead: b.dead}
}

func signatureLabel(fd *ast.FuncDefn) string {
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.Name + ": " + ast.RenderType(p.Type)
	}
	ret := ""
	if fd.RetType != nil {
		ret = " -> " + ast.RenderType(fd.RetType)
	}
	return fmt.Sprintf("fn %s(%s)%s", fd.Name, strings.Join(params, ", "), ret)
}

type builder struct {
	gb   *graph.Builder
	dead *bitset.BitSet
}

// close connects a branch's last body node to merge, or entry itself to
// merge when the body was empty (structural-only edge, no color).
func (b *builder) close(entry, tail, merge *graph.Node) {
	if tail == entry {
		b.gb.AddEdge(entry, merge, graph.ColorNone, "", "")
		return
	}
	b.gb.AddEdge(tail, merge, graph.ColorNone, "", "")
}

func (b *builder) markDead(n *graph.Node) {
	n.FillColor = deadFill
	b.dead.Set(uint(n.ID()))
}

// block walks one lexical block from entry. Once a `return` is visited,
// every later instruction in this SAME block (and any node/edge it adds)
// is drawn into the dead-code cluster. dead seeds that state on entry, so a
// block reached only through an already-dead construct (e.g. the body of an
// if nested after a return) is dead from its first instruction on.
func (b *builder) block(entry *graph.Node, instrs []ast.Instruction, dead bool) *graph.Node {
	cur := entry
	afterReturn := dead
	for _, instr := range instrs {
		if _, ok := instr.(*ast.ExprStmt); ok {
			continue
		}

		switch n := instr.(type) {
		case *ast.Return:
			node := b.gb.NewNode(returnLabel(n), graph.ShapeBox, "pink")
			b.gb.AddEdge(cur, node, graph.ColorNone, "", "")
			if afterReturn {
				b.markDead(node)
			}
			cur = node
			afterReturn = true
		case *ast.VarDefn:
			node := b.gb.NewNode(varDefnLabel(n), graph.ShapeBox, "")
			b.gb.AddEdge(cur, node, graph.ColorNone, "", "")
			if afterReturn {
				b.markDead(node)
			}
			cur = node
		case *ast.Write:
			node := b.gb.NewNode(writeLabel(n), graph.ShapeBox, "")
			b.gb.AddEdge(cur, node, graph.ColorNone, "", "")
			if afterReturn {
				b.markDead(node)
			}
			cur = node
		case *ast.Assign:
			node := b.gb.NewNode(assignLabel(n), graph.ShapeBox, "")
			b.gb.AddEdge(cur, node, graph.ColorNone, "", "")
			if afterReturn {
				b.markDead(node)
			}
			cur = node
		case *ast.If:
			cur = b.buildIf(cur, n, afterReturn)
		case *ast.Unless:
			cur = b.buildUnless(cur, n, afterReturn)
		case *ast.Case:
			cur = b.buildCase(cur, n, afterReturn)
		case *ast.While:
			cur = b.buildWhile(cur, n, afterReturn)
		case *ast.DoWhile:
			cur = b.buildDoWhile(cur, n, afterReturn)
		case *ast.For:
			cur = b.buildFor(cur, n, afterReturn)
		}
	}
	return cur
}

// markIfDead marks n dead when the enclosing straight-line sequence had
// already seen a return before reaching this nested construct.
func (b *builder) markIfDead(n *graph.Node, dead bool) {
	if dead {
		b.markDead(n)
	}
}

func (b *builder) buildIf(cur *graph.Node, n *ast.If, dead bool) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("if (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.markIfDead(dec, dead)
	b.gb.AddEdge(cur, dec, graph.ColorNone, "", "")
	endIf := b.gb.NewNode("end if", graph.ShapeDiamond, "gray")
	b.markIfDead(endIf, dead)

	trueTail := b.block(dec, n.Body, dead)
	b.close(dec, trueTail, endIf)

	falseFrom := dec
	for _, elif := range n.Elifs {
		elifDec := b.gb.NewNode(fmt.Sprintf("elif (%s)", ast.RenderExpr(elif.Cond)), graph.ShapeDiamond, "")
		b.markIfDead(elifDec, dead)
		b.gb.AddEdge(falseFrom, elifDec, graph.ColorNone, "", "")
		elifTail := b.block(elifDec, elif.Body, dead)
		b.close(elifDec, elifTail, endIf)
		falseFrom = elifDec
	}

	if n.HasElse {
		elseTail := b.block(falseFrom, n.Else, dead)
		b.close(falseFrom, elseTail, endIf)
	} else {
		b.gb.AddEdge(falseFrom, endIf, graph.ColorNone, "", "")
	}
	return endIf
}

func (b *builder) buildUnless(cur *graph.Node, n *ast.Unless, dead bool) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("unless (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.markIfDead(dec, dead)
	b.gb.AddEdge(cur, dec, graph.ColorNone, "", "")
	endUnless := b.gb.NewNode("end unless", graph.ShapeDiamond, "gray")
	b.markIfDead(endUnless, dead)

	bodyTail := b.block(dec, n.Body, dead)
	b.close(dec, bodyTail, endUnless)
	b.gb.AddEdge(dec, endUnless, graph.ColorNone, "", "")
	return endUnless
}

func (b *builder) buildCase(cur *graph.Node, n *ast.Case, dead bool) *graph.Node {
	endCase := b.gb.NewNode("end case", graph.ShapeDiamond, "gray")
	b.markIfDead(endCase, dead)
	scrutinee := ast.RenderExpr(n.Scrutinee)

	falseFrom := cur
	for _, arm := range n.Ofs {
		dec := b.gb.NewNode(fmt.Sprintf("%s == %s", scrutinee, ast.RenderExpr(arm.Value)), graph.ShapeDiamond, "")
		b.markIfDead(dec, dead)
		b.gb.AddEdge(falseFrom, dec, graph.ColorNone, "", "")
		bodyTail := b.block(dec, arm.Body, dead)
		b.close(dec, bodyTail, endCase)
		falseFrom = dec
	}

	defDec := b.gb.NewNode("default", graph.ShapeDiamond, "")
	b.markIfDead(defDec, dead)
	b.gb.AddEdge(falseFrom, defDec, graph.ColorNone, "", "")
	defTail := b.block(defDec, n.Default, dead)
	b.close(defDec, defTail, endCase)
	return endCase
}

func (b *builder) buildWhile(cur *graph.Node, n *ast.While, dead bool) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("while (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.markIfDead(dec, dead)
	b.gb.AddEdge(cur, dec, graph.ColorNone, "", "")
	endWhile := b.gb.NewNode("end while", graph.ShapeDiamond, "gray")
	b.markIfDead(endWhile, dead)

	bodyTail := b.block(dec, n.Body, dead)
	b.close(dec, bodyTail, dec)
	b.gb.AddEdge(dec, endWhile, graph.ColorNone, "", "")
	return endWhile
}

func (b *builder) buildDoWhile(cur *graph.Node, n *ast.DoWhile, dead bool) *graph.Node {
	begin := b.gb.NewNode("begin-do-while", graph.ShapeDiamond, "gray")
	b.markIfDead(begin, dead)
	b.gb.AddEdge(cur, begin, graph.ColorNone, "", "")

	bodyTail := b.block(begin, n.Body, dead)
	dec := b.gb.NewNode(fmt.Sprintf("while (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.markIfDead(dec, dead)
	b.gb.AddEdge(bodyTail, dec, graph.ColorNone, "", "")

	endDoWhile := b.gb.NewNode("end do-while", graph.ShapeDiamond, "gray")
	b.markIfDead(endDoWhile, dead)
	b.gb.AddEdge(dec, begin, graph.ColorNone, "", "")
	b.gb.AddEdge(dec, endDoWhile, graph.ColorNone, "", "")
	return endDoWhile
}

func (b *builder) buildFor(cur *graph.Node, n *ast.For, dead bool) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("for(%s in %s)", n.Var, ast.RenderExpr(n.Iterable)), graph.ShapeDiamond, "")
	b.markIfDead(dec, dead)
	b.gb.AddEdge(cur, dec, graph.ColorNone, "", "")
	endFor := b.gb.NewNode("end for", graph.ShapeDiamond, "gray")
	b.markIfDead(endFor, dead)

	bodyTail := b.block(dec, n.Body, dead)
	b.close(dec, bodyTail, dec)
	b.gb.AddEdge(dec, endFor, graph.ColorNone, "", "")
	return endFor
}

func returnLabel(n *ast.Return) string {
	if n.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", ast.RenderExpr(n.Value))
}

func varDefnLabel(n *ast.VarDefn) string {
	return fmt.Sprintf("let %s: %s = %s;", n.Name, ast.RenderType(n.Type), ast.RenderExpr(n.Init))
}

func writeLabel(n *ast.Write) string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = ast.RenderExpr(a)
	}
	return fmt.Sprintf("write(%s);", strings.Join(parts, ", "))
}

func assignLabel(n *ast.Assign) string {
	if n.Index == nil {
		return fmt.Sprintf("%s = %s;", n.Name, ast.RenderExpr(n.Value))
	}
	return fmt.Sprintf("%s[%s] = %s;", n.Name, ast.RenderExpr(n.Index), ast.RenderExpr(n.Value))
}
