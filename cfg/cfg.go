// Package cfg builds the per-function control-flow graph (spec §4.5): a
// directed graph of decision diamonds, statement boxes and merge nodes,
// with a McCabe's-complexity annotation computed after construction.
package cfg

import (
	"fmt"
	"strings"

	"github.com/iplang/iplanalyze/ast"
	"github.com/iplang/iplanalyze/graph"
)

// Build constructs the CFG for one function and returns the finished
// graph builder together with its McCabe's complexity.
func Build(fd *ast.FuncDefn) (*graph.Builder, int) {
	gb := graph.NewBuilder()
	sig := gb.NewNode(signatureLabel(fd), graph.ShapeOval, "green")
	endFn := gb.NewNode("end fn", graph.ShapeDiamond, "gray")

	b := &builder{gb: gb}
	tail := b.blockWithEntryColor(sig, fd.Body, graph.ColorNone)
	gb.AddEdge(tail, endFn, graph.ColorNone, "", "")

	complexity := gb.Complexity()
	gb.NewNode(fmt.Sprintf("McCabe's complexity: %d", complexity), graph.ShapePlaintext, "")
	return gb, complexity
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
	gb *graph.Builder
}

// closeBranch connects a branch's last body node to merge, or — if the
// branch body was empty, so blockWithEntryColor never advanced past entry —
// connects entry to merge directly using colorIfEmpty. This covers both
// merge-node convergence (if/unless/case) and back-edges (while/for, where
// merge is the decision node itself); do-while wires its edges directly.
func (b *builder) closeBranch(entry, tail, merge *graph.Node, colorIfEmpty string) {
	if tail == entry {
		b.gb.AddEdge(entry, merge, colorIfEmpty, "", "")
		return
	}
	b.gb.AddEdge(tail, merge, graph.ColorNone, "", "")
}

// blockWithEntryColor walks one lexical block of instructions, starting
// from entry. The edge connecting entry to the block's first real node
// uses entryColor; every instruction after a `return` within
// this same block connects via a dashed gray "dead code!" edge instead,
// since `return` taints only its lexical siblings. Standalone function
// calls add no CFG node (spec invariant). Returns the block's exit node,
// or entry unchanged if the block produced no nodes at all.
func (b *builder) blockWithEntryColor(entry *graph.Node, instrs []ast.Instruction, entryColor string) *graph.Node {
	cur := entry
	afterReturn := false
	first := true
	for _, instr := range instrs {
		if _, ok := instr.(*ast.ExprStmt); ok {
			continue
		}
		color, style, label := graph.ColorNone, "", ""
		if first {
			color = entryColor
		}
		if afterReturn {
			color, style, label = graph.ColorGray, "dashed", "dead code!"
		}

		switch n := instr.(type) {
		case *ast.Return:
			node := b.gb.NewNode(returnLabel(n), graph.ShapeBox, "pink")
			b.gb.AddEdge(cur, node, color, style, label)
			cur = node
			afterReturn = true
		case *ast.VarDefn:
			node := b.gb.NewNode(varDefnLabel(n), graph.ShapeBox, "")
			b.gb.AddEdge(cur, node, color, style, label)
			cur = node
		case *ast.Write:
			node := b.gb.NewNode(writeLabel(n), graph.ShapeBox, "")
			b.gb.AddEdge(cur, node, color, style, label)
			cur = node
		case *ast.Assign:
			node := b.gb.NewNode(assignLabel(n), graph.ShapeBox, "")
			b.gb.AddEdge(cur, node, color, style, label)
			cur = node
		case *ast.If:
			cur = b.buildIf(cur, n, color, style, label)
		case *ast.Unless:
			cur = b.buildUnless(cur, n, color, style, label)
		case *ast.Case:
			cur = b.buildCase(cur, n, color, style, label)
		case *ast.While:
			cur = b.buildWhile(cur, n, color, style, label)
		case *ast.DoWhile:
			cur = b.buildDoWhile(cur, n, color, style, label)
		case *ast.For:
			cur = b.buildFor(cur, n, color, style, label)
		}
		first = false
	}
	return cur
}

func (b *builder) buildIf(cur *graph.Node, n *ast.If, entryColor, entryStyle, entryLabel string) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("if (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.gb.AddEdge(cur, dec, entryColor, entryStyle, entryLabel)
	endIf := b.gb.NewNode("end if", graph.ShapeDiamond, "gray")

	trueTail := b.blockWithEntryColor(dec, n.Body, graph.ColorGreen)
	b.closeBranch(dec, trueTail, endIf, graph.ColorGreen)

	falseFrom := dec
	falseColor := graph.ColorRed
	for _, elif := range n.Elifs {
		elifDec := b.gb.NewNode(fmt.Sprintf("elif (%s)", ast.RenderExpr(elif.Cond)), graph.ShapeDiamond, "")
		b.gb.AddEdge(falseFrom, elifDec, falseColor, "", "")
		elifTail := b.blockWithEntryColor(elifDec, elif.Body, graph.ColorGreen)
		b.closeBranch(elifDec, elifTail, endIf, graph.ColorGreen)
		falseFrom = elifDec
		falseColor = graph.ColorRed
	}

	if n.HasElse {
		elseTail := b.blockWithEntryColor(falseFrom, n.Else, falseColor)
		b.closeBranch(falseFrom, elseTail, endIf, falseColor)
	} else {
		b.gb.AddEdge(falseFrom, endIf, falseColor, "", "")
	}
	return endIf
}

func (b *builder) buildUnless(cur *graph.Node, n *ast.Unless, entryColor, entryStyle, entryLabel string) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("unless (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.gb.AddEdge(cur, dec, entryColor, entryStyle, entryLabel)
	endUnless := b.gb.NewNode("end unless", graph.ShapeDiamond, "gray")

	bodyTail := b.blockWithEntryColor(dec, n.Body, graph.ColorRed)
	b.closeBranch(dec, bodyTail, endUnless, graph.ColorRed)
	b.gb.AddEdge(dec, endUnless, graph.ColorGreen, "", "")
	return endUnless
}

func (b *builder) buildCase(cur *graph.Node, n *ast.Case, entryColor, entryStyle, entryLabel string) *graph.Node {
	endCase := b.gb.NewNode("end case", graph.ShapeDiamond, "gray")

	scrutinee := ast.RenderExpr(n.Scrutinee)
	falseFrom := cur
	color, style, label := entryColor, entryStyle, entryLabel
	for _, arm := range n.Ofs {
		dec := b.gb.NewNode(fmt.Sprintf("%s == %s", scrutinee, ast.RenderExpr(arm.Value)), graph.ShapeDiamond, "")
		b.gb.AddEdge(falseFrom, dec, color, style, label)
		bodyTail := b.blockWithEntryColor(dec, arm.Body, graph.ColorGreen)
		b.closeBranch(dec, bodyTail, endCase, graph.ColorGreen)
		falseFrom = dec
		color, style, label = graph.ColorRed, "", ""
	}

	defDec := b.gb.NewNode("default", graph.ShapeDiamond, "")
	b.gb.AddEdge(falseFrom, defDec, color, style, label)
	defTail := b.blockWithEntryColor(defDec, n.Default, graph.ColorGreen)
	b.closeBranch(defDec, defTail, endCase, graph.ColorGreen)
	return endCase
}

func (b *builder) buildWhile(cur *graph.Node, n *ast.While, entryColor, entryStyle, entryLabel string) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("while (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.gb.AddEdge(cur, dec, entryColor, entryStyle, entryLabel)
	endWhile := b.gb.NewNode("end while", graph.ShapeDiamond, "gray")

	bodyTail := b.blockWithEntryColor(dec, n.Body, graph.ColorGreen)
	b.closeBranch(dec, bodyTail, dec, graph.ColorGreen)
	b.gb.AddEdge(dec, endWhile, graph.ColorRed, "", "")
	return endWhile
}

func (b *builder) buildDoWhile(cur *graph.Node, n *ast.DoWhile, entryColor, entryStyle, entryLabel string) *graph.Node {
	begin := b.gb.NewNode("begin-do-while", graph.ShapeDiamond, "gray")
	b.gb.AddEdge(cur, begin, entryColor, entryStyle, entryLabel)

	bodyTail := b.blockWithEntryColor(begin, n.Body, graph.ColorNone)
	dec := b.gb.NewNode(fmt.Sprintf("while (%s)", ast.RenderExpr(n.Cond)), graph.ShapeDiamond, "")
	b.gb.AddEdge(bodyTail, dec, graph.ColorNone, "", "")

	endDoWhile := b.gb.NewNode("end do-while", graph.ShapeDiamond, "gray")
	b.gb.AddEdge(dec, begin, graph.ColorGreen, "", "")
	b.gb.AddEdge(dec, endDoWhile, graph.ColorRed, "", "")
	return endDoWhile
}

func (b *builder) buildFor(cur *graph.Node, n *ast.For, entryColor, entryStyle, entryLabel string) *graph.Node {
	dec := b.gb.NewNode(fmt.Sprintf("for(%s in %s)", n.Var, ast.RenderExpr(n.Iterable)), graph.ShapeDiamond, "")
	b.gb.AddEdge(cur, dec, entryColor, entryStyle, entryLabel)
	endFor := b.gb.NewNode("end for", graph.ShapeDiamond, "gray")

	bodyTail := b.blockWithEntryColor(dec, n.Body, graph.ColorGreen)
	b.closeBranch(dec, bodyTail, dec, graph.ColorGreen)
	b.gb.AddEdge(dec, endFor, graph.ColorRed, "", "")
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
