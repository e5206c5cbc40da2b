package sdg

import (
	"strings"
	"testing"

	"github.com/iplang/iplanalyze/ast"
	"github.com/iplang/iplanalyze/graph"
	"github.com/iplang/iplanalyze/parser"
)

func firstFunc(t *testing.T, src string) *ast.FuncDefn {
	t.Helper()
	u, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	for _, c := range u.Constructs {
		if fd, ok := c.(*ast.FuncDefn); ok {
			return fd
		}
	}
	t.Fatalf("no function in %q", src)
	return nil
}

func TestS4DeadCodeLocality(t *testing.T) {
	fd := firstFunc(t, "fn w(){ while(true){ return; write(1); } }")
	res := Build(fd)

	nodes := res.G.G.Nodes()
	var writeNode, returnNode *graph.Node
	for nodes.Next() {
		n := nodes.Node().(*graph.Node)
		switch {
		case strings.Contains(n.Label, "write(1)"):
			writeNode = n
		case strings.Contains(n.Label, "return;"):
			returnNode = n
		}
	}
	if writeNode == nil || returnNode == nil {
		t.Fatalf("expected both a return and a write(1) node")
	}
	if !res.Dead.Test(uint(writeNode.ID())) {
		t.Fatalf("write(1) following return must be in the dead-code cluster")
	}
	if res.Dead.Test(uint(returnNode.ID())) {
		t.Fatalf("the return statement itself must not be marked dead")
	}
	if writeNode.FillColor != deadFill {
		t.Fatalf("dead node fill color = %q, want %q", writeNode.FillColor, deadFill)
	}
}

func TestDeadCodeDoesNotCrossBlockBoundary(t *testing.T) {
	// A return inside one if-arm must not taint the sibling write() in the
	// enclosing scope (property 6: no statement in a different block is
	// marked dead).
	fd := firstFunc(t, "fn f(){ if (true) { return; } write(1); }")
	res := Build(fd)

	nodes := res.G.G.Nodes()
	var writeNode *graph.Node
	for nodes.Next() {
		n := nodes.Node().(*graph.Node)
		if strings.Contains(n.Label, "write(1)") {
			writeNode = n
		}
	}
	if writeNode == nil {
		t.Fatalf("expected a write(1) node")
	}
	if res.Dead.Test(uint(writeNode.ID())) {
		t.Fatalf("write(1) in the enclosing scope must not be marked dead")
	}
}

func TestLiveNodesReachableFromSignature(t *testing.T) {
	// spec §3.4: live nodes all trace back to the signature; dead-cluster
	// nodes are skipped by this check.
	fd := firstFunc(t, "fn w(){ while(true){ return; write(1); write(2); } }")
	res := Build(fd)

	var sig *graph.Node
	nodes := res.G.G.Nodes()
	for nodes.Next() {
		n := nodes.Node().(*graph.Node)
		if n.Shape == "oval" {
			sig = n
		}
	}
	if sig == nil {
		t.Fatalf("no signature node found")
	}

	reached := res.G.Reachable(sig)
	nodes = res.G.G.Nodes()
	for nodes.Next() {
		n := nodes.Node().(*graph.Node)
		if n.Shape == "plaintext" || res.Dead.Test(uint(n.ID())) {
			continue
		}
		if !reached.Test(uint(n.ID())) {
			t.Errorf("live node %q not reachable from signature", n.Label)
		}
	}
}

func TestDeadCodePropagatesIntoNestedConstruct(t *testing.T) {
	// A return taints every nested visit in the same block (spec §4.6/§9),
	// not just the construct's own entry diamond: the whole if/else subtree
	// below an unreachable while-body must land in the dead cluster.
	fd := firstFunc(t, "fn w(){ while(true){ return; if (true) { write(1); } else { write(2); } } }")
	res := Build(fd)

	nodes := res.G.G.Nodes()
	var write1, write2, endIf, elseStart *graph.Node
	for nodes.Next() {
		n := nodes.Node().(*graph.Node)
		switch {
		case strings.Contains(n.Label, "write(1)"):
			write1 = n
		case strings.Contains(n.Label, "write(2)"):
			write2 = n
			elseStart = n
		case n.Label == "end if":
			endIf = n
		}
	}
	if write1 == nil || write2 == nil || endIf == nil {
		t.Fatalf("expected write(1), write(2) and end if nodes")
	}
	for _, n := range []*graph.Node{write1, write2, endIf, elseStart} {
		if !res.Dead.Test(uint(n.ID())) {
			t.Errorf("node %q following an unreachable if must be in the dead-code cluster", n.Label)
		}
		if n.FillColor != deadFill {
			t.Errorf("node %q fill color = %q, want %q", n.Label, n.FillColor, deadFill)
		}
	}
}

func TestSDGEdgesCarryNoColor(t *testing.T) {
	fd := firstFunc(t, "fn f(){ if (true) { write(1); } }")
	res := Build(fd)
	if _, err := res.G.DOT("f"); err != nil {
		t.Fatalf("DOT: %v", err)
	}
	nodes := res.G.G.Nodes()
	for nodes.Next() {
		from := nodes.Node().ID()
		succs := res.G.G.From(from)
		for succs.Next() {
			lines := res.G.G.Lines(from, succs.Node().ID())
			for lines.Next() {
				if e := lines.Line().(*graph.Edge); e.Color != graph.ColorNone {
					t.Fatalf("SDG edge %d->%d carries color %q, want none", from, succs.Node().ID(), e.Color)
				}
			}
		}
	}
}
