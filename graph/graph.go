// Package graph provides the shared directed-multigraph representation for
// the CFG and SDG builders: gonum's graph/multi.DirectedGraph backs the
// in-memory structure (a plain simple.DirectedGraph cannot hold the
// parallel edges a decision node sometimes produces, e.g. an `unless` with
// an empty body has both a red and a green edge to the same merge node),
// graph/encoding/dot renders it to DOT text, and an external "dot" binary
// (when present) rasterizes that text to PNG.
package graph

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// Node shapes, matching spec §3.4's node kinds.
const (
	ShapeOval      = "oval"
	ShapeBox       = "box"
	ShapeDiamond   = "diamond"
	ShapePlaintext = "plaintext"
)

// Edge colors.
const (
	ColorNone  = ""
	ColorGreen = "green"
	ColorRed   = "red"
	ColorGray  = "gray"
)

// Node is one CFG/SDG vertex: a label plus its rendering attributes.
type Node struct {
	id        int64
	Label     string
	Shape     string
	FillColor string
}

func (n *Node) ID() int64     { return n.id }
func (n *Node) DOTID() string { return fmt.Sprintf("n%d", n.id) }

// Attributes implements encoding.Attributer so dot.Marshal renders shape
// and fill-color.
func (n *Node) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: strconv.Quote(n.Label)}}
	if n.Shape != "" {
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: n.Shape})
	}
	if n.FillColor != "" {
		attrs = append(attrs,
			encoding.Attribute{Key: "style", Value: "filled"},
			encoding.Attribute{Key: "fillcolor", Value: n.FillColor})
	}
	return attrs
}

// Edge is one CFG/SDG arc. It implements graph.Line (not just graph.Edge)
// because the underlying graph is a multigraph: two distinct edges between
// the same pair of nodes (e.g. a branch's direct true- and false-edges into
// an empty-bodied merge node) must coexist.
type Edge struct {
	id    int64
	F, T  graph.Node
	Color string
	Style string // "" (solid) or "dashed"
	Label string
}

func (e *Edge) From() graph.Node { return e.F }
func (e *Edge) To() graph.Node   { return e.T }
func (e *Edge) ID() int64        { return e.id }
func (e *Edge) ReversedLine() graph.Line {
	return &Edge{id: e.id, F: e.T, T: e.F, Color: e.Color, Style: e.Style, Label: e.Label}
}

// Attributes implements encoding.Attributer.
func (e *Edge) Attributes() []encoding.Attribute {
	var attrs []encoding.Attribute
	if e.Color != "" {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: e.Color})
	}
	if e.Style == "dashed" {
		attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
	}
	if e.Label != "" {
		attrs = append(attrs, encoding.Attribute{Key: "label", Value: strconv.Quote(e.Label)})
	}
	return attrs
}

// Builder accumulates one function's graph: callers add nodes and edges,
// then ask for DOT text or the complexity metric.
type Builder struct {
	G          *multi.DirectedGraph
	nextNodeID int64
	nextLineID int64
}

// NewBuilder returns an empty graph builder with fresh node/edge-ID
// counters.
func NewBuilder() *Builder {
	return &Builder{G: multi.NewDirectedGraph()}
}

// NewNode allocates and adds a node with the given label/shape/fill-color.
func (b *Builder) NewNode(label, shape, fillColor string) *Node {
	n := &Node{id: b.nextNodeID, Label: label, Shape: shape, FillColor: fillColor}
	b.nextNodeID++
	b.G.AddNode(n)
	return n
}

// AddEdge adds a directed edge from -> to with the given color/style/label.
func (b *Builder) AddEdge(from, to *Node, color, style, label string) {
	e := &Edge{id: b.nextLineID, F: from, T: to, Color: color, Style: style, Label: label}
	b.nextLineID++
	b.G.SetLine(e)
}

// DOT renders the graph to DOT text under the given graph name.
func (b *Builder) DOT(name string) (string, error) {
	data, err := dot.Marshal(b.G, name, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Complexity computes McCabe's cyclomatic complexity, E - N + 2, counting
// every node except plaintext annotation nodes; E is every edge added via
// AddEdge (annotation nodes never gain edges, so they need no separate
// exclusion there).
func (b *Builder) Complexity() int {
	n := 0
	nodes := b.G.Nodes()
	for nodes.Next() {
		if node, ok := nodes.Node().(*Node); ok && node.Shape != ShapePlaintext {
			n++
		}
	}
	e := int(b.nextLineID)
	return e - n + 2
}

// RenderPNG shells out to the "dot" binary to rasterize dotText. If "dot"
// is not on PATH, ok is false and err is nil, so the caller can skip PNG
// output rather than fail the run (spec's "graph renderer" is an external
// black box).
func RenderPNG(dotText string) (png []byte, ok bool, err error) {
	path, lookErr := exec.LookPath("dot")
	if lookErr != nil {
		return nil, false, nil
	}
	cmd := exec.Command(path, "-Tpng")
	cmd.Stdin = bytes.NewBufferString(dotText)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, true, err
	}
	return out.Bytes(), true, nil
}
