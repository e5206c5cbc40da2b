package graph

import "github.com/bits-and-blooms/bitset"

// Reachable computes the set of node IDs reachable from "from" by following
// directed edges, as a bitset indexed by node ID. It is an adaptation of the
// classic iterative fixed-point dataflow algorithm (reaching definitions,
// Dragon Book ch. 9.2): GEN[from] = {from}, OUT[B] = GEN[B] ∪ Union(IN of
// B's predecessors reached so far), iterated until no OUT set changes.
// Plain BFS would answer the same question in one pass; the fixed-point
// form is kept because it is the shape the SDG's dead-code bookkeeping
// already uses bitset.BitSet for, and because it generalizes directly if a
// caller ever needs non-trivial per-node GEN/KILL sets instead of bare
// reachability.
//
// Used by cfg and sdg tests to check the invariant from spec §3.4: every
// node but the dead-code cluster (and annotation nodes) is reachable from
// the function's signature node.
func (b *Builder) Reachable(from *Node) *bitset.BitSet {
	out := bitset.New(uint(b.nextNodeID))
	out.Set(uint(from.ID()))

	for changed := true; changed; {
		changed = false
		nodes := b.G.Nodes()
		for nodes.Next() {
			node := nodes.Node().(*Node)
			if !out.Test(uint(node.ID())) {
				continue
			}
			succs := b.G.From(node.ID())
			for succs.Next() {
				sid := uint(succs.Node().(*Node).ID())
				if !out.Test(sid) {
					out.Set(sid)
					changed = true
				}
			}
		}
	}
	return out
}
