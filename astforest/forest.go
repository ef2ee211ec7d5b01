// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package astforest projects a procedure's block-level CFG onto a
// per-statement graph, so that structuring decisions (package structure)
// can be made at statement granularity. It is rebuilt once per
// structuring run from the block CFG (spec.md §3, "Ownership/lifetime").
package astforest

import "github.com/godoctor/flowstruct/ir/cfg"

// NodeID is a dense index into a Forest's node table.
type NodeID int

// Invalid marks "no such node".
const Invalid NodeID = -1

// Node is one StmtASTNode: a back-pointer to its statement (index into
// the owning block — the Forest never owns the statement itself, only a
// weak reference, per spec.md §3) plus ordered successor/predecessor
// lists. Index 0 of Succs is THEN, index 1 is ELSE for a branch; case
// arms keep their switch-table order with the default arm last.
type Node struct {
	Block     int // owning basic block index
	StmtIndex int // index of the statement within that block's Stmts slice
	Succs     []NodeID
	Preds     []NodeID
}

// Forest is the complete StmtASTNode arena for one procedure.
type Forest struct {
	Nodes []Node

	// blockFirst[i]/blockLast[i] are the node IDs of block i's first and
	// last statement, or Invalid if block i is empty.
	blockFirst []NodeID
	blockLast  []NodeID
}

func (f *Forest) addNode(block, stmtIndex int) NodeID {
	id := NodeID(len(f.Nodes))
	f.Nodes = append(f.Nodes, Node{Block: block, StmtIndex: stmtIndex})
	return id
}

func (f *Forest) addEdge(from, to NodeID) {
	f.Nodes[from].Succs = append(f.Nodes[from].Succs, to)
	f.Nodes[to].Preds = append(f.Nodes[to].Preds, from)
}

// Build wires intra-block sequential edges and inter-block control-flow
// edges from g, following ControlFlowAnalyzer::rebuildASTForest: first
// every block's statements are chained in order, then each block's last
// statement is wired to each control-flow successor's first statement,
// walking through empty pass-through blocks (guarded against cycles of
// empty blocks, which silently drop the edge per spec.md §4.1's failure
// semantics).
func Build(g *cfg.ProcCFG) *Forest {
	f := &Forest{
		blockFirst: make([]NodeID, g.NumBlocks()),
		blockLast:  make([]NodeID, g.NumBlocks()),
	}
	for i := range f.blockFirst {
		f.blockFirst[i] = Invalid
		f.blockLast[i] = Invalid
	}

	// Pass 1: one node per statement, chained within each block.
	for bi, bb := range g.Blocks() {
		var prev NodeID = Invalid
		for si := range bb.Stmts {
			id := f.addNode(bi, si)
			if f.blockFirst[bi] == Invalid {
				f.blockFirst[bi] = id
			}
			f.blockLast[bi] = id
			if prev != Invalid {
				f.addEdge(prev, id)
			}
			prev = id
		}
	}

	// Pass 2: wire each block's last statement to each successor block's
	// first statement (walking through empty blocks).
	for bi, bb := range g.Blocks() {
		last := f.blockLast[bi]
		if last == Invalid {
			continue
		}
		for _, succBlock := range bb.Succs() {
			first := f.findSuccessorNode(g, succBlock)
			if first == Invalid {
				continue // cycle of empty blocks: edge silently dropped
			}
			f.addEdge(last, first)
		}
	}

	return f
}

// findSuccessorNode walks forward through empty pass-through blocks
// (guarded by a visited-set to break cycles) to find the node for the
// first real statement reachable from block idx.
func (f *Forest) findSuccessorNode(g *cfg.ProcCFG, idx int) NodeID {
	visited := make(map[int]bool)
	for {
		if visited[idx] {
			return Invalid // empty-block cycle
		}
		visited[idx] = true

		if f.blockFirst[idx] != Invalid {
			return f.blockFirst[idx]
		}

		bb := g.Block(idx)
		succs := bb.Succs()
		if len(succs) != 1 {
			return Invalid // empty block with anything but exactly one successor is malformed
		}
		idx = succs[0]
	}
}

// EntryNode returns the first node reachable from the procedure's entry
// block, walking through any leading empty blocks.
func (f *Forest) EntryNode(g *cfg.ProcCFG) NodeID {
	return f.findSuccessorNode(g, g.Entry())
}

// ExitNode returns the node for the procedure's return block's last
// statement, or Invalid if the procedure has no reachable return.
func (f *Forest) ExitNode(g *cfg.ProcCFG) NodeID {
	if !g.HasReturn() {
		return Invalid
	}
	return f.blockLast[g.ReturnBlock()]
}
