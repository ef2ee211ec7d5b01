// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cfg implements the basic-block/procedure control-flow graph:
// a directed graph of basic blocks, each a sequence of statements.
//
// Unlike extras/cfg (which this package is descended from), the graph
// here is block-level rather than statement-level, and uses a dense,
// index-addressed adjacency list instead of a map of pointers — blocks
// live in one slice, and successor/predecessor lists are slices of
// block indices. This follows spec.md §9's "Pointer-graph ownership"
// design note: no per-node heap allocation, no hash map needed to find
// a block's neighbors.
package cfg

import "github.com/godoctor/flowstruct/ir/stmt"

// BlockKind classifies a basic block by the shape of its terminator, as
// specified in spec.md §3.
type BlockKind int

const (
	KindFall       BlockKind = iota // falls through to its single successor
	KindOneWay                      // unconditional jump
	KindTwoWay                      // branch (THEN/ELSE)
	KindNWay                        // switch/case
	KindRet                         // return
	KindCall                        // direct call, falls through after
	KindCompCall                    // computed call
	KindCompJump                    // computed jump
)

// BasicBlock is a non-empty sequence of statements (except for
// pass-through blocks, which contain no statements and exactly one
// successor, per spec.md §3).
type BasicBlock struct {
	Stmts []stmt.Stmt
	Kind  BlockKind

	succs []int
	preds []int
}

// Succs returns the indices of bb's successor blocks, in control-flow
// order (slot 0 = THEN for a two-way block, case-arm order for an n-way
// block with the default arm last).
func (bb *BasicBlock) Succs() []int { return bb.succs }

// Preds returns the indices of bb's predecessor blocks.
func (bb *BasicBlock) Preds() []int { return bb.preds }

// IsEmpty reports whether bb is a pass-through block with no statements.
func (bb *BasicBlock) IsEmpty() bool { return len(bb.Stmts) == 0 }

// First returns bb's first statement, or nil if bb is empty.
func (bb *BasicBlock) First() stmt.Stmt {
	if len(bb.Stmts) == 0 {
		return nil
	}
	return bb.Stmts[0]
}

// Last returns bb's last statement, or nil if bb is empty.
func (bb *BasicBlock) Last() stmt.Stmt {
	if len(bb.Stmts) == 0 {
		return nil
	}
	return bb.Stmts[len(bb.Stmts)-1]
}

// ProcCFG is one procedure's basic-block graph.
type ProcCFG struct {
	blocks    []*BasicBlock
	entry     int
	returnIdx int // -1 if the procedure has no reachable return (spec.md §7)
}

// NewProcCFG returns an empty graph with no blocks yet. Use AddBlock and
// AddEdge to build it up, then SetEntry/SetReturn.
func NewProcCFG() *ProcCFG {
	return &ProcCFG{returnIdx: -1}
}

// AddBlock appends a new block and returns its index.
func (g *ProcCFG) AddBlock(kind BlockKind, stmts []stmt.Stmt) int {
	idx := len(g.blocks)
	for _, s := range stmts {
		stmt.SetBlock(s, idx)
	}
	g.blocks = append(g.blocks, &BasicBlock{Stmts: stmts, Kind: kind})
	return idx
}

// AddEdge wires a control-flow edge from block `from` to block `to`. Edges
// must be added in successor order for a given `from` so that THEN stays
// slot 0 and ELSE stays slot 1 for two-way blocks (spec.md §4.1).
func (g *ProcCFG) AddEdge(from, to int) {
	g.blocks[from].succs = append(g.blocks[from].succs, to)
	g.blocks[to].preds = append(g.blocks[to].preds, from)
}

// SetEntry/SetReturn record the procedure's distinguished blocks.
func (g *ProcCFG) SetEntry(idx int)  { g.entry = idx }
func (g *ProcCFG) SetReturn(idx int) { g.returnIdx = idx }

// Blocks returns all blocks, in the order they were added.
func (g *ProcCFG) Blocks() []*BasicBlock { return g.blocks }

// Block returns the block at idx.
func (g *ProcCFG) Block(idx int) *BasicBlock { return g.blocks[idx] }

// NumBlocks returns the number of blocks in the graph.
func (g *ProcCFG) NumBlocks() int { return len(g.blocks) }

// Entry returns the entry block's index.
func (g *ProcCFG) Entry() int { return g.entry }

// HasReturn reports whether the procedure has a reachable return block
// (spec.md §7, "Absent return node").
func (g *ProcCFG) HasReturn() bool { return g.returnIdx >= 0 }

// ReturnBlock returns the return block's index; only valid if HasReturn.
func (g *ProcCFG) ReturnBlock() int { return g.returnIdx }
