// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure

import (
	"math/rand"
	"testing"

	"github.com/godoctor/flowstruct/astforest"
	"github.com/godoctor/flowstruct/diag"
	"github.com/godoctor/flowstruct/ir/cfg"
	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// cfgGen assembles a reducible ProcCFG out of a small family of
// structured-construct shapes (straight-line code, if-then-else,
// pre-tested while loops, post-tested do-while loops), nested to a
// bounded depth and chosen by a seeded math/rand source. Every shape it
// emits is structured by construction, so the properties below are
// checking the analyzer's recovery of known constructs, per spec.md §8.
type cfgGen struct {
	g     *cfg.ProcCFG
	arena *expr.Arena
	next  int
}

func newCFGGen() *cfgGen {
	return &cfgGen{g: cfg.NewProcCFG(), arena: expr.NewArena()}
}

func (b *cfgGen) id() int {
	b.next++
	return b.next - 1
}

// newPassThrough adds an empty block; the caller must wire exactly one
// outgoing edge from it (spec.md §3's pass-through invariant).
func (b *cfgGen) newPassThrough() int {
	return b.g.AddBlock(cfg.KindOneWay, nil)
}

func (b *cfgGen) newSeqBlock() int {
	loc := b.arena.RegOf(b.arena.IntConst(int64(b.id())))
	return b.g.AddBlock(cfg.KindOneWay, []stmt.Stmt{stmt.NewAssign(b.id(), loc, loc, expr.TypeUnknown)})
}

func (b *cfgGen) newBranch() int {
	return b.g.AddBlock(cfg.KindTwoWay, []stmt.Stmt{stmt.NewBranch(b.id(), b.arena.IntConst(1))})
}

// construct returns (entry, exit): exit is always a fresh, not-yet-wired
// pass-through block that the caller hooks up to whatever comes next.
func (b *cfgGen) construct(rnd *rand.Rand, depth int) (entry, exit int) {
	if depth <= 0 {
		return b.basic(rnd)
	}
	switch rnd.Intn(4) {
	case 0:
		return b.basic(rnd)
	case 1:
		return b.ifThenElse(rnd, depth)
	case 2:
		return b.while(rnd, depth)
	default:
		return b.doWhile(rnd, depth)
	}
}

func (b *cfgGen) basic(rnd *rand.Rand) (int, int) {
	n := b.newSeqBlock()
	exit := b.newPassThrough()
	b.g.AddEdge(n, exit)
	return n, exit
}

func (b *cfgGen) ifThenElse(rnd *rand.Rand, depth int) (int, int) {
	head := b.newBranch()
	thenEntry, thenExit := b.construct(rnd, depth-1)
	elseEntry, elseExit := b.construct(rnd, depth-1)
	join := b.newPassThrough()

	b.g.AddEdge(head, thenEntry) // THEN, slot 0
	b.g.AddEdge(head, elseEntry) // ELSE, slot 1
	b.g.AddEdge(thenExit, join)
	b.g.AddEdge(elseExit, join)
	return head, join
}

func (b *cfgGen) while(rnd *rand.Rand, depth int) (int, int) {
	pre := b.newPassThrough()
	header := b.newBranch()
	bodyEntry, bodyExit := b.construct(rnd, depth-1)
	exit := b.newPassThrough()

	b.g.AddEdge(pre, header)
	b.g.AddEdge(header, bodyEntry) // THEN: enter the loop body
	b.g.AddEdge(header, exit)      // ELSE: exit the loop
	b.g.AddEdge(bodyExit, header)  // back edge

	return pre, exit
}

func (b *cfgGen) doWhile(rnd *rand.Rand, depth int) (int, int) {
	bodyEntry, bodyExit := b.construct(rnd, depth-1)
	latch := b.newBranch()
	exit := b.newPassThrough()

	b.g.AddEdge(bodyExit, latch)
	b.g.AddEdge(latch, bodyEntry) // THEN: loop again
	b.g.AddEdge(latch, exit)      // ELSE: leave the loop

	return bodyEntry, exit
}

// genReducibleCFG builds one complete, always-returning procedure from
// a seeded rand source.
func genReducibleCFG(seed int64, maxDepth int) *cfg.ProcCFG {
	rnd := rand.New(rand.NewSource(seed))
	b := newCFGGen()

	entry, exit := b.construct(rnd, maxDepth)
	ret := b.g.AddBlock(cfg.KindRet, []stmt.Stmt{stmt.NewReturn(b.id())})
	b.g.AddEdge(exit, ret)

	b.g.SetEntry(entry)
	b.g.SetReturn(ret)
	return b.g
}

// reachesWithoutPassingThrough reports whether retNode is reachable
// from n over f's successor edges without passing through block (an
// independent check of post-dominance that doesn't reuse the
// analyzer's own ipdom machinery).
func reachesWithoutPassingThrough(f *astforest.Forest, n, block, retNode astforest.NodeID) bool {
	if n == block {
		return false
	}
	if n == retNode {
		return true
	}
	visited := make(map[astforest.NodeID]bool)
	var walk func(astforest.NodeID) bool
	walk = func(cur astforest.NodeID) bool {
		if cur == block {
			return false
		}
		if cur == retNode {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for _, s := range f.Nodes[cur].Succs {
			if walk(s) {
				return true
			}
		}
		return false
	}
	return walk(n)
}

// TestPropertyReducibleCFGs runs the three checks spec.md §8 calls for
// over a family of randomly generated, known-structured CFGs: every
// back-edge target is a recognized loop header, every loop follow lies
// outside its own loop's tagged member set, and every conditional
// follow post-dominates its conditional.
func TestPropertyReducibleCFGs(t *testing.T) {
	const trials = 40
	const maxDepth = 4

	for trial := 0; trial < trials; trial++ {
		seed := int64(1000 + trial)
		g := genReducibleCFG(seed, maxDepth)

		a := NewAnalyzer(diag.NewLog())
		a.Strict = true
		f := a.StructureCFG(g)
		retNode := f.ExitNode(g)

		for id := range f.Nodes {
			node := astforest.NodeID(id)

			// (a) every back-edge target is classified as a loop header.
			for _, succ := range f.Nodes[node].Succs {
				if !a.isBackEdge(node, succ) {
					continue
				}
				if a.GetLatchNode(succ) == astforest.Invalid {
					t.Fatalf("seed %d: back edge %d->%d targets a node with no latch (not a recognized loop header)",
						seed, node, succ)
				}
			}

			// (b) loop follows lie outside the tagged member set.
			if header := a.GetLatchNode(node); header != astforest.Invalid {
				// node is itself a loop header here.
				if follow := a.GetLoopFollow(node); follow != astforest.Invalid {
					if a.GetLoopHead(follow) == node {
						t.Fatalf("seed %d: loop header %d's follow %d is tagged as a member of its own loop",
							seed, node, follow)
					}
				}
			}

			// (c) every conditional follow post-dominates its conditional.
			if follow := a.GetCondFollow(node); follow != astforest.Invalid {
				if reachesWithoutPassingThrough(f, node, follow, retNode) {
					t.Fatalf("seed %d: node %d's conditional follow %d does not post-dominate it "+
						"(a path from %d reaches the return without passing through %d)",
						seed, node, follow, node, follow)
				}
			}
		}
	}
}

// TestPropertyStructureCFGIsIdempotent checks spec.md §8's "running
// structureCFG twice on the same CFG yields identical decorations"
// round-trip property over the same generated family.
func TestPropertyStructureCFGIsIdempotent(t *testing.T) {
	const trials = 10
	const maxDepth = 3

	for trial := 0; trial < trials; trial++ {
		seed := int64(2000 + trial)
		g := genReducibleCFG(seed, maxDepth)

		a := NewAnalyzer(diag.NewLog())
		f1 := a.StructureCFG(g)
		first := snapshotInfo(a, f1)

		f2 := a.StructureCFG(g)
		second := snapshotInfo(a, f2)

		if len(first) != len(second) {
			t.Fatalf("seed %d: node count changed across repeated structuring (%d vs %d)", seed, len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("seed %d: node %d's decoration changed across repeated structuring: %+v vs %+v",
					seed, i, first[i], second[i])
			}
		}
	}
}

func snapshotInfo(a *Analyzer, f *astforest.Forest) []info {
	out := make([]info, len(f.Nodes))
	copy(out, a.info)
	return out
}
