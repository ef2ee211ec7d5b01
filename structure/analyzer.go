// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure

import (
	"strconv"

	"github.com/godoctor/flowstruct/astforest"
	"github.com/godoctor/flowstruct/diag"
	"github.com/godoctor/flowstruct/ir/cfg"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// giveUp bounds findCommonPDom's walk up the immediate-post-dominator
// chain, matching the original's GIVEUP constant.
const giveUp = 10000

// Analyzer structures one procedure's CFG at a time. A fresh Analyzer
// (or a reused one, via StructureCFG) owns exactly one forest's worth
// of per-node decoration; nothing survives between calls to
// StructureCFG except the Log, if the caller chose to reuse one.
type Analyzer struct {
	// Strict makes malformed-invariant conditions panic instead of
	// logging a WARNING and falling back, for use in tests and
	// debug builds.
	Strict bool

	Log *diag.Log

	g      *cfg.ProcCFG
	forest *astforest.Forest

	info []info

	postOrdering    []astforest.NodeID
	revPostOrdering []astforest.NodeID
}

// NewAnalyzer returns an Analyzer that logs to l (a fresh diag.Log if
// l is nil).
func NewAnalyzer(l *diag.Log) *Analyzer {
	if l == nil {
		l = diag.NewLog()
	}
	return &Analyzer{Log: l}
}

// StructureCFG runs the full structuring pipeline over g, building a
// fresh astforest.Forest and decorating every node it contains. It
// overwrites any state left over from a previous call.
func (a *Analyzer) StructureCFG(g *cfg.ProcCFG) *astforest.Forest {
	a.g = g
	a.forest = astforest.Build(g)
	a.info = make([]info, len(a.forest.Nodes))
	for i := range a.info {
		a.info[i] = newInfo()
	}
	a.postOrdering = nil
	a.revPostOrdering = nil

	if !g.HasReturn() {
		a.Log.Logf(diag.WARNING, "procedure has no reachable return; skipping structuring")
		return a.forest
	}

	a.setTimeStamps()
	a.updateImmedPDom()

	a.structConds()
	a.structLoops()
	a.checkConds()

	a.unTraverse()
	return a.forest
}

// Forest returns the forest built by the most recent StructureCFG call.
func (a *Analyzer) Forest() *astforest.Forest { return a.forest }

// --- node accessors -------------------------------------------------

func (a *Analyzer) stmtAt(id astforest.NodeID) stmt.Stmt {
	n := a.forest.Nodes[id]
	return a.g.Block(n.Block).Stmts[n.StmtIndex]
}

// StmtAt returns the statement a forest node projects, for callers
// (e.g. package dot) that need to render or inspect it.
func (a *Analyzer) StmtAt(id astforest.NodeID) stmt.Stmt { return a.stmtAt(id) }

// Successors returns id's forest successors in control-flow order.
func (a *Analyzer) Successors(id astforest.NodeID) []astforest.NodeID { return a.successors(id) }

func (a *Analyzer) isBranch(id astforest.NodeID) bool { return stmt.IsBranch(a.stmtAt(id)) }
func (a *Analyzer) isCase(id astforest.NodeID) bool   { return stmt.IsCase(a.stmtAt(id)) }

func (a *Analyzer) numSuccessors(id astforest.NodeID) int {
	return len(a.forest.Nodes[id].Succs)
}

func (a *Analyzer) successors(id astforest.NodeID) []astforest.NodeID {
	return a.forest.Nodes[id].Succs
}

func (a *Analyzer) predecessors(id astforest.NodeID) []astforest.NodeID {
	return a.forest.Nodes[id].Preds
}

// succAt returns id's successor at the given slot (BThen/BElse for a
// two-way node).
func (a *Analyzer) succAt(id astforest.NodeID, slot stmt.BranchSlot) astforest.NodeID {
	return a.forest.Nodes[id].Succs[slot]
}

// --- simple getters/setters, mirroring the original's inline accessors ---

func (a *Analyzer) getTravType(id astforest.NodeID) TravType   { return a.info[id].travType }
func (a *Analyzer) setTravType(id astforest.NodeID, t TravType) { a.info[id].travType = t }

func (a *Analyzer) GetStructType(id astforest.NodeID) StructType { return a.info[id].structType }

func (a *Analyzer) GetLatchNode(id astforest.NodeID) astforest.NodeID { return a.info[id].latchNode }
func (a *Analyzer) setLatchNode(id, latch astforest.NodeID)          { a.info[id].latchNode = latch }

func (a *Analyzer) GetLoopHead(id astforest.NodeID) astforest.NodeID { return a.info[id].loopHead }
func (a *Analyzer) setLoopHead(id, head astforest.NodeID)            { a.info[id].loopHead = head }

func (a *Analyzer) GetLoopFollow(id astforest.NodeID) astforest.NodeID { return a.info[id].loopFollow }
func (a *Analyzer) setLoopFollow(id, follow astforest.NodeID)         { a.info[id].loopFollow = follow }

func (a *Analyzer) GetCondFollow(id astforest.NodeID) astforest.NodeID { return a.info[id].condFollow }
func (a *Analyzer) setCondFollow(id, follow astforest.NodeID)         { a.info[id].condFollow = follow }

func (a *Analyzer) GetCaseHead(id astforest.NodeID) astforest.NodeID { return a.info[id].caseHead }

func (a *Analyzer) getImmPDom(id astforest.NodeID) astforest.NodeID { return a.info[id].immPDom }
func (a *Analyzer) setImmPDom(id, dom astforest.NodeID)             { a.info[id].immPDom = dom }

func (a *Analyzer) getPostOrdering(id astforest.NodeID) int { return a.info[id].postOrderIndex }
func (a *Analyzer) getRevOrd(id astforest.NodeID) int       { return a.info[id].revPostOrderIndex }

// IsLatchNode reports whether id is the latch node of its own loop head.
func (a *Analyzer) IsLatchNode(id astforest.NodeID) bool {
	head := a.GetLoopHead(id)
	if head == astforest.Invalid {
		return false
	}
	return a.GetLatchNode(head) == id
}

// GetCondType returns the conditional shape of a Cond/LoopCond header.
// Calling it on any other node is a logic error; in non-Strict mode it
// returns CondInvalid and logs a WARNING instead of panicking.
func (a *Analyzer) GetCondType(id astforest.NodeID) CondType {
	if !a.expect(id, "GetCondType", a.info[id].structType == StructCond || a.info[id].structType == StructLoopCond) {
		return CondInvalid
	}
	return a.info[id].condType
}

func (a *Analyzer) setCondType(id astforest.NodeID, c CondType) {
	a.expect(id, "setCondType", a.info[id].structType == StructCond || a.info[id].structType == StructLoopCond)
	a.info[id].condType = c
}

// GetLoopType returns the loop shape of a Loop/LoopCond header.
func (a *Analyzer) GetLoopType(id astforest.NodeID) LoopType {
	if !a.expect(id, "GetLoopType", a.info[id].structType == StructLoop || a.info[id].structType == StructLoopCond) {
		return LoopInvalid
	}
	return a.info[id].loopType
}

func (a *Analyzer) setLoopType(id astforest.NodeID, l LoopType) {
	a.info[id].loopType = l

	// fold back to plain Loop if it's pre-tested, or post-tested over a
	// single block
	if l == LoopPreTested || (l == LoopPostTested && id == a.GetLatchNode(id)) {
		a.setStructType(id, StructLoop)
	}
}

// GetUnstructType returns the unstructured-jump classification of a
// non-Case conditional header.
func (a *Analyzer) GetUnstructType(id astforest.NodeID) UnstructType {
	if !a.expect(id, "GetUnstructType", a.info[id].structType == StructCond || a.info[id].structType == StructLoopCond) {
		return UnstructInvalid
	}
	return a.info[id].unstructType
}

func (a *Analyzer) setUnstructType(id astforest.NodeID, u UnstructType) {
	a.expect(id, "setUnstructType",
		(a.info[id].structType == StructCond || a.info[id].structType == StructLoopCond) &&
			a.info[id].condType != CondCase)
	a.info[id].unstructType = u
}

// setStructType records id's structural role, and — if it is becoming
// a conditional header — derives its CondType from the shape of its
// follow relative to its THEN/ELSE successors.
func (a *Analyzer) setStructType(id astforest.NodeID, s StructType) {
	if s == StructCond {
		switch {
		case a.isCase(id):
			a.info[id].condType = CondCase
		case a.GetCondFollow(id) == a.succAt(id, stmt.BElse):
			a.info[id].condType = CondIfThen
		case a.GetCondFollow(id) == a.succAt(id, stmt.BThen):
			a.info[id].condType = CondIfElse
		default:
			a.info[id].condType = CondIfThenElse
		}
	}
	a.info[id].structType = s
}

// expect records a WARNING (or panics in Strict mode) when an
// invariant the caller relies on doesn't hold, and reports whether the
// invariant held.
func (a *Analyzer) expect(id astforest.NodeID, where string, ok bool) bool {
	if ok {
		return true
	}
	if a.Strict {
		panic(where + ": invariant violated at node " + nodeLabel(id))
	}
	a.Log.Logf(diag.WARNING, "%s: invariant violated at node %s", where, nodeLabel(id))
	return false
}

func nodeLabel(id astforest.NodeID) string {
	if id == astforest.Invalid {
		return "<invalid>"
	}
	return strconv.Itoa(int(id))
}
