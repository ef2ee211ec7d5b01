// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/godoctor/flowstruct/astforest"
	"github.com/godoctor/flowstruct/diag"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// updateImmedPDom computes each node's immediate post-dominator with
// an adapted Hecht-Ullman algorithm (valid on reducible graphs): one
// pass over the post-dominator ordering merging each node into its
// successors' dominator sets, a second pass over the ordinary
// post-order considering every multi-way node, and a third pass that
// special-cases back edges so that a loop's own exit doesn't corrupt
// its header's dominator. The three passes are iterated to a fixpoint
// rather than run once each, since a single pass can leave a node's
// immPDom referring to a value that a later node in the same pass
// still needs refined.
func (a *Analyzer) updateImmedPDom() {
	for {
		changed := a.immedPDomPass()
		if !changed {
			return
		}
	}
}

func (a *Analyzer) immedPDomPass() bool {
	changed := false
	set := func(id, dom astforest.NodeID) {
		if a.info[id].immPDom != dom {
			a.info[id].immPDom = dom
			changed = true
		}
	}

	for i := len(a.revPostOrdering) - 1; i >= 0; i-- {
		node := a.revPostOrdering[i]
		for _, succ := range a.successors(node) {
			if a.getRevOrd(succ) > a.getRevOrd(node) {
				set(node, a.findCommonPDom(a.getImmPDom(node), succ))
			}
		}
	}

	for _, node := range a.postOrdering {
		if a.numSuccessors(node) <= 1 {
			continue
		}
		for _, succ := range a.successors(node) {
			set(node, a.findCommonPDom(a.getImmPDom(node), succ))
		}
	}

	for _, node := range a.postOrdering {
		if a.numSuccessors(node) <= 1 {
			continue
		}
		for _, succ := range a.successors(node) {
			if a.isBackEdge(node, succ) && a.numSuccessors(node) > 1 &&
				a.getImmPDom(succ) != astforest.Invalid && a.getImmPDom(node) != astforest.Invalid &&
				a.getPostOrdering(a.getImmPDom(succ)) < a.getPostOrdering(a.getImmPDom(node)) {
				set(node, a.findCommonPDom(a.getImmPDom(succ), a.getImmPDom(node)))
			} else {
				set(node, a.findCommonPDom(a.getImmPDom(node), succ))
			}
		}
	}

	return changed
}

// findCommonPDom walks curImmPDom and succImmPDom up their respective
// immediate-post-dominator chains (each step advancing whichever has
// the lower reverse post-order position, i.e. the one farther from the
// exit) until they meet, bounded by giveUp
// iterations to guarantee termination on a still-incomplete ordering.
func (a *Analyzer) findCommonPDom(curImmPDom, succImmPDom astforest.NodeID) astforest.NodeID {
	if curImmPDom == astforest.Invalid {
		return succImmPDom
	}
	if succImmPDom == astforest.Invalid {
		return curImmPDom
	}
	if a.getRevOrd(curImmPDom) == a.getRevOrd(succImmPDom) {
		return curImmPDom // ordering hasn't been done
	}

	orig := curImmPDom
	for i := 0; i < giveUp; i++ {
		if curImmPDom == astforest.Invalid || succImmPDom == astforest.Invalid || curImmPDom == succImmPDom {
			break
		}
		if a.getRevOrd(curImmPDom) > a.getRevOrd(succImmPDom) {
			succImmPDom = a.getImmPDom(succImmPDom)
		} else {
			curImmPDom = a.getImmPDom(curImmPDom)
		}
	}

	if curImmPDom == astforest.Invalid || succImmPDom == astforest.Invalid || curImmPDom != succImmPDom {
		return orig // no change; gave up
	}
	return curImmPDom
}

// structConds structures every multi-way node (branch or case) as a
// conditional header, following the post-order so that nested
// conditionals are processed inside-out.
func (a *Analyzer) structConds() {
	for _, node := range a.postOrdering {
		if a.numSuccessors(node) <= 1 {
			continue
		}

		if a.hasBackEdge(node) && a.isBranch(node) {
			// a two-way header with a back edge won't have a follow;
			// checkConds fills in its follow from the non-back-edge child.
			a.setStructType(node, StructCond)
			continue
		}

		a.setCondFollow(node, a.getImmPDom(node))
		a.setStructType(node, StructCond)

		if a.GetCondType(node) == CondCase {
			a.setCaseHead(node, node, a.GetCondFollow(node))
		}
	}
}

// structLoops finds every loop header by scanning for back edges into
// each node (in reverse post-order so outer loops are found before
// their nested loops are re-examined), selects its latch, tags its
// member nodes, and determines its loop type and follow node.
func (a *Analyzer) structLoops() {
	for i := len(a.postOrdering) - 1; i >= 0; i-- {
		node := a.postOrdering[i]
		latch := astforest.Invalid

		for _, pred := range a.predecessors(node) {
			if a.GetCaseHead(pred) == a.GetCaseHead(node) &&
				a.GetLoopHead(pred) == a.GetLoopHead(node) &&
				(latch == astforest.Invalid || a.getPostOrdering(latch) > a.getPostOrdering(pred)) &&
				!(a.GetLoopHead(pred) != astforest.Invalid && a.GetLatchNode(a.GetLoopHead(pred)) == pred) &&
				a.isBackEdge(pred, node) {
				latch = pred
			}
		}

		if latch == astforest.Invalid {
			continue
		}

		loopNodes := bitset.New(uint(len(a.postOrdering)))

		a.setLatchNode(node, latch)

		if latch != node && a.GetStructType(latch) == StructCond {
			a.setStructType(latch, StructSeq)
		}

		a.setStructType(node, StructLoop)

		a.tagNodesInLoop(node, latch, loopNodes)
		a.determineLoopType(node, loopNodes)
		a.findLoopFollow(node, latch, loopNodes)
	}
}

func (a *Analyzer) tagNodesInLoop(header, latch astforest.NodeID, loopNodes *bitset.BitSet) {
	for i := a.getPostOrdering(header) - 1; i >= a.getPostOrdering(latch); i-- {
		cand := a.postOrdering[i]
		if a.isNodeInLoop(cand, header, latch) {
			loopNodes.Set(uint(i))
			a.setLoopHead(cand, header)
		}
	}
}

func (a *Analyzer) determineLoopType(header astforest.NodeID, loopNodes *bitset.BitSet) {
	latch := a.GetLatchNode(header)

	switch {
	case a.isBranch(latch):
		a.setLoopType(header, LoopPostTested)
		if a.isBranch(header) && header != latch {
			a.setStructType(header, StructLoopCond)
		}
	case a.isBranch(header):
		follow := a.GetCondFollow(header)
		if follow != astforest.Invalid && loopNodes.Test(uint(a.getPostOrdering(follow))) {
			a.setLoopType(header, LoopEndless)
			a.setStructType(header, StructLoopCond)
		} else {
			a.setLoopType(header, LoopPreTested)
		}
	default:
		a.setLoopType(header, LoopEndless)
	}
}

func (a *Analyzer) findLoopFollow(header, latch astforest.NodeID, loopNodes *bitset.BitSet) {
	loopType := a.GetLoopType(header)

	switch loopType {
	case LoopPreTested:
		if loopNodes.Test(uint(a.getPostOrdering(a.succAt(header, stmt.BThen)))) {
			a.setLoopFollow(header, a.succAt(header, stmt.BElse))
		} else {
			a.setLoopFollow(header, a.succAt(header, stmt.BThen))
		}

	case LoopPostTested:
		if a.succAt(latch, stmt.BElse) == header {
			a.setLoopFollow(header, a.succAt(latch, stmt.BThen))
		} else {
			a.setLoopFollow(header, a.succAt(latch, stmt.BElse))
		}

	default: // Endless
		var follow astforest.NodeID = astforest.Invalid

		for i := a.getPostOrdering(header) - 1; i > a.getPostOrdering(latch); i-- {
			desc := a.postOrdering[i]

			if a.GetStructType(desc) != StructCond {
				continue
			}
			descFollow := a.GetCondFollow(desc)
			if descFollow == astforest.Invalid || a.GetLoopHead(desc) != header {
				continue
			}

			if loopNodes.Test(uint(a.getPostOrdering(descFollow))) {
				if a.getPostOrdering(desc) > a.getPostOrdering(descFollow) {
					i = a.getPostOrdering(descFollow)
				} else {
					break
				}
				continue
			}

			succ := a.succAt(desc, stmt.BThen)
			if loopNodes.Test(uint(a.getPostOrdering(succ))) {
				if !loopNodes.Test(uint(a.getPostOrdering(a.succAt(desc, stmt.BElse)))) {
					succ = a.succAt(desc, stmt.BElse)
				} else {
					succ = astforest.Invalid
				}
			}

			if succ != astforest.Invalid && (follow == astforest.Invalid || a.getPostOrdering(succ) > a.getPostOrdering(follow)) {
				follow = succ
			}
		}

		if follow != astforest.Invalid {
			a.setLoopFollow(header, follow)
		}
	}
}

// checkConds classifies, for every conditional header with a follow
// that isn't a case header, whether its branches jump in or out of a
// loop, or into a case body — and, for two-way headers that are the
// source of a back edge (so they had no follow set by structConds),
// assigns their follow to be the non-back-edge child.
func (a *Analyzer) checkConds() {
	for _, node := range a.postOrdering {
		structType := a.GetStructType(node)
		follow := a.GetCondFollow(node)

		if (structType == StructCond || structType == StructLoopCond) &&
			follow != astforest.Invalid && a.GetCondType(node) != CondCase {
			var myLoopHead astforest.NodeID
			if structType == StructLoopCond {
				myLoopHead = node
			} else {
				myLoopHead = a.GetLoopHead(node)
			}
			follLoopHead := a.GetLoopHead(follow)
			thenNode := a.succAt(node, stmt.BThen)
			elseNode := a.succAt(node, stmt.BElse)

			if myLoopHead != follLoopHead {
				if myLoopHead != astforest.Invalid {
					if a.GetLoopHead(thenNode) != astforest.Invalid {
						a.setUnstructType(node, JumpInOutLoop)
						a.setCondType(node, CondIfElse)
					} else if a.GetLoopHead(elseNode) != astforest.Invalid {
						a.setUnstructType(node, JumpInOutLoop)
						a.setCondType(node, CondIfThen)
					} else {
						a.Log.Logf(diag.WARNING, "checkConds: node %s jumps out of a loop but neither branch has a loop head; not classified",
							nodeLabel(node))
					}
				}

				if a.GetUnstructType(node) == Structured && follLoopHead != astforest.Invalid {
					if a.isBackEdge(thenNode, follLoopHead) {
						a.setUnstructType(node, JumpInOutLoop)
						a.setCondType(node, CondIfElse)
					} else if a.isBackEdge(elseNode, follLoopHead) {
						a.setUnstructType(node, JumpInOutLoop)
						a.setCondType(node, CondIfThen)
					}
				}
			}

			if a.GetUnstructType(node) == Structured &&
				(a.GetCaseHead(node) != a.GetCaseHead(thenNode) || a.GetCaseHead(node) != a.GetCaseHead(elseNode)) {
				myCaseHead := a.GetCaseHead(node)
				thenCaseHead := a.GetCaseHead(thenNode)
				elseCaseHead := a.GetCaseHead(elseNode)

				switch {
				case thenCaseHead == myCaseHead &&
					(myCaseHead == astforest.Invalid || elseCaseHead != a.GetCondFollow(myCaseHead)):
					a.setUnstructType(node, JumpIntoCase)
					a.setCondType(node, CondIfElse)
				case elseCaseHead == myCaseHead &&
					(myCaseHead == astforest.Invalid || thenCaseHead != a.GetCondFollow(myCaseHead)):
					a.setUnstructType(node, JumpIntoCase)
					a.setCondType(node, CondIfThen)
				}
			}
		}

		if structType == StructCond && follow == astforest.Invalid &&
			a.GetCondType(node) != CondCase && a.GetUnstructType(node) == Structured {
			if a.hasBackEdge(node) {
				if a.isBackEdge(node, a.succAt(node, stmt.BThen)) {
					a.setCondType(node, CondIfThen)
					a.setCondFollow(node, a.succAt(node, stmt.BElse))
				} else {
					a.setCondType(node, CondIfElse)
					a.setCondFollow(node, a.succAt(node, stmt.BThen))
				}
			}
		}
	}
}
