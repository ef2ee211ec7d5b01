// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure

import "github.com/godoctor/flowstruct/astforest"

// setTimeStamps computes the forward loop stamps (pre/post-order ID
// plus post-order position), the reverse loop stamps (over the same
// graph but visiting each node's successors in reverse order), and the
// post-dominator DFS ordering (walking predecessor edges from the
// exit node). The reverse loop stamps exist because a single DFS
// doesn't give every ancestor relationship needed for back-edge
// detection in an irreducible-ish graph; the post-dominator ordering
// is walked from the exit rather than reversed from the entry's
// post-order because the two differ whenever the procedure has a
// call to a no-return function or an infinite loop (spec.md §3).
func (a *Analyzer) setTimeStamps() {
	time := 1
	a.postOrdering = nil
	a.updateLoopStamps(a.forest.EntryNode(a.g), &time)

	time = 1
	a.updateRevLoopStamps(a.forest.EntryNode(a.g), &time)

	a.revPostOrdering = nil
	a.updateRevOrder(a.forest.ExitNode(a.g))
}

// dfsFrame is one stack entry for the explicit-stack DFS rewrites below:
// the node being visited, its children in traversal order, and how many
// of them have been examined so far. Recursive DFS over a procedure's
// statement forest can run the call stack tens of thousands deep on a
// real-world CFG (spec.md §9, "Recursive DFS"), so every traversal in
// this file walks its own heap-allocated stack instead.
type dfsFrame struct {
	id       astforest.NodeID
	children []astforest.NodeID
	next     int
}

func (a *Analyzer) updateLoopStamps(start astforest.NodeID, time *int) {
	visit := func(id astforest.NodeID) *dfsFrame {
		a.setTravType(id, DFSLoopNum)
		a.info[id].preOrderID = *time
		return &dfsFrame{id: id, children: a.successors(id)}
	}

	stack := []*dfsFrame{visit(start)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.children) {
			succ := top.children[top.next]
			top.next++
			if a.getTravType(succ) != DFSLoopNum {
				*time++
				stack = append(stack, visit(succ))
			}
			continue
		}

		*time++
		a.info[top.id].postOrderID = *time
		a.info[top.id].postOrderIndex = len(a.postOrdering)
		a.postOrdering = append(a.postOrdering, top.id)
		stack = stack[:len(stack)-1]
	}
}

func (a *Analyzer) updateRevLoopStamps(start astforest.NodeID, time *int) {
	visit := func(id astforest.NodeID) *dfsFrame {
		a.setTravType(id, DFSReverseLoopNum)
		a.info[id].revPreOrderID = *time

		succs := a.successors(id)
		rev := make([]astforest.NodeID, len(succs))
		for i, s := range succs {
			rev[len(succs)-1-i] = s
		}
		return &dfsFrame{id: id, children: rev}
	}

	stack := []*dfsFrame{visit(start)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.children) {
			succ := top.children[top.next]
			top.next++
			if a.getTravType(succ) != DFSReverseLoopNum {
				*time++
				stack = append(stack, visit(succ))
			}
			continue
		}

		*time++
		a.info[top.id].revPostOrderID = *time
		stack = stack[:len(stack)-1]
	}
}

func (a *Analyzer) updateRevOrder(start astforest.NodeID) {
	visit := func(id astforest.NodeID) *dfsFrame {
		a.setTravType(id, DFSPostDom)
		return &dfsFrame{id: id, children: a.predecessors(id)}
	}

	stack := []*dfsFrame{visit(start)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.children) {
			pred := top.children[top.next]
			top.next++
			if a.getTravType(pred) != DFSPostDom {
				stack = append(stack, visit(pred))
			}
			continue
		}

		a.info[top.id].revPostOrderIndex = len(a.revPostOrdering)
		a.revPostOrdering = append(a.revPostOrdering, top.id)
		stack = stack[:len(stack)-1]
	}
}

// isBackEdge reports whether the edge source -> dest is a back edge:
// either a self-loop, or dest is an ancestor of source in either DFS
// tree.
func (a *Analyzer) isBackEdge(source, dest astforest.NodeID) bool {
	return dest == source || a.isAncestorOf(dest, source)
}

// isAncestorOf reports whether node is an ancestor of other, tested
// against either the forward loop-stamp interval or the reverse
// loop-stamp interval (a node may only qualify under one of the two
// numberings in a graph with irreducible regions).
func (a *Analyzer) isAncestorOf(node, other astforest.NodeID) bool {
	ni, oi := a.info[node], a.info[other]
	return (ni.preOrderID < oi.preOrderID && ni.postOrderID > oi.postOrderID) ||
		(ni.revPreOrderID < oi.revPreOrderID && ni.revPostOrderID > oi.revPostOrderID)
}

// hasBackEdge reports whether node has any back edge leading from it.
func (a *Analyzer) hasBackEdge(node astforest.NodeID) bool {
	for _, succ := range a.successors(node) {
		if a.isBackEdge(node, succ) {
			return true
		}
	}
	return false
}

// isNodeInLoop reports whether node belongs to the loop headed by
// header with the given latch, per the three membership tests in
// spec.md §4.4 (latch itself, forward-stamp containment, or
// reverse-stamp containment).
func (a *Analyzer) isNodeInLoop(node, header, latch astforest.NodeID) bool {
	hi, li, ni := a.info[header], a.info[latch], a.info[node]

	if node == latch {
		return true
	}
	if hi.preOrderID < ni.preOrderID && ni.postOrderID < hi.postOrderID &&
		ni.preOrderID < li.preOrderID && li.postOrderID < ni.postOrderID {
		return true
	}
	if hi.revPreOrderID < ni.revPreOrderID && ni.revPostOrderID < hi.revPostOrderID &&
		ni.revPreOrderID < li.revPreOrderID && li.revPostOrderID < ni.revPostOrderID {
		return true
	}
	return false
}

// IsCaseOption reports whether node is a non-default arm of its
// enclosing case header.
func (a *Analyzer) IsCaseOption(node astforest.NodeID) bool {
	head := a.GetCaseHead(node)
	if head == astforest.Invalid {
		return false
	}
	succs := a.successors(head)
	for i := 0; i < len(succs)-1; i++ {
		if succs[i] == node {
			return true
		}
	}
	return false
}

// setCaseHead tags every node in the n-way body rooted at head (whose
// overall follow is follow) with head as its case head, skipping back
// edges, already-tagged nodes, nested case bodies (whose members are
// already tagged — we jump straight to the nested case's own follow),
// and the follow node itself.
func (a *Analyzer) setCaseHead(start, head, follow astforest.NodeID) {
	visit := func(node astforest.NodeID) {
		a.setTravType(node, DFSCase)
		if node != head {
			a.info[node].caseHead = head
		}
	}

	visit(start)
	stack := []astforest.NodeID{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if a.isCase(node) && node != head {
			nestedFollow := a.GetCondFollow(node)
			if nestedFollow != astforest.Invalid && a.getTravType(nestedFollow) != DFSCase && nestedFollow != follow {
				visit(nestedFollow)
				stack = append(stack, nestedFollow)
			}
			continue
		}

		for _, succ := range a.successors(node) {
			if !a.isBackEdge(node, succ) && a.getTravType(succ) != DFSCase && succ != follow {
				visit(succ)
				stack = append(stack, succ)
			}
		}
	}
}

// unTraverse resets every node's traversal flag, so a later
// StructureCFG call (or a diagnostic walk) starts from Untraversed.
func (a *Analyzer) unTraverse() {
	for i := range a.info {
		a.info[i].travType = Untraversed
	}
}
