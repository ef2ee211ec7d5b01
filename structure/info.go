// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package structure implements control-flow structuring: it recovers
// high-level loops, conditionals and switch statements from a
// reducible (or mostly-reducible) statement-level CFG, and classifies
// the jumps that can't be expressed that way. The algorithm is lifted
// from Doug Simon's honours thesis, by way of Boomerang's
// ControlFlowAnalyzer, generalized here from a single global analyzer
// over go/ast.Stmt nodes to a per-procedure Analyzer over
// astforest.NodeID.
package structure

import "github.com/godoctor/flowstruct/astforest"

// info holds everything the analyzer tracks about one node. It is kept
// as a dense slice indexed by astforest.NodeID rather than a map, per
// the arena-wide "dense, index-addressed" convention, and owned
// exclusively by the Analyzer that built it — nothing outside this
// package ever sees *info or mutates it directly.
type info struct {
	travType TravType

	preOrderID     int
	postOrderID    int
	revPreOrderID  int
	revPostOrderID int

	postOrderIndex    int // index into Analyzer.postOrdering, or -1
	revPostOrderIndex int // index into Analyzer.revPostOrdering, or -1

	structType   StructType
	unstructType UnstructType
	condType     CondType
	loopType     LoopType

	immPDom   astforest.NodeID
	loopHead  astforest.NodeID
	caseHead  astforest.NodeID
	condFollow astforest.NodeID
	loopFollow astforest.NodeID
	latchNode astforest.NodeID
}

func newInfo() info {
	return info{
		structType:   StructSeq,
		unstructType: Structured,
		condType:     CondInvalid,
		loopType:     LoopInvalid,
		immPDom:      astforest.Invalid,
		loopHead:     astforest.Invalid,
		caseHead:     astforest.Invalid,
		condFollow:   astforest.Invalid,
		loopFollow:   astforest.Invalid,
		latchNode:    astforest.Invalid,

		postOrderIndex:    -1,
		revPostOrderIndex: -1,
	}
}
