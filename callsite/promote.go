// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package callsite

import (
	"github.com/godoctor/flowstruct/diag"
	"github.com/godoctor/flowstruct/ir/cfg"
	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// FixupQueue collects procedure-wide follow-up passes scheduled by a
// single call site's promotion. Promoting one indirect call can
// change the reaching definitions another call site sees and can make
// a phi that referenced the old computed destination degenerate, so
// the fix-up is whole-procedure, not local to c — the caller (the
// pass driver running over every call in the procedure) is expected
// to re-run callsite.Reconcile over every call and ssaform.Simplify
// once per procedure after draining a non-empty queue.
type FixupQueue struct {
	CallAndPhi bool
}

// ScheduleCallAndPhiFixup marks that a whole-procedure call-argument
// and phi-simplification pass is needed.
func (q *FixupQueue) ScheduleCallAndPhiFixup() { q.CallAndPhi = true }

// PromoteIndirectCall attempts to turn a computed call (one whose
// destination is an expression rather than a resolved name) into a
// direct one, by peeling through the layers a computed destination
// typically accumulates on its way from a jump-table or vtable load —
// subscripts (SSA renaming), a memory dereference, and a leading
// address-of — down to a function-constant leaf. It reports whether
// it succeeded.
//
// On success, following addSigParam, promotion is more than swapping
// in the resolved name: bb (c's enclosing block) is downgraded from a
// computed-call kind to an ordinary call, c's argument list is rebuilt
// against whatever source of truth is now available for the resolved
// callee (via Reconcile), and a whole-procedure call-and-phi fix-up is
// scheduled on fixups, since other call sites' reaching definitions
// and phis may have depended on this call still being computed. bb and
// fixups may be nil (e.g. in isolated tests of the peeling logic
// alone); log must not be nil.
func PromoteIndirectCall(c *stmt.Call, bb *cfg.BasicBlock, arena *expr.Arena, log *diag.Log, fixups *FixupQueue) bool {
	if !c.Dest.IsComputed() {
		return false
	}

	e := c.Dest.Computed
	for e.IsSubscript() || e.IsAddrOf() || e.IsMemOf() || e.IsRegOf() {
		if e.NumChildren() == 0 {
			return false
		}
		e = e.Child(0)
	}

	if e.Op() != expr.OpFuncConst {
		return false
	}
	fn := e.ConstPayload().Str
	if fn == "" {
		return false
	}

	c.Dest = stmt.CallDest{Direct: fn}

	if bb != nil && bb.Kind == cfg.KindCompCall {
		bb.Kind = cfg.KindCall
	}

	Reconcile(c, arena, log)

	if fixups != nil {
		fixups.ScheduleCallAndPhiFixup()
	}

	return true
}
