// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package callsite

import (
	"testing"

	"github.com/godoctor/flowstruct/diag"
	"github.com/godoctor/flowstruct/ir/cfg"
	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

func TestPromoteIndirectCallDirectIsNoop(t *testing.T) {
	c := stmt.NewCall(0, stmt.CallDest{Direct: "f"})
	if PromoteIndirectCall(c, nil, expr.NewArena(), diag.NewLog(), nil) {
		t.Fatalf("expected no promotion for an already-direct call")
	}
}

func TestPromoteIndirectCallPeelsSubscriptMemOfAddrOf(t *testing.T) {
	arena := expr.NewArena()
	fn := arena.FuncConst("handler")

	// a vtable-style load: *(&fn)[def]
	computed := arena.Subscript(arena.MemOf(arena.AddrOf(fn)), nil)
	c := stmt.NewCall(0, stmt.CallDest{Computed: computed})

	if !PromoteIndirectCall(c, nil, arena, diag.NewLog(), nil) {
		t.Fatalf("expected promotion to succeed")
	}
	if c.Dest.IsComputed() {
		t.Fatalf("call should now be direct")
	}
	if c.Dest.Direct != "handler" {
		t.Errorf("Dest.Direct = %q, want %q", c.Dest.Direct, "handler")
	}
}

func TestPromoteIndirectCallFailsOnNonFuncLeaf(t *testing.T) {
	arena := expr.NewArena()
	computed := arena.MemOf(arena.IntConst(4))
	c := stmt.NewCall(0, stmt.CallDest{Computed: computed})

	if PromoteIndirectCall(c, nil, arena, diag.NewLog(), nil) {
		t.Fatalf("expected promotion to fail when the peeled leaf is not a function constant")
	}
	if !c.Dest.IsComputed() {
		t.Fatalf("call should remain computed on failure")
	}
}

func TestPromoteIndirectCallFailsOnEmptyFuncName(t *testing.T) {
	arena := expr.NewArena()
	computed := arena.RegOf(arena.FuncConst(""))
	c := stmt.NewCall(0, stmt.CallDest{Computed: computed})

	if PromoteIndirectCall(c, nil, arena, diag.NewLog(), nil) {
		t.Fatalf("expected promotion to fail on an empty function name")
	}
}

func TestPromoteIndirectCallDowngradesBlockKindRebuildsArgsAndSchedulesFixup(t *testing.T) {
	arena := expr.NewArena()
	fn := arena.FuncConst("handler")
	computed := arena.Subscript(fn, nil)

	c := stmt.NewCall(0, stmt.CallDest{Computed: computed})
	locA := arena.RegOf(arena.IntConst(1))
	c.Signature = &stmt.Signature{Params: []expr.Expr{locA}}

	g := cfg.NewProcCFG()
	g.AddBlock(cfg.KindCompCall, []stmt.Stmt{c})
	bb := g.Block(0)

	fixups := &FixupQueue{}
	if !PromoteIndirectCall(c, bb, arena, diag.NewLog(), fixups) {
		t.Fatalf("expected promotion to succeed")
	}

	if bb.Kind != cfg.KindCall {
		t.Errorf("bb.Kind = %v, want KindCall after promotion", bb.Kind)
	}
	if len(c.Arguments) != 1 || !c.Arguments[0].Lhs.Equal(locA) {
		t.Fatalf("expected the argument list rebuilt from the resolved signature, got %v", c.Arguments)
	}
	if !fixups.CallAndPhi {
		t.Errorf("expected a whole-procedure call-and-phi fix-up to be scheduled")
	}
}

func TestPromoteIndirectCallLeavesNonComputedCallBlockKindAlone(t *testing.T) {
	arena := expr.NewArena()
	fn := arena.FuncConst("handler")
	computed := arena.Subscript(fn, nil)
	c := stmt.NewCall(0, stmt.CallDest{Computed: computed})

	g := cfg.NewProcCFG()
	g.AddBlock(cfg.KindCall, []stmt.Stmt{c})
	bb := g.Block(0)

	if !PromoteIndirectCall(c, bb, arena, diag.NewLog(), nil) {
		t.Fatalf("expected promotion to succeed")
	}
	if bb.Kind != cfg.KindCall {
		t.Errorf("bb.Kind = %v, want unchanged KindCall", bb.Kind)
	}
}
