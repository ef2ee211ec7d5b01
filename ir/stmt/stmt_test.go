// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stmt

import (
	"testing"

	"github.com/godoctor/flowstruct/ir/expr"
)

func TestLhsOfAssignShapedStatements(t *testing.T) {
	arena := expr.NewArena()
	loc := arena.RegOf(arena.IntConst(1))

	cases := []Stmt{
		NewAssign(0, loc, arena.IntConst(1), expr.TypeInt),
		NewPhiAssign(0, loc, expr.TypeInt),
		NewImplicitAssign(0, loc, expr.TypeInt),
	}
	for _, s := range cases {
		lhs, ok := LhsOf(s)
		if !ok {
			t.Errorf("%T: LhsOf reported no lhs", s)
			continue
		}
		if !lhs.Equal(loc) {
			t.Errorf("%T: LhsOf = %v, want %v", s, lhs, loc)
		}
	}
}

func TestLhsOfStatementsWithoutALhs(t *testing.T) {
	arena := expr.NewArena()
	cases := []Stmt{
		NewBranch(0, arena.IntConst(1)),
		NewCall(0, CallDest{Direct: "f"}),
		NewCase(0, &SwitchInfo{}),
		NewReturn(0),
		NewGoto(0),
	}
	for _, s := range cases {
		if _, ok := LhsOf(s); ok {
			t.Errorf("%T: LhsOf should report false", s)
		}
	}
}

func TestIsPredicates(t *testing.T) {
	arena := expr.NewArena()
	branch := NewBranch(0, arena.IntConst(1))
	call := NewCall(0, CallDest{Direct: "f"})
	c := NewCase(0, &SwitchInfo{})
	ret := NewReturn(0)
	gotoStmt := NewGoto(0)
	implicit := NewImplicitAssign(0, arena.RegOf(arena.IntConst(1)), expr.TypeInt)

	if !IsBranch(branch) || IsBranch(call) {
		t.Errorf("IsBranch misclassified")
	}
	if !IsCall(call) || IsCall(branch) {
		t.Errorf("IsCall misclassified")
	}
	if !IsCase(c) || IsCase(call) {
		t.Errorf("IsCase misclassified")
	}
	if !IsReturn(ret) || IsReturn(call) {
		t.Errorf("IsReturn misclassified")
	}
	if !IsGoto(gotoStmt) || IsGoto(call) {
		t.Errorf("IsGoto misclassified")
	}
	if !IsImplicit(implicit) || IsImplicit(call) {
		t.Errorf("IsImplicit misclassified")
	}
}

func TestIsPhiIgnoresCollapsedPhis(t *testing.T) {
	arena := expr.NewArena()
	phi := NewPhiAssign(0, arena.RegOf(arena.IntConst(1)), expr.TypeInt)

	if !IsPhi(phi) {
		t.Fatalf("expected an uncollapsed phi to report true")
	}
	phi.ConvertToAssign(arena.IntConst(4))
	if IsPhi(phi) {
		t.Fatalf("a collapsed phi should no longer report as a phi")
	}
}

func TestPhiAssignKindTransitionsOnCollapse(t *testing.T) {
	arena := expr.NewArena()
	phi := NewPhiAssign(0, arena.RegOf(arena.IntConst(1)), expr.TypeInt)
	if phi.Kind() != PhiAssignKind {
		t.Fatalf("Kind() = %v before collapse, want PhiAssignKind", phi.Kind())
	}
	phi.ConvertToAssign(arena.IntConst(9))
	if phi.Kind() != OrdinaryAssign {
		t.Fatalf("Kind() = %v after collapse, want OrdinaryAssign", phi.Kind())
	}
	if !phi.Rhs.Equal(arena.IntConst(9)) {
		t.Errorf("collapsed phi's Rhs should hold the chosen replacement")
	}
}

func TestSetBlockAttachesEveryStatementKind(t *testing.T) {
	arena := expr.NewArena()
	loc := arena.RegOf(arena.IntConst(1))

	all := []Stmt{
		NewAssign(0, loc, loc, expr.TypeInt),
		NewPhiAssign(0, loc, expr.TypeInt),
		NewImplicitAssign(0, loc, expr.TypeInt),
		NewBranch(0, arena.IntConst(1)),
		NewCall(0, CallDest{Direct: "f"}),
		NewCase(0, &SwitchInfo{}),
		NewReturn(0),
		NewGoto(0),
	}
	for _, s := range all {
		if s.Block() != -1 {
			t.Fatalf("%T: fresh statement should start detached (Block()==-1)", s)
		}
		SetBlock(s, 3)
		if s.Block() != 3 {
			t.Errorf("%T: SetBlock did not attach, Block() = %d", s, s.Block())
		}
	}
}
