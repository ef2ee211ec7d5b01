// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stmt

import (
	"testing"

	"github.com/godoctor/flowstruct/ir/expr"
)

func TestReachingSetAddContainsLen(t *testing.T) {
	arena := expr.NewArena()
	a := NewAssign(0, arena.RegOf(arena.IntConst(1)), arena.IntConst(1), expr.TypeInt)
	b := NewAssign(1, arena.RegOf(arena.IntConst(2)), arena.IntConst(2), expr.TypeInt)

	r := NewReachingSet()
	r.Add(a)
	r.Add(b)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if !r.Contains(a) || !r.Contains(b) {
		t.Fatalf("expected both added statements to be contained")
	}
}

func TestReachingSetRemoveClearsMembership(t *testing.T) {
	arena := expr.NewArena()
	a := NewAssign(0, arena.RegOf(arena.IntConst(1)), arena.IntConst(1), expr.TypeInt)
	b := NewAssign(1, arena.RegOf(arena.IntConst(2)), arena.IntConst(2), expr.TypeInt)

	r := NewReachingSet()
	idxA := r.Add(a)
	r.Add(b)
	r.Remove(idxA)

	if r.Contains(a) {
		t.Fatalf("expected a to be removed")
	}
	if !r.Contains(b) {
		t.Fatalf("expected b to remain after removing a")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestReachingSetEachVisitsInInsertionOrder(t *testing.T) {
	arena := expr.NewArena()
	a := NewAssign(0, arena.RegOf(arena.IntConst(1)), arena.IntConst(1), expr.TypeInt)
	b := NewAssign(1, arena.RegOf(arena.IntConst(2)), arena.IntConst(2), expr.TypeInt)
	c := NewAssign(2, arena.RegOf(arena.IntConst(3)), arena.IntConst(3), expr.TypeInt)

	r := NewReachingSet()
	r.Add(a)
	idxB := r.Add(b)
	r.Add(c)
	r.Remove(idxB)

	var visited []Stmt
	r.Each(func(s Stmt) { visited = append(visited, s) })

	if len(visited) != 2 || visited[0] != Stmt(a) || visited[1] != Stmt(c) {
		t.Fatalf("Each visited %v, want [a, c] skipping the removed b", visited)
	}
}
