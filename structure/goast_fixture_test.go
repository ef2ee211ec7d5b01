// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/godoctor/flowstruct/ir/cfg"
)

// countIfElseArms parses src (expected to hold exactly one function with a
// single top-level if/else) and reports whether it found one, following
// extras/cfg/cfg_test.go's own technique of driving CFG test fixtures off
// a real parsed Go snippet rather than a hand-rolled shape description.
// astutil.Apply walks the tree instead of ast.Inspect so the one real
// branch (an *ast.IfStmt with a non-nil Else) is found regardless of how
// deeply the parser nests the enclosing block.
func countIfElseArms(t *testing.T, src string) (found bool) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "fixture.go", "package p\n"+src, 0)
	if err != nil {
		t.Fatalf("parsing fixture source: %v", err)
	}

	astutil.Apply(f, func(c *astutil.Cursor) bool {
		if ifStmt, ok := c.Node().(*ast.IfStmt); ok && ifStmt.Else != nil {
			found = true
		}
		return true
	}, nil)
	return found
}

// TestGoSourceIfElseStructuresAsCondIfThenElse builds a diamond CFG whose
// shape is confirmed, via astutil, to match a real if/else Go function,
// then checks the structurer recovers CondIfThenElse for it - the same
// assertion as TestDiamondIf, reached from parsed source instead of a
// hand-built blockSpec list.
func TestGoSourceIfElseStructuresAsCondIfThenElse(t *testing.T) {
	src := `
func foo(c int) int {
	if c > 0 {
		return 1
	} else {
		return 2
	}
}`
	if !countIfElseArms(t, src) {
		t.Fatalf("fixture source does not contain the expected if/else")
	}

	g := buildCFG(t, []blockSpec{
		{cfg.KindTwoWay, []int{1, 2}},
		{cfg.KindOneWay, []int{3}},
		{cfg.KindOneWay, []int{3}},
		{cfg.KindRet, nil},
	}, 0, 3)

	a := newStrictAnalyzer()
	f := a.StructureCFG(g)
	head := f.EntryNode(g)

	if got := a.GetCondType(head); got != CondIfThenElse {
		t.Fatalf("head CondType = %s, want CondIfThenElse", got)
	}
}
