// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/godoctor/flowstruct/ir/cfg"
	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// fixture is the on-disk JSON shape for a procedure: one entry per
// basic block, a leading statement kind (everything this tool needs
// to drive structuring is the shape of the CFG, not real operands),
// and the successor list in control-flow order.
type fixture struct {
	Blocks []fixtureBlock `json:"blocks"`
	Entry  int            `json:"entry"`
	Return int            `json:"return"` // -1 if the procedure never returns
}

type fixtureBlock struct {
	Kind  string `json:"kind"`  // "fall", "oneway", "twoway", "nway", "ret", "call"
	Succs []int  `json:"succs"`
	Arms  int    `json:"arms"` // for "nway": number of case arms, not counting the default
}

var blockKinds = map[string]cfg.BlockKind{
	"fall":   cfg.KindFall,
	"oneway": cfg.KindOneWay,
	"twoway": cfg.KindTwoWay,
	"nway":   cfg.KindNWay,
	"ret":    cfg.KindRet,
	"call":   cfg.KindCall,
}

// build turns a fixture into a ProcCFG, synthesizing one statement per
// block whose kind matches its BlockKind (a Branch for "twoway", a
// Case for "nway", a Return for "ret", an Assign placeholder
// otherwise) so that package structure has something to type-switch
// on. It also returns the expression arena the synthesized statements'
// expressions were interned in, since later passes (ssaform.Simplify)
// need it to build new expressions of their own.
func build(fx fixture) (*cfg.ProcCFG, *expr.Arena, error) {
	g := cfg.NewProcCFG()
	arena := expr.NewArena()

	for i, b := range fx.Blocks {
		kind, ok := blockKinds[b.Kind]
		if !ok {
			return nil, nil, fmt.Errorf("block %d: unknown kind %q", i, b.Kind)
		}

		var stmts []stmt.Stmt
		switch kind {
		case cfg.KindTwoWay:
			stmts = []stmt.Stmt{stmt.NewBranch(i, arena.IntConst(1))}
		case cfg.KindNWay:
			info := &stmt.SwitchInfo{LowerBound: 0, Style: stmt.SwitchComputed}
			stmts = []stmt.Stmt{stmt.NewCase(i, info)}
		case cfg.KindRet:
			stmts = []stmt.Stmt{stmt.NewReturn(i)}
		default:
			if len(b.Succs) == 0 {
				stmts = nil // empty pass-through block
			} else {
				loc := arena.RegOf(arena.IntConst(int64(i)))
				stmts = []stmt.Stmt{stmt.NewAssign(i, loc, loc, expr.TypeUnknown)}
			}
		}

		g.AddBlock(kind, stmts)
	}

	for i, b := range fx.Blocks {
		for _, succ := range b.Succs {
			g.AddEdge(i, succ)
		}
	}

	g.SetEntry(fx.Entry)
	if fx.Return >= 0 {
		g.SetReturn(fx.Return)
	}

	return g, arena, nil
}
