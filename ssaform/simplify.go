// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ssaform simplifies a procedure's φ-functions once argument
// reconciliation and structuring have stabilized the IR, following
// PhiAssign::simplify. A φ-assignment is degenerate, and can collapse
// to a plain assignment, in either of two cases:
//
//   - every incoming definition is the very same statement: the phi
//     carries no information and the value can be taken directly from
//     that one definition;
//   - every incoming definition is either this phi itself (a
//     self-referencing back edge) except for exactly one: the phi is
//     then equivalent to that one other def.
package ssaform

import (
	"github.com/godoctor/flowstruct/ir/cfg"
	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// Simplify repeatedly scans every block in g for not-yet-collapsed
// φ-assignments and collapses the degenerate ones, stopping when a
// full scan collapses nothing, and returns how many it collapsed.
// Degeneracy is judged by the identity of each phi's incoming
// definitions, which an in-place collapse does not change, so every
// degenerate phi is collapsed by the first scan and the second scan
// finds nothing more. arena is the expression arena that owns phi.Lhs
// and every other expression in g, needed to build the collapsed
// assignment's subscript reference.
func Simplify(g *cfg.ProcCFG, arena *expr.Arena) int {
	total := 0
	for {
		collapsed := 0
		for _, bb := range g.Blocks() {
			for _, s := range bb.Stmts {
				phi, ok := s.(*stmt.PhiAssign)
				if !ok || phi.Collapsed {
					continue
				}
				if simplifyOne(phi, arena) {
					collapsed++
				}
			}
		}
		total += collapsed
		if collapsed == 0 {
			return total
		}
	}
}

// simplifyOne applies PhiAssign::simplify's two degeneracy tests to a
// single phi, collapsing it in place and reporting whether it did.
func simplifyOne(phi *stmt.PhiAssign, arena *expr.Arena) bool {
	if len(phi.Defs) == 0 {
		return false
	}

	firstDef := phi.Defs[0].Def
	allSame := true
	for _, d := range phi.Defs {
		if d.Def != firstDef {
			allSame = false
			break
		}
	}
	if allSame {
		phi.ConvertToAssign(arena.Subscript(phi.Lhs, firstDef))
		return true
	}

	var notThis stmt.Stmt
	seenOther := false
	onlyOneNotThis := true
	for _, d := range phi.Defs {
		if d.Def != nil && !stmt.IsImplicit(d.Def) && stmt.IsPhi(d.Def) && d.Def == stmt.Stmt(phi) {
			continue // a self-referencing back edge: ok
		}
		if !seenOther {
			notThis = d.Def
			seenOther = true
		} else if d.Def != notThis {
			onlyOneNotThis = false
			break
		}
	}

	if onlyOneNotThis && seenOther {
		phi.ConvertToAssign(arena.Subscript(phi.Lhs, notThis))
		return true
	}
	return false
}
