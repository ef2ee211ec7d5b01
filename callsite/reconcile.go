// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package callsite reconciles a call statement's argument list against
// the best available description of the callee's parameters, and
// expands variadic (printf/scanf-style) calls into a fixed argument
// list, following CallStatement::updateArguments and
// CallStatement::ellipsisProcessing.
package callsite

import (
	"github.com/godoctor/flowstruct/diag"
	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// argSource picks c's source of truth for its parameter-location list,
// in order of decreasing confidence: a pinned (library) signature, a
// reference to the matched callee's own return statement, a
// user-forced signature, and finally the call's reaching-definition
// collector — whatever locations were observed flowing into the call.
func argSource(c *stmt.Call) (locs []expr.Expr, name string) {
	switch {
	case c.Signature != nil:
		return c.Signature.Params, "pinned signature"
	case c.CalleeReturn != nil:
		return calleeReturnLocs(c.CalleeReturn), "callee return"
	case c.ForcedSignature != nil:
		return c.ForcedSignature.Params, "forced signature"
	case c.Reaching != nil:
		return reachingLocs(c.Reaching), "reaching definitions"
	default:
		return nil, "none"
	}
}

func calleeReturnLocs(ret stmt.Stmt) []expr.Expr {
	r, ok := ret.(*stmt.Return)
	if !ok {
		return nil
	}
	locs := make([]expr.Expr, 0, len(r.Results))
	for _, res := range r.Results {
		locs = append(locs, res.Lhs)
	}
	return locs
}

func reachingLocs(r *stmt.ReachingSet) []expr.Expr {
	var locs []expr.Expr
	r.Each(func(def stmt.Stmt) {
		if lhs, ok := stmt.LhsOf(def); ok {
			locs = append(locs, lhs)
		}
	})
	return locs
}

// Reconcile rebuilds c's argument-assignment list to match its
// current source of truth: a source location already covered by an
// existing argument is kept as-is; a newly-appearing source location
// gets a fresh assignment loc := rhs, where rhs is the localization of
// loc (substituting the call's reaching definitions) when loc is
// renameable, or loc unchanged otherwise, following
// CallStatement.cpp's canRename/localise split; any existing argument
// whose location is no longer in the source is dropped.
//
// When no source of truth is available (a childless call with no
// reaching-definition collector populated yet), Reconcile logs a
// WARNING and leaves the argument list untouched.
func Reconcile(c *stmt.Call, arena *expr.Arena, log *diag.Log) {
	locs, source := argSource(c)
	if locs == nil {
		log.Logf(diag.WARNING, "call %d: no argument source (%s); leaving %d argument(s) unchanged",
			c.Number(), source, len(c.Arguments))
		return
	}

	kept := make([]*stmt.Assign, 0, len(locs))
	for _, loc := range locs {
		if existing := findByLhs(c.Arguments, loc); existing != nil {
			kept = append(kept, existing)
			continue
		}
		kept = append(kept, stmt.NewAssign(c.Number(), loc, localize(arena, c, loc), expr.TypeUnknown))
	}

	c.Arguments = kept
}

// renameable reports whether loc is the kind of location canRename
// accepts for localization: a register access. A memory access (a
// global or an indirect store) is never renameable, since its
// identity depends on the address expression, not a name the SSA
// subscript machinery can point a definition at.
func renameable(loc expr.Expr) bool {
	return loc.Valid() && loc.IsRegOf()
}

// localize substitutes loc with its SSA subscript against c's
// reaching-definition collector when loc is renameable, following
// CallStatement::localise: it walks c.Reaching for the definition
// whose LHS matches loc and wraps loc in that definition's subscript.
// If loc is not renameable, or no matching reaching definition is
// found, loc is returned unchanged.
func localize(arena *expr.Arena, c *stmt.Call, loc expr.Expr) expr.Expr {
	if !renameable(loc) || c.Reaching == nil {
		return loc
	}

	var def stmt.Stmt
	c.Reaching.Each(func(d stmt.Stmt) {
		if def != nil {
			return
		}
		if lhs, ok := stmt.LhsOf(d); ok && lhs.Valid() && lhs.Equal(loc) {
			def = d
		}
	})
	if def == nil {
		return loc
	}
	return arena.Subscript(loc, def)
}

func findByLhs(args []*stmt.Assign, loc expr.Expr) *stmt.Assign {
	for _, a := range args {
		if a.Lhs.Valid() && loc.Valid() && a.Lhs.Equal(loc) {
			return a
		}
	}
	return nil
}
