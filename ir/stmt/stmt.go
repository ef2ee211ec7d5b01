// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stmt implements the register-transfer statement IR: assignment,
// φ-assignment, implicit assignment, branch, call, case (switch), return,
// and goto. Discrimination between kinds follows the same type-switch
// idiom extras/cfg/cfg.go uses over go/ast.Stmt, applied to this
// package's own Stmt interface instead.
package stmt

import "github.com/godoctor/flowstruct/ir/expr"

// Stmt is implemented by every statement variant. Every Stmt has a stable,
// per-procedure sequence number and the index of its enclosing basic
// block (-1 for synthetic or test statements not attached to a block).
type Stmt interface {
	// Number is this statement's sequence number, assigned once per
	// procedure and stable for the lifetime of the statement.
	Number() int

	// Block returns the index of the enclosing basic block, or -1 if
	// the statement is not (yet) attached to a block.
	Block() int

	isStmt()
}

// common is embedded by every concrete statement type.
type common struct {
	num   int
	block int
}

func (c *common) Number() int { return c.num }
func (c *common) Block() int  { return c.block }
func (c *common) isStmt()     {}

// SetBlock attaches s to basic block index bb. Called by the CFG builder
// when a statement is appended to a block.
func SetBlock(s Stmt, bb int) {
	switch v := s.(type) {
	case *Assign:
		v.block = bb
	case *PhiAssign:
		v.block = bb
	case *ImplicitAssign:
		v.block = bb
	case *Branch:
		v.block = bb
	case *Call:
		v.block = bb
	case *Case:
		v.block = bb
	case *Return:
		v.block = bb
	case *Goto:
		v.block = bb
	}
}

// AssignKind distinguishes the three assignment-shaped statements for
// callers that want to treat them uniformly (e.g. the φ-simplifier,
// which converts a PhiAssign into an Assign in place).
type AssignKind int

const (
	OrdinaryAssign AssignKind = iota
	PhiAssignKind
	ImplicitAssignKind
)

// Assign is an ordinary assignment: Lhs := Rhs.
type Assign struct {
	common
	Lhs  expr.Expr
	Rhs  expr.Expr
	Type expr.Type
}

func NewAssign(num int, lhs, rhs expr.Expr, t expr.Type) *Assign {
	return &Assign{common: common{num: num, block: -1}, Lhs: lhs, Rhs: rhs, Type: t}
}

func (a *Assign) Kind() AssignKind { return OrdinaryAssign }

// PhiDef is one incoming definition of a φ-function: the predecessor
// block it flows from, and the statement that defines the value on that
// edge (nil means implicit / live-in).
type PhiDef struct {
	PredBlock int
	Def       Stmt
}

// PhiAssign is an SSA φ-function: Lhs := phi(defs...). One entry exists
// per predecessor of the enclosing block (the "one entry per predecessor"
// invariant in spec.md §3).
//
// Once a simplification pass proves every incoming def is equivalent,
// the PhiAssign collapses in place to an ordinary assignment rather
// than being replaced by a new *Assign: anything elsewhere holding
// this Stmt as a StmtRef (an expr.Subscript's Def(), a PhiDef.Def)
// keeps pointing at the same, still-valid statement.
type PhiAssign struct {
	common
	Lhs  expr.Expr
	Defs []PhiDef
	Type expr.Type

	Collapsed bool      // true once simplification has converted this to a plain assignment
	Rhs       expr.Expr // valid only when Collapsed
}

func NewPhiAssign(num int, lhs expr.Expr, t expr.Type) *PhiAssign {
	return &PhiAssign{common: common{num: num, block: -1}, Lhs: lhs, Type: t}
}

// Kind reports PhiAssignKind until the phi collapses, at which point
// it reports OrdinaryAssign.
func (p *PhiAssign) Kind() AssignKind {
	if p.Collapsed {
		return OrdinaryAssign
	}
	return PhiAssignKind
}

// AddDef appends one incoming definition.
func (p *PhiAssign) AddDef(predBlock int, def Stmt) {
	p.Defs = append(p.Defs, PhiDef{PredBlock: predBlock, Def: def})
}

// ConvertToAssign collapses the phi to Lhs := rhs in place.
func (p *PhiAssign) ConvertToAssign(rhs expr.Expr) {
	p.Collapsed = true
	p.Rhs = rhs
}

// ImplicitAssign stands for a value that is live on entry to the
// procedure with no explicit defining statement: Lhs := <live-in>.
type ImplicitAssign struct {
	common
	Lhs  expr.Expr
	Type expr.Type
}

func NewImplicitAssign(num int, lhs expr.Expr, t expr.Type) *ImplicitAssign {
	return &ImplicitAssign{common: common{num: num, block: -1}, Lhs: lhs, Type: t}
}

func (a *ImplicitAssign) Kind() AssignKind { return ImplicitAssignKind }

// BranchSlot indexes a Branch's two successors. THEN is always slot 0,
// ELSE is always slot 1, matching spec.md §3's StmtASTNode ordering
// invariant.
type BranchSlot int

const (
	BThen BranchSlot = 0
	BElse BranchSlot = 1
)

// Branch is a two-way conditional jump.
type Branch struct {
	common
	Cond expr.Expr
}

func NewBranch(num int, cond expr.Expr) *Branch {
	return &Branch{common: common{num: num, block: -1}, Cond: cond}
}

// CallDest is a call's destination: either a resolved procedure (Direct
// != "") or a computed expression (Computed).
type CallDest struct {
	Direct   string // resolved callee name/identity; empty if computed
	Computed expr.Expr
}

func (d CallDest) IsComputed() bool { return d.Direct == "" }

// Call is a call statement with argument/define/reaching-definition
// collectors, as specified in spec.md §3.
type Call struct {
	common
	Dest      CallDest
	Arguments []*Assign // each argument is itself an assignment loc := rhs
	Defines   []*ImplicitAssign
	Reaching  *ReachingSet // the call's reaching-definition collector
	Uses      *ReachingSet // the call's use collector

	Signature       *Signature // pinned library signature, if known
	ForcedSignature *Signature // user-supplied signature override, if the callee can't be analyzed
	CalleeReturn    Stmt       // optional reference to the matched callee's return statement
	Childless       bool       // callee unknown/library-unaware/still-recursive: may define everything
}

func NewCall(num int, dest CallDest) *Call {
	return &Call{common: common{num: num, block: -1}, Dest: dest}
}

// Signature is the narrow slice of a callee's signature that the
// reconciler needs: its ordered parameter locations and whether it is
// variadic ("has ellipsis").
type Signature struct {
	Params      []expr.Expr
	ParamTypes  []expr.Type // parallel to Params; TypeUnknown if not tracked
	HasEllipsis bool
	IsLibrary   bool
}

func (s *Signature) AddParam(loc expr.Expr) {
	s.Params = append(s.Params, loc)
	s.ParamTypes = append(s.ParamTypes, expr.TypeUnknown)
}

// AddTypedParam appends a parameter location with a known type, as
// produced by variadic format-string expansion.
func (s *Signature) AddTypedParam(loc expr.Expr, ty expr.Type) {
	s.Params = append(s.Params, loc)
	s.ParamTypes = append(s.ParamTypes, ty)
}

// SwitchStyle distinguishes how a Case statement's successor keys are
// derived from the underlying jump table.
type SwitchStyle int

const (
	SwitchComputed SwitchStyle = iota // key = lowerBound + armIndex
	SwitchFortran                     // key = table[armIndex] (read through a SwitchTable)
)

// SwitchInfo describes an n-way switch's table.
type SwitchInfo struct {
	LowerBound int
	Style      SwitchStyle
	Table      SwitchTable // only consulted when Style == SwitchFortran
}

// SwitchTable is the narrow collaborator interface for reading Fortran-
// style switch table entries through the binary image, rather than a raw
// pointer into program memory (spec.md §9, Open Question 3).
type SwitchTable interface {
	TableEntry(armIndex int) int
}

// Case is an n-way switch statement: one successor per case arm, plus a
// trailing default successor.
type Case struct {
	common
	Switch  *SwitchInfo
	HasDefault bool
}

func NewCase(num int, info *SwitchInfo) *Case {
	return &Case{common: common{num: num, block: -1}, Switch: info}
}

// Return is a procedure return.
type Return struct {
	common
	Results []*Assign
}

func NewReturn(num int) *Return {
	return &Return{common: common{num: num, block: -1}}
}

// Goto is an unconditional jump, used for irreducible/unstructured edges
// that survive structuring.
type Goto struct {
	common
}

func NewGoto(num int) *Goto {
	return &Goto{common: common{num: num, block: -1}}
}

// LhsOf returns the location a definition assigns, for the statement
// kinds that have one. It reports false for statements with no LHS
// (Branch, Call, Case, Return, Goto).
func LhsOf(s Stmt) (expr.Expr, bool) {
	switch v := s.(type) {
	case *Assign:
		return v.Lhs, true
	case *PhiAssign:
		return v.Lhs, true
	case *ImplicitAssign:
		return v.Lhs, true
	default:
		return expr.Expr{}, false
	}
}

// --- isX predicates, mirroring original Statement::isBranch()/isCall()/isCase() ---

func IsBranch(s Stmt) bool { _, ok := s.(*Branch); return ok }
func IsCall(s Stmt) bool   { _, ok := s.(*Call); return ok }
func IsCase(s Stmt) bool   { _, ok := s.(*Case); return ok }
func IsReturn(s Stmt) bool { _, ok := s.(*Return); return ok }
func IsGoto(s Stmt) bool   { _, ok := s.(*Goto); return ok }
func IsPhi(s Stmt) bool {
	p, ok := s.(*PhiAssign)
	return ok && !p.Collapsed
}
func IsImplicit(s Stmt) bool {
	_, ok := s.(*ImplicitAssign)
	return ok
}

