// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expr implements the register-transfer expression IR: a tagged
// tree of operators with up to three children, interned in an arena so
// that structural equality reduces to an index comparison.
//
// Only the properties structuring actually needs are exercised here:
// equality, the SSA subscript operator, and a family of "isX" predicates.
// Constant folding and canonicalization are assumed to have already run
// in an earlier pass and are treated as a black box by this package.
package expr

import "fmt"

// Operator discriminates the kind of an Expr node. The arity of a node is
// implied entirely by its Operator.
type Operator int

const (
	OpInvalid Operator = iota

	// Arithmetic
	OpPlus
	OpMinus
	OpMul
	OpDiv
	OpMod
	OpNeg

	// Logical
	OpAnd
	OpOr
	OpNot

	// Comparison
	OpEquals
	OpNotEqual
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq

	// Bitwise
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShiftL
	OpShiftR

	// Addressing / storage accessors
	OpRegOf  // register access, one child (register number/expr)
	OpMemOf  // memory access, one child (address expr)
	OpAddrOf // address-of, one child

	// SSA
	OpSubscript // SSA reference: one child (base expr) plus a defining-statement link

	// Typed wrapper
	OpTypedExp // one child, carries a type annotation

	// Constants
	OpIntConst
	OpLongConst
	OpFloatConst
	OpStrConst
	OpFuncConst // function-pointer constant

	// Terminals
	OpPC       // %pc, the current program counter
	OpFlagBit  // a condition-flag location
	OpWildcard // matches anything; used by pattern-search only

	// Representational
	OpList    // argument/definition list element chain, two children (head, rest)
	OpMisc    // opaque representational operator with up to three children
	opNumKind          // sentinel, not a real operator
)

// arity returns the number of children implied by op.
func arity(op Operator) int {
	switch op {
	case OpInvalid, OpIntConst, OpLongConst, OpFloatConst, OpStrConst, OpFuncConst,
		OpPC, OpFlagBit, OpWildcard:
		return 0
	case OpNeg, OpNot, OpBitNot, OpRegOf, OpMemOf, OpAddrOf, OpSubscript, OpTypedExp:
		return 1
	case OpPlus, OpMinus, OpMul, OpDiv, OpMod, OpAnd, OpOr, OpEquals, OpNotEqual,
		OpLess, OpLessEq, OpGreater, OpGreaterEq, OpBitAnd, OpBitOr, OpBitXor,
		OpShiftL, OpShiftR, OpList:
		return 2
	case OpMisc:
		return 3
	default:
		return 0
	}
}

// Type is a minimal type tag carried by constant expressions. Full type
// analysis lives outside this package's scope; this is just enough to
// distinguish constant kinds for printing and for the variadic-argument
// expander in package callsite.
type Type int

const (
	TypeUnknown Type = iota
	TypeInt
	TypeLong
	TypeFloat
	TypeString
	TypeFuncPtr
	TypePointer
)

// Const is the payload carried by a constant-operator node.
type Const struct {
	Type  Type
	Int   int64
	Float float64
	Str   string
}

// StmtRef is the defining statement of a subscript (SSA reference) node.
// It is opaque to this package — expr never inspects statements, it only
// carries the link so that package stmt and package structure can chase
// it. A nil StmtRef means "implicit" (the value is live on entry, with no
// explicit defining statement in this procedure).
type StmtRef interface{}

// ref is an index into an Arena's node table.
type ref int32

// invalidRef marks "no child"/"no such expression".
const invalidRef ref = -1

// node is one interned entry in an Arena.
type node struct {
	op       Operator
	kids     [3]ref
	constant Const
	def      StmtRef // only meaningful for OpSubscript
}

// Arena interns Expr nodes keyed by (operator, children, constant payload)
// so that structurally identical expressions share one representation and
// compare equal by index. This follows the teacher corpus's general
// preference for dense, index-addressed structures over pointer graphs
// (see DESIGN.md, ir/cfg).
type Arena struct {
	nodes []node
	index map[key]ref
}

type key struct {
	op       Operator
	kids     [3]ref
	constant Const
	def      StmtRef
}

// NewArena returns an empty, ready-to-use Arena.
func NewArena() *Arena {
	return &Arena{index: make(map[key]ref)}
}

// Expr is a handle into an Arena. The zero Expr is not valid; use one
// of the Arena constructor helpers below.
type Expr struct {
	a *Arena
	r ref
}

// Valid reports whether e refers to a real node.
func (e Expr) Valid() bool { return e.a != nil && e.r != invalidRef }

// Op returns e's operator.
func (e Expr) Op() Operator {
	if !e.Valid() {
		return OpInvalid
	}
	return e.a.nodes[e.r].op
}

// NumChildren returns how many children e has.
func (e Expr) NumChildren() int { return arity(e.Op()) }

// Child returns e's i'th child (0-based). Panics if i is out of range.
func (e Expr) Child(i int) Expr {
	n := e.a.nodes[e.r]
	if i < 0 || i >= arity(n.op) {
		panic(fmt.Sprintf("expr: child index %d out of range for op %v", i, n.op))
	}
	return Expr{a: e.a, r: n.kids[i]}
}

// ConstPayload returns the constant payload of a constant-operator node.
func (e Expr) ConstPayload() Const { return e.a.nodes[e.r].constant }

// Def returns the defining-statement link of an OpSubscript node (nil for
// an implicit/initial reference).
func (e Expr) Def() StmtRef { return e.a.nodes[e.r].def }

// Equal reports whether e and o denote the same expression. Because
// expressions are interned, this is index identity once both live in the
// same Arena; cross-arena expressions are never equal.
func (e Expr) Equal(o Expr) bool {
	return e.a == o.a && e.r == o.r
}

// Less imposes a total order over expressions in the same arena, used by
// anything that needs canonical ordering (e.g. sorting case arms by
// expression for deterministic dumps). Cross-arena expressions order by
// arena pointer identity — acceptable since structuring only ever
// compares expressions that came from one procedure's arena.
func (e Expr) Less(o Expr) bool {
	if e.a != o.a {
		return fmt.Sprintf("%p", e.a) < fmt.Sprintf("%p", o.a)
	}
	return e.r < o.r
}

func (a *Arena) intern(n node) ref {
	k := key{op: n.op, kids: n.kids, constant: n.constant, def: n.def}
	if r, ok := a.index[k]; ok {
		return r
	}
	r := ref(len(a.nodes))
	a.nodes = append(a.nodes, n)
	a.index[k] = r
	return r
}

func (a *Arena) leaf(op Operator, c Const) Expr {
	return Expr{a: a, r: a.intern(node{op: op, kids: [3]ref{invalidRef, invalidRef, invalidRef}, constant: c})}
}

func (a *Arena) unary(op Operator, x Expr) Expr {
	return Expr{a: a, r: a.intern(node{op: op, kids: [3]ref{x.r, invalidRef, invalidRef}})}
}

func (a *Arena) binary(op Operator, x, y Expr) Expr {
	return Expr{a: a, r: a.intern(node{op: op, kids: [3]ref{x.r, y.r, invalidRef}})}
}

// IntConst, LongConst, FloatConst, StrConst, FuncConst build constant leaves.
func (a *Arena) IntConst(v int64) Expr   { return a.leaf(OpIntConst, Const{Type: TypeInt, Int: v}) }
func (a *Arena) LongConst(v int64) Expr  { return a.leaf(OpLongConst, Const{Type: TypeLong, Int: v}) }
func (a *Arena) FloatConst(v float64) Expr {
	return a.leaf(OpFloatConst, Const{Type: TypeFloat, Float: v})
}
func (a *Arena) StrConst(s string) Expr {
	return a.leaf(OpStrConst, Const{Type: TypeString, Str: s})
}
func (a *Arena) FuncConst(name string) Expr {
	return a.leaf(OpFuncConst, Const{Type: TypeFuncPtr, Str: name})
}

// Terminal builds a terminal node (%pc, a flag bit, or the wildcard).
func (a *Arena) Terminal(op Operator) Expr {
	switch op {
	case OpPC, OpFlagBit, OpWildcard:
		return a.leaf(op, Const{})
	default:
		panic("expr: not a terminal operator")
	}
}

// RegOf, MemOf, AddrOf, Neg, Not, BitNot build unary nodes.
func (a *Arena) RegOf(x Expr) Expr  { return a.unary(OpRegOf, x) }
func (a *Arena) MemOf(x Expr) Expr  { return a.unary(OpMemOf, x) }
func (a *Arena) AddrOf(x Expr) Expr { return a.unary(OpAddrOf, x) }
func (a *Arena) Neg(x Expr) Expr    { return a.unary(OpNeg, x) }
func (a *Arena) Not(x Expr) Expr    { return a.unary(OpNot, x) }
func (a *Arena) BitNot(x Expr) Expr { return a.unary(OpBitNot, x) }

// Binary builds a binary node for any of the arithmetic/logical/
// comparison/bitwise operators.
func (a *Arena) Binary(op Operator, x, y Expr) Expr {
	if arity(op) != 2 {
		panic(fmt.Sprintf("expr: %v is not a binary operator", op))
	}
	return a.binary(op, x, y)
}

// Subscript builds an SSA reference: base{def}. def may be nil, meaning
// the reference is implicit (live-in with no defining statement in this
// procedure).
func (a *Arena) Subscript(base Expr, def StmtRef) Expr {
	return Expr{a: a, r: a.intern(node{op: OpSubscript, kids: [3]ref{base.r, invalidRef, invalidRef}, def: def})}
}

// TypedExp wraps x with a type annotation; the annotation itself is
// opaque to this package (type analysis is out of scope).
func (a *Arena) TypedExp(x Expr, t Type) Expr {
	return Expr{a: a, r: a.intern(node{op: OpTypedExp, kids: [3]ref{x.r, invalidRef, invalidRef}, constant: Const{Type: t}})}
}

// --- isX predicates -------------------------------------------------

func (e Expr) IsConst() bool {
	switch e.Op() {
	case OpIntConst, OpLongConst, OpFloatConst, OpStrConst, OpFuncConst:
		return true
	}
	return false
}

func (e Expr) IsStrConst() bool  { return e.Op() == OpStrConst }
func (e Expr) IsSubscript() bool { return e.Op() == OpSubscript }
func (e Expr) IsMemOf() bool     { return e.Op() == OpMemOf }
func (e Expr) IsAddrOf() bool    { return e.Op() == OpAddrOf }
func (e Expr) IsRegOf() bool     { return e.Op() == OpRegOf }
func (e Expr) IsWildcard() bool  { return e.Op() == OpWildcard }
func (e Expr) IsTerminal() bool {
	switch e.Op() {
	case OpPC, OpFlagBit, OpWildcard:
		return true
	}
	return false
}

// String renders a minimal debug form; full expression printing is out
// of this package's scope (owned by the emitter), but a concise
// rendering is needed by the dot dump and by log messages.
func (e Expr) String() string {
	if !e.Valid() {
		return "<invalid>"
	}
	n := e.a.nodes[e.r]
	switch n.op {
	case OpIntConst:
		return fmt.Sprintf("%d", n.constant.Int)
	case OpLongConst:
		return fmt.Sprintf("%dL", n.constant.Int)
	case OpFloatConst:
		return fmt.Sprintf("%g", n.constant.Float)
	case OpStrConst:
		return fmt.Sprintf("%q", n.constant.Str)
	case OpFuncConst:
		return n.constant.Str
	case OpPC:
		return "%pc"
	case OpFlagBit:
		return "%flags"
	case OpWildcard:
		return "_"
	case OpSubscript:
		return fmt.Sprintf("%s{%v}", e.Child(0), n.def)
	case OpMemOf:
		return fmt.Sprintf("m[%s]", e.Child(0))
	case OpRegOf:
		return fmt.Sprintf("r[%s]", e.Child(0))
	case OpAddrOf:
		return fmt.Sprintf("a[%s]", e.Child(0))
	case OpNeg:
		return fmt.Sprintf("-%s", e.Child(0))
	case OpNot:
		return fmt.Sprintf("!%s", e.Child(0))
	default:
		if arity(n.op) == 2 {
			return fmt.Sprintf("(%s %s %s)", e.Child(0), opSymbol(n.op), e.Child(1))
		}
		return fmt.Sprintf("<op%d>", n.op)
	}
}

func opSymbol(op Operator) string {
	switch op {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpEquals:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShiftL:
		return "<<"
	case OpShiftR:
		return ">>"
	default:
		return "?"
	}
}
