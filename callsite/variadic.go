// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package callsite

import (
	"strings"

	"github.com/godoctor/flowstruct/ir/expr"
	"github.com/godoctor/flowstruct/ir/stmt"
)

// ExpandVariadic parses a printf/scanf-style format string and grows
// c's forced signature with one parameter per conversion specifier it
// finds, following CallStatement::ellipsisProcessing's format-string
// grammar: flags, width/precision (including the '*' extra-argument
// form), an optional h/l/L size prefix, and a conversion character.
// calleeName controls whether arguments are scanf-style (pointers to
// the destination) or printf-style (values).
//
// Expanded parameters have no real storage location yet (this package
// has no calling-convention model to place them in), so each gets a
// distinct synthetic register location, arena.RegOf(arena.IntConst(i)),
// that is at least stable and distinguishable across parameters of
// the same call; a later pass that does have a calling convention is
// expected to replace these.
//
// It returns the number of parameters appended. If c has no
// ForcedSignature yet, ExpandVariadic creates one.
func ExpandVariadic(c *stmt.Call, arena *expr.Arena, calleeName, formatStr string) int {
	if c.ForcedSignature == nil {
		c.ForcedSignature = &stmt.Signature{}
	}
	sig := c.ForcedSignature
	isScanf := strings.Contains(calleeName, "scanf")

	added := 0
	nextSlot := func(ty expr.Type) {
		if isScanf {
			ty = expr.TypePointer
		}
		idx := len(sig.Params)
		sig.AddTypedParam(arena.RegOf(arena.IntConst(int64(idx))), ty)
		added++
	}

	runes := []rune(formatStr)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++

		veryLong := false
		var ch rune
	scanSize:
		for i < len(runes) {
			ch = runes[i]
			i++
			switch {
			case ch == '*':
				nextSlot(expr.TypeInt)
				continue scanSize
			case ch == '-' || ch == '+' || ch == '#' || ch == ' ' || ch == '.':
				continue scanSize
			case ch == 'h':
				continue scanSize
			case ch == 'l':
				if i < len(runes) && runes[i] == 'l' {
					i++
					veryLong = true
				}
				continue scanSize
			case ch == 'L':
				veryLong = true
				continue scanSize
			case ch >= '0' && ch <= '9':
				continue scanSize
			default:
				break scanSize
			}
		}

		switch ch {
		case 'd', 'i':
			nextSlot(intType(veryLong))
		case 'u', 'x', 'X', 'o':
			nextSlot(expr.TypeInt)
		case 'f', 'g', 'G', 'e', 'E':
			nextSlot(expr.TypeFloat)
		case 's':
			nextSlot(expr.TypeString)
		case 'c':
			nextSlot(expr.TypeInt)
		case 'p':
			nextSlot(expr.TypePointer)
		case '%':
			// literal %%, consumes no argument
		}
		i-- // i is past the conversion character; let the loop's i++ land right after it
	}

	sig.HasEllipsis = false // expansion done; don't redo it for this call
	return added
}

func intType(veryLong bool) expr.Type {
	if veryLong {
		return expr.TypeLong
	}
	return expr.TypeInt
}

// FormatArgIndex picks out, for a printf/scanf-family call, which
// argument holds the format string: argument 0 for printf/scanf,
// argument 1 for sprintf/fprintf/sscanf, or (as a fallback for an
// unrecognized variadic callee) the last string-constant argument.
func FormatArgIndex(calleeName string, args []*stmt.Assign) (int, bool) {
	switch calleeName {
	case "printf", "scanf":
		return 0, len(args) > 0
	case "sprintf", "fprintf", "sscanf":
		return 1, len(args) > 1
	}
	for i := len(args) - 1; i >= 0; i-- {
		if args[i].Rhs.IsStrConst() {
			return i, true
		}
	}
	return 0, false
}
