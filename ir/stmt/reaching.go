// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stmt

import "github.com/bits-and-blooms/bitset"

// ReachingSet is a dense bitset over its own insertion-ordered table of
// statements, used by Call's reaching-definition and use collectors. It follows the
// teacher's own use of github.com/bits-and-blooms/bitset for exactly
// this kind of GEN/KILL/DEF/USE membership set (extras/cfg/df.go).
type ReachingSet struct {
	bits *bitset.BitSet
	locs []Stmt // locIndex -> the statement that defines/uses that location
}

// NewReachingSet returns an empty collector.
func NewReachingSet() *ReachingSet {
	return &ReachingSet{bits: bitset.New(0)}
}

// Add records that def reaches this collector's call site, returning the
// dense index assigned to it.
func (r *ReachingSet) Add(def Stmt) int {
	idx := uint(len(r.locs))
	r.locs = append(r.locs, def)
	r.bits.Set(idx)
	return int(idx)
}

// Remove clears membership for the location previously added at idx,
// without compacting the backing slice (so earlier indices stay valid).
func (r *ReachingSet) Remove(idx int) {
	r.bits.Clear(uint(idx))
}

// Contains reports whether def is still a member of the set.
func (r *ReachingSet) Contains(def Stmt) bool {
	for i, l := range r.locs {
		if l == def && r.bits.Test(uint(i)) {
			return true
		}
	}
	return false
}

// Each calls f once per statement still in the set, in insertion order.
func (r *ReachingSet) Each(f func(Stmt)) {
	for i, l := range r.locs {
		if r.bits.Test(uint(i)) {
			f(l)
		}
	}
}

// Len returns the number of statements currently in the set.
func (r *ReachingSet) Len() int {
	return int(r.bits.Count())
}
