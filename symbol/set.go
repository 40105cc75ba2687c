package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Range is a half-open interval of IDs, [Low, High).
type Range struct {
	Low  ID
	High ID
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Low, r.High)
}

// Set is an ordered, disjoint union of half-open ID ranges. At rest, a Set's
// ranges are sorted ascending, pairwise disjoint, and no two adjacent ranges
// abut (they have already been coalesced into one). Every operation that
// could violate this restores it before returning; iteration with Ranges and
// Each always yields ascending, non-overlapping, non-abutting ranges.
//
// The zero value is the empty set and is ready to use.
type Set struct {
	ranges []Range
}

// NewSet returns a new, empty Set.
func NewSet() *Set {
	return &Set{}
}

// NewSetOfRanges returns a new Set containing the union of the given ranges.
func NewSetOfRanges(ranges ...Range) *Set {
	s := NewSet()
	for _, r := range ranges {
		s.AddRange(r.Low, r.High)
	}
	return s
}

// NewSetOf returns a new Set containing exactly the given single IDs.
func NewSetOf(ids ...ID) *Set {
	s := NewSet()
	for _, id := range ids {
		s.AddRange(id, id+1)
	}
	return s
}

// Copy returns a duplicate Set that shares no storage with s.
func (s *Set) Copy() *Set {
	cp := &Set{ranges: make([]Range, len(s.ranges))}
	copy(cp.ranges, s.ranges)
	return cp
}

// Ranges returns the Set's ranges in ascending, disjoint, non-abutting form.
// The returned slice must not be modified by the caller.
func (s *Set) Ranges() []Range {
	return s.ranges
}

// Each calls f once per ID contained in the set, in ascending order. It is
// the caller's responsibility to avoid calling this on a set holding a huge
// number of IDs, such as the full glyph domain.
func (s *Set) Each(f func(id ID)) {
	for _, r := range s.ranges {
		for id := r.Low; id < r.High; id++ {
			f(id)
		}
	}
}

// Contains reports whether id falls within one of the Set's ranges. It runs
// in O(log R) time where R is the range count.
func (s *Set) Contains(id ID) bool {
	ranges := s.ranges
	lo, hi := 0, len(ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		r := ranges[mid]
		if id < r.Low {
			hi = mid
		} else if id >= r.High {
			lo = mid + 1
		} else {
			return true
		}
	}
	return false
}

// Empty reports whether the Set contains no IDs at all.
func (s *Set) Empty() bool {
	return len(s.ranges) == 0
}

// Len returns the total count of IDs contained in the set (the sum of each
// range's width), not the number of ranges.
func (s *Set) Len() int {
	total := 0
	for _, r := range s.ranges {
		total += int(r.High - r.Low)
	}
	return total
}

// AddRange adds [lo, hi) to the set, re-coalescing as needed. Requires
// lo < hi.
func (s *Set) AddRange(lo, hi ID) {
	if lo >= hi {
		return
	}
	s.ranges = mergeIn(s.ranges, Range{Low: lo, High: hi})
}

// Add adds the single ID id to the set.
func (s *Set) Add(id ID) {
	s.AddRange(id, id+1)
}

// RemoveRange removes [lo, hi) from the set, re-coalescing as needed.
// Requires lo < hi.
func (s *Set) RemoveRange(lo, hi ID) {
	if lo >= hi {
		return
	}
	s.ranges = subtractRange(s.ranges, Range{Low: lo, High: hi})
}

// Remove removes the single ID id from the set.
func (s *Set) Remove(id ID) {
	s.RemoveRange(id, id+1)
}

// Union returns a new Set containing every ID in s or in o (or both).
func (s *Set) Union(o *Set) *Set {
	result := s.Copy()
	for _, r := range o.ranges {
		result.AddRange(r.Low, r.High)
	}
	return result
}

// Intersection returns a new Set containing every ID in both s and o.
func (s *Set) Intersection(o *Set) *Set {
	result := NewSet()
	for _, a := range s.ranges {
		for _, b := range o.ranges {
			lo := a.Low
			if b.Low > lo {
				lo = b.Low
			}
			hi := a.High
			if b.High < hi {
				hi = b.High
			}
			if lo < hi {
				result.AddRange(lo, hi)
			}
		}
	}
	return result
}

// Difference returns a new Set containing every ID in s that is not in o.
func (s *Set) Difference(o *Set) *Set {
	result := s.Copy()
	for _, r := range o.ranges {
		result.RemoveRange(r.Low, r.High)
	}
	return result
}

// DisjointWith reports whether s and o share no IDs.
func (s *Set) DisjointWith(o *Set) bool {
	return s.Intersection(o).Empty()
}

// Equal reports whether s and o contain exactly the same IDs. Two sets in
// canonical (coalesced) form are equal iff their range slices are
// identical, so this is a structural comparison of the canonical form, not
// a predicate requiring one pass per member.
func (s *Set) Equal(o any) bool {
	other, ok := o.(*Set)
	if !ok {
		otherVal, ok := o.(Set)
		if !ok {
			return false
		}
		other = &otherVal
	}
	if other == nil || len(s.ranges) != len(other.ranges) {
		return false
	}
	for i := range s.ranges {
		if s.ranges[i] != other.ranges[i] {
			return false
		}
	}
	return true
}

func (s *Set) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// mergeIn inserts r into the sorted, disjoint, non-abutting ranges slice,
// coalescing with any overlapping or adjacent ranges, and returns the new
// sorted, disjoint, non-abutting slice.
func mergeIn(ranges []Range, r Range) []Range {
	out := make([]Range, 0, len(ranges)+1)
	inserted := false
	for _, cur := range ranges {
		if inserted {
			out = append(out, cur)
			continue
		}
		if cur.High < r.Low {
			// cur strictly before r, not touching
			out = append(out, cur)
			continue
		}
		if r.High < cur.Low {
			// r strictly before cur, not touching; insert r now
			out = append(out, r)
			out = append(out, cur)
			inserted = true
			continue
		}
		// overlapping or abutting; merge into r
		if cur.Low < r.Low {
			r.Low = cur.Low
		}
		if cur.High > r.High {
			r.High = cur.High
		}
	}
	if !inserted {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Low < out[j].Low })
	return out
}

// subtractRange removes r from the sorted, disjoint ranges slice and returns
// the new sorted, disjoint, non-abutting slice.
func subtractRange(ranges []Range, r Range) []Range {
	out := make([]Range, 0, len(ranges))
	for _, cur := range ranges {
		if cur.High <= r.Low || cur.Low >= r.High {
			// no overlap
			out = append(out, cur)
			continue
		}
		if cur.Low < r.Low {
			out = append(out, Range{Low: cur.Low, High: r.Low})
		}
		if cur.High > r.High {
			out = append(out, Range{Low: r.High, High: cur.High})
		}
	}
	return out
}
