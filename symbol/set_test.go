package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Set_Contains(t *testing.T) {
	testCases := []struct {
		name   string
		ranges []Range
		probe  ID
		expect bool
	}{
		{
			name:   "empty set contains nothing",
			ranges: nil,
			probe:  5,
			expect: false,
		},
		{
			name:   "in single range",
			ranges: []Range{{Low: 10, High: 20}},
			probe:  15,
			expect: true,
		},
		{
			name:   "at low bound is included",
			ranges: []Range{{Low: 10, High: 20}},
			probe:  10,
			expect: true,
		},
		{
			name:   "at high bound is excluded",
			ranges: []Range{{Low: 10, High: 20}},
			probe:  20,
			expect: false,
		},
		{
			name:   "between disjoint ranges",
			ranges: []Range{{Low: 0, High: 5}, {Low: 10, High: 15}},
			probe:  7,
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			s := NewSetOfRanges(tc.ranges...)
			assert.Equal(tc.expect, s.Contains(tc.probe))
		})
	}
}

func Test_Set_AddRange_Coalesces(t *testing.T) {
	assert := assert.New(t)

	s := NewSet()
	s.AddRange(0, 5)
	s.AddRange(5, 10)
	s.AddRange(20, 25)

	// the first two ranges abut at 5 and must coalesce into one
	assert.Equal([]Range{{Low: 0, High: 10}, {Low: 20, High: 25}}, s.Ranges())
}

func Test_Set_RemoveRange(t *testing.T) {
	assert := assert.New(t)

	s := NewSetOfRanges(Range{Low: 0, High: 10})
	s.RemoveRange(3, 6)

	assert.Equal([]Range{{Low: 0, High: 3}, {Low: 6, High: 10}}, s.Ranges())
}

func Test_Set_Union_Commutative(t *testing.T) {
	assert := assert.New(t)

	a := NewSetOfRanges(Range{Low: 0, High: 5})
	b := NewSetOfRanges(Range{Low: 3, High: 8})

	assert.True(a.Union(b).Equal(b.Union(a)))
}

func Test_Set_Intersection_Commutative(t *testing.T) {
	assert := assert.New(t)

	a := NewSetOfRanges(Range{Low: 0, High: 5})
	b := NewSetOfRanges(Range{Low: 3, High: 8})

	assert.True(a.Intersection(b).Equal(b.Intersection(a)))
}

func Test_Set_Difference_SelfIsEmpty(t *testing.T) {
	assert := assert.New(t)

	a := NewSetOfRanges(Range{Low: 0, High: 5}, Range{Low: 10, High: 20})

	assert.True(a.Difference(a).Empty())
}

func Test_Set_Union_WithEmptyIsIdentity(t *testing.T) {
	assert := assert.New(t)

	a := NewSetOfRanges(Range{Low: 0, High: 5}, Range{Low: 10, High: 20})
	empty := NewSet()

	assert.True(a.Union(empty).Equal(a))
}

func Test_Set_DisjointWith(t *testing.T) {
	testCases := []struct {
		name   string
		a      []Range
		b      []Range
		expect bool
	}{
		{
			name:   "disjoint ranges",
			a:      []Range{{Low: 0, High: 5}},
			b:      []Range{{Low: 5, High: 10}},
			expect: true,
		},
		{
			name:   "overlapping ranges",
			a:      []Range{{Low: 0, High: 5}},
			b:      []Range{{Low: 4, High: 10}},
			expect: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			a := NewSetOfRanges(tc.a...)
			b := NewSetOfRanges(tc.b...)
			assert.Equal(tc.expect, a.DisjointWith(b))
		})
	}
}
