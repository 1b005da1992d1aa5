package timestamp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestMultiplyLinearity(t *testing.T) {
	l := List{{Start: 1000, End: 2000}, {Start: 5000, End: 8000}}

	got := Multiply(Multiply(l, 2), 3)
	want := Multiply(l, 6)

	require.Equal(t, want, got)
}

func TestAdjustLinearity(t *testing.T) {
	l := List{{Start: 1, End: 2}, {Start: 5, End: 8}}

	got := Adjust(Adjust(l, 3, nil), 4, nil)
	want := Adjust(l, 7, nil)

	require.Equal(t, want, got)
}

func TestAdjustClampsAndDrops(t *testing.T) {
	l := List{{Start: 0, End: 4}, {Start: 6, End: 10}}

	got := Adjust(l, 100, f(5))

	require.Equal(t, List{{Start: 100, End: 104}}, got)
}

func TestPadClampedByNeighbors(t *testing.T) {
	l := List{{Start: 5, End: 6}, {Start: 6.5, End: 7}}

	got := Pad(l, 2, 2)

	require.Equal(t, List{
		{Start: 3, End: 6.5},
		{Start: 6.5, End: 9},
	}, got)
}

func TestPadZeroIsNoop(t *testing.T) {
	l := List{{Start: 5, End: 6}}
	require.Same(t, &l[0], &Pad(l, 0, 0)[0])
}

func TestMergeForceRegime(t *testing.T) {
	l := List{{Start: 0, End: 10}, {Start: 10.3, End: 12}, {Start: 12.4, End: 13}}

	got := Merge(l, f(0.1), f(5), f(0.5), ForceMergeSize(f(5)))

	require.Equal(t, List{{Start: 0, End: 10}, {Start: 10.3, End: 13}}, got)
}

func TestMergeNilGapIsNoop(t *testing.T) {
	l := List{{Start: 0, End: 10}, {Start: 10.3, End: 12}}
	require.Equal(t, l, Merge(l, nil, nil, nil, nil))
}

func TestMergeIdempotent(t *testing.T) {
	l := List{{Start: 0, End: 10}, {Start: 10.3, End: 12}, {Start: 12.4, End: 13}}

	once := Merge(l, f(0.1), f(5), f(0.5), ForceMergeSize(f(5)))
	twice := Merge(once, f(0.1), f(5), f(0.5), ForceMergeSize(f(5)))

	require.Equal(t, once, twice)
}

func TestExpandGapsWithTotalDuration(t *testing.T) {
	l := List{{Start: 1, End: 2}, {Start: 3, End: 4}}

	got := ExpandGaps(l, f(10))

	require.Equal(t, List{
		{Start: 0, End: 1, Gap: true},
		{Start: 1, End: 3, ExpandAmount: 1},
		{Start: 3, End: 10},
	}, got)
}

func TestExpandGapsEmpty(t *testing.T) {
	require.Equal(t, List{}, ExpandGaps(nil, f(10)))
}

func TestFillGapsAbsorbsSmallGaps(t *testing.T) {
	l := List{{Start: 0, End: 5}, {Start: 5.5, End: 10}, {Start: 20, End: 25}}

	got := FillGaps(l, f(30), f(1))

	require.Equal(t, List{
		{Start: 0, End: 5.5, ExpandAmount: 0.5},
		{Start: 5.5, End: 10},
		{Start: 10, End: 20, Gap: true},
		{Start: 20, End: 25},
		{Start: 25, End: 30, Gap: true},
	}, got)
}

func TestFillGapsNoAbsorptionWithoutMaxExpand(t *testing.T) {
	l := List{{Start: 1, End: 2}, {Start: 3, End: 4}}

	got := FillGaps(l, f(5), nil)

	require.Equal(t, List{
		{Start: 0, End: 1, Gap: true},
		{Start: 1, End: 2},
		{Start: 2, End: 3, Gap: true},
		{Start: 3, End: 4},
		{Start: 4, End: 5, Gap: true},
	}, got)
}

func TestIncludeGapsMinLength(t *testing.T) {
	l := List{{Start: 2, End: 4}, {Start: 4.2, End: 6}}

	got := IncludeGaps(l, f(1), f(10))

	// The 0.2s gap between segments is below min_gap_length and dropped;
	// the leading [0,2) and trailing [6,10) gaps are both >= 1 and kept.
	require.Equal(t, List{
		{Start: 0, End: 2, Gap: true},
		{Start: 2, End: 4},
		{Start: 4.2, End: 6},
		{Start: 6, End: 10, Gap: true},
	}, got)
}

func TestIncludeGapsNilMinLengthAlwaysIncludes(t *testing.T) {
	l := List{{Start: 2, End: 4}, {Start: 4.2, End: 6}}

	got := IncludeGaps(l, nil, f(10))

	require.Equal(t, List{
		{Start: 0, End: 2, Gap: true},
		{Start: 2, End: 4},
		{Start: 4, End: 4.2, Gap: true},
		{Start: 4.2, End: 6},
		{Start: 6, End: 10, Gap: true},
	}, got)
}

func TestFormatTimestamp(t *testing.T) {
	require.Equal(t, "00:00:00.000", FormatTimestamp(0))
	require.Equal(t, "01:02:03.456", FormatTimestamp(3723.4567))
	require.Equal(t, "00:00:01.999", FormatTimestamp(1.9999))
}
