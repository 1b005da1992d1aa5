// Package timestamp implements the pure interval algebra the orchestrator
// uses to turn raw speech-detector output into a normalized, gap-aware
// schedule of windows to transcribe.
//
// Every function here is pure and total over well-formed input: it never
// mutates its argument. Each returns a fresh slice, except Pad with both
// pads zero and Merge with a nil maxMergeGap, which return their input
// slice as is.
package timestamp

// Interval is a half-open-or-closed span of audio, in fractional seconds.
// Gap marks a synthetic non-speech interval inserted by
// ExpandGaps/FillGaps/IncludeGaps.
// ExpandAmount records how many seconds of the interval's tail are padding
// rather than detected speech, accumulated across transforms.
type Interval struct {
	Start, End   float64
	Gap          bool
	ExpandAmount float64
}

// List is an ordered sequence of Intervals. After normalization (Pad then
// Merge then one of the non-speech strategies) it is sorted by Start and
// non-overlapping.
type List []Interval

// Multiply maps (start, end) to (start*factor, end*factor), used to convert
// sample-indexed detector output into seconds.
func Multiply(l List, factor float64) List {
	out := make(List, len(l))
	for i, e := range l {
		out[i] = Interval{Start: e.Start * factor, End: e.End * factor}
	}
	return out
}

// Adjust rebases every interval by addSeconds. If maxSourceTime is non-nil,
// entries whose Start exceeds it are dropped, and End is clamped to it
// before the shift is applied. Non-timing fields are preserved.
func Adjust(l List, addSeconds float64, maxSourceTime *float64) List {
	out := make(List, 0, len(l))
	for _, e := range l {
		if maxSourceTime != nil {
			if e.Start > *maxSourceTime {
				continue
			}
			if e.End > *maxSourceTime {
				e.End = *maxSourceTime
			}
		}
		e.Start += addSeconds
		e.End += addSeconds
		out = append(out, e)
	}
	return out
}

// Pad grows each interval by padLeft/padRight seconds without crossing the
// previous padded entry or the next raw entry. Zero pads are a no-op,
// observationally identical to running the clamp logic with zero pads.
func Pad(l List, padLeft, padRight float64) List {
	if padLeft == 0 && padRight == 0 {
		return l
	}

	out := make(List, 0, len(l))
	var havePrev bool
	var prevEnd float64

	for i, e := range l {
		start := e.Start - padLeft
		if havePrev && prevEnd > start {
			start = prevEnd
		} else if !havePrev && start < 0 {
			start = 0
		}

		end := e.End + padRight
		if i < len(l)-1 {
			next := l[i+1]
			if end > next.Start {
				end = next.Start
			}
		}

		out = append(out, Interval{Start: start, End: end})
		prevEnd = end
		havePrev = true
	}

	return out
}

// defaultForceMergeMultiplier is applied to MaxMergeSize when the caller
// does not supply an explicit MaxForceMergeSize.
const defaultForceMergeMultiplier = 1.5

// ForceMergeSize returns maxMergeSize*1.5, or nil (meaning "unset") when
// maxMergeSize itself is unset.
func ForceMergeSize(maxMergeSize *float64) *float64 {
	if maxMergeSize == nil {
		return nil
	}
	v := *maxMergeSize * defaultForceMergeMultiplier
	return &v
}

// Merge absorbs consecutive intervals into a running "current" entry
// whenever either the regular-merge or force-merge condition holds. A nil
// maxMergeGap disables merging entirely and returns l unchanged.
func Merge(l List, maxMergeGap, maxMergeSize, minForceMergeGap, maxForceMergeSize *float64) List {
	if maxMergeGap == nil {
		return l
	}

	var out List
	var current *Interval

	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	for _, e := range l {
		if current == nil {
			c := e
			current = &c
			continue
		}

		distance := e.Start - current.End
		currentSize := current.End - current.Start

		regular := distance <= *maxMergeGap && (maxMergeSize == nil || currentSize <= *maxMergeSize)
		force := !regular && minForceMergeGap != nil && distance <= *minForceMergeGap &&
			(maxForceMergeSize == nil || currentSize <= *maxForceMergeSize)

		if regular || force {
			current.End = e.End
			continue
		}

		flush()
		c := e
		current = &c
	}
	flush()

	return out
}

// ExpandGaps stretches each interval's End forward to the next interval's
// Start, recording the stretch in ExpandAmount, and optionally raises the
// final entry's End to totalDuration. If the first interval does not start
// at zero, a leading gap interval is prepended.
func ExpandGaps(l List, totalDuration *float64) List {
	if len(l) == 0 {
		return List{}
	}

	out := make(List, 0, len(l)+2)

	if l[0].Start > 0 {
		out = append(out, Interval{Start: 0, End: l[0].Start, Gap: true})
	}

	for i := 0; i < len(l)-1; i++ {
		cur := l[i]
		next := l[i+1]
		delta := next.Start - cur.End
		if delta >= 0 {
			cur.ExpandAmount = delta
			cur.End = next.Start
		}
		out = append(out, cur)
	}

	out = append(out, l[len(l)-1])

	if totalDuration != nil {
		last := out[len(out)-1]
		if last.End < *totalDuration {
			last.End = *totalDuration
			out[len(out)-1] = last
		}
	}

	return out
}

// FillGaps is like ExpandGaps, but a gap is absorbed into the preceding
// interval only when maxExpandSize is set and the gap is no larger than it;
// otherwise a synthetic Gap interval is inserted between the two real
// intervals. Leading and trailing gaps (relative to totalDuration) are
// handled the same way: a small leading gap is absorbed by moving the first
// interval's Start to zero, a small trailing gap by raising the last
// interval's End to totalDuration.
func FillGaps(l List, totalDuration, maxExpandSize *float64) List {
	if len(l) == 0 {
		return List{}
	}

	out := make(List, 0, len(l)*2)

	if l[0].Start > 0 {
		if maxExpandSize != nil && l[0].Start <= *maxExpandSize {
			l = append(List(nil), l...)
			l[0].Start = 0
		} else {
			out = append(out, Interval{Start: 0, End: l[0].Start, Gap: true})
		}
	}

	for i := 0; i < len(l)-1; i++ {
		expanded := false
		cur := l[i]
		next := l[i+1]

		delta := next.Start - cur.End
		if maxExpandSize != nil && delta <= *maxExpandSize {
			cur.ExpandAmount = delta
			cur.End = next.Start
			expanded = true
		}

		out = append(out, cur)

		if delta >= 0 && !expanded {
			out = append(out, Interval{Start: cur.End, End: next.Start, Gap: true})
		}
	}

	out = append(out, l[len(l)-1])

	if totalDuration != nil {
		last := out[len(out)-1]
		delta := *totalDuration - last.End

		if delta > 0 {
			if maxExpandSize != nil && delta <= *maxExpandSize {
				last.ExpandAmount = delta
				last.End = *totalDuration
				out[len(out)-1] = last
			} else {
				out = append(out, Interval{Start: last.End, End: *totalDuration, Gap: true})
			}
		}
	}

	return out
}

// IncludeGaps is like FillGaps with no absorption: gaps are always emitted
// as explicit Gap intervals, and only when at least minGapLength seconds
// long (or always, if minGapLength is nil).
func IncludeGaps(l List, minGapLength, totalDuration *float64) List {
	out := make(List, 0, len(l)*2)
	var lastEndTime float64

	for _, e := range l {
		if lastEndTime != e.Start {
			delta := e.Start - lastEndTime
			if minGapLength == nil || delta >= *minGapLength {
				out = append(out, Interval{Start: lastEndTime, End: e.Start, Gap: true})
			}
		}
		lastEndTime = e.End
		out = append(out, e)
	}

	if totalDuration != nil && lastEndTime < *totalDuration {
		delta := *totalDuration - lastEndTime
		if minGapLength == nil || delta >= *minGapLength {
			out = append(out, Interval{Start: lastEndTime, End: *totalDuration, Gap: true})
		}
	}

	return out
}
