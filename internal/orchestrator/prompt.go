package orchestrator

// promptWindow is a FIFO of recently transcribed segments used to build the
// textual prompt passed to the next transcriber call. It borrows cloned
// segment text, not references into Result.Segments, so appending to
// Result.Segments while holding the window is safe.
type promptWindow struct {
	segments []Segment
	maxSpan  float64
	maxNSP   float64
}

func newPromptWindow(maxSpan, maxNoSpeechProb float64) *promptWindow {
	return &promptWindow{maxSpan: maxSpan, maxNSP: maxNoSpeechProb}
}

func (w *promptWindow) enabled() bool { return w.maxSpan > 0 }

// update appends the real-speech segments from rebased to the window, then
// evicts any front entries that have fallen outside the trailing maxSpan
// seconds of global time as of segmentEnd, the just-processed interval's
// end. Both steps key off segmentEnd, not the next interval's start, so a
// gap before the next interval does not over-evict.
func (w *promptWindow) update(rebased []Segment, segmentEnd float64) {
	if !w.enabled() {
		return
	}

	for _, seg := range rebased {
		if seg.NoSpeechProb <= w.maxNSP {
			w.segments = append(w.segments, seg)
		}
	}

	for len(w.segments) > 0 {
		front := w.segments[0]
		if front.End-front.ExpandAmount < segmentEnd-w.maxSpan {
			w.segments = w.segments[1:]
			continue
		}
		break
	}
}

// prompt joins the window's text with a single space, or returns "" and
// false if the window is empty.
func (w *promptWindow) prompt() (string, bool) {
	if len(w.segments) == 0 {
		return "", false
	}

	var out string
	for i, seg := range w.segments {
		if i > 0 {
			out += " "
		}
		out += seg.Text
	}
	return out, true
}
