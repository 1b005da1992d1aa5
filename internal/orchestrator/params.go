package orchestrator

// NonSpeechStrategy selects how gaps between speech intervals are handled
// after padding and merging.
type NonSpeechStrategy string

const (
	// Skip ignores gaps entirely.
	Skip NonSpeechStrategy = "skip"
	// CreateSegment fills gaps as synthetic intervals, absorbing small
	// ones into their neighbor.
	CreateSegment NonSpeechStrategy = "create_segment"
	// ExpandSegment stretches each interval's end forward to the next
	// interval's start.
	ExpandSegment NonSpeechStrategy = "expand_segment"
)

// IsValid reports whether s is one of the known strategies.
func (s NonSpeechStrategy) IsValid() bool {
	switch s {
	case Skip, CreateSegment, ExpandSegment:
		return true
	default:
		return false
	}
}

// Params holds every tunable of the orchestrator, with its defaults set
// to the values proven out in production.
type Params struct {
	SegmentPaddingLeft  float64
	SegmentPaddingRight float64

	MaxSilentPeriod float64
	MaxMergeSize    float64

	MinForceMergeGap            float64
	ForceMergeSegmentMultiplier float64
	MinSegmentDuration          float64
	MaxPromptWindow             float64
	PromptNoSpeechProb          float64
	NonSpeechStrategy           NonSpeechStrategy
}

// DefaultParams returns the production-proven default tunables.
func DefaultParams() Params {
	return Params{
		SegmentPaddingLeft:          1.0,
		SegmentPaddingRight:         1.0,
		MaxSilentPeriod:             10.0,
		MaxMergeSize:                150.0,
		MinForceMergeGap:            0.5,
		ForceMergeSegmentMultiplier: 1.5,
		MinSegmentDuration:          1.0,
		MaxPromptWindow:             0.0,
		PromptNoSpeechProb:          0.1,
		NonSpeechStrategy:           Skip,
	}
}
