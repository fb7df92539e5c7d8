package aligner

import "fmt"

// Reason classifies why an utterance was skipped. Skips are the
// recoverable error tier: the run continues with the next utterance.
type Reason int

const (
	// ReasonAudio: the waveform could not be read.
	ReasonAudio Reason = iota
	// ReasonTooShort: utterance duration below the configured minimum.
	ReasonTooShort
	// ReasonBadChannel: the requested channel is absent from the waveform.
	ReasonBadChannel
	// ReasonMissingWarp: no VTLN warp entry for the utterance or speaker.
	ReasonMissingWarp
	// ReasonFeature: feature computation failed.
	ReasonFeature
	// ReasonPitch: pitch computation failed.
	ReasonPitch
	// ReasonStreamMismatch: feature stream lengths differ beyond tolerance.
	ReasonStreamMismatch
	// ReasonEmptyGraph: the word sequence compiled to an empty graph.
	ReasonEmptyGraph
	// ReasonNoFrames: the fused feature matrix has no rows.
	ReasonNoFrames
	// ReasonAlignFailed: the aligner produced no state path.
	ReasonAlignFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonAudio:
		return "audio-unreadable"
	case ReasonTooShort:
		return "too-short"
	case ReasonBadChannel:
		return "bad-channel"
	case ReasonMissingWarp:
		return "missing-warp"
	case ReasonFeature:
		return "feature-failed"
	case ReasonPitch:
		return "pitch-failed"
	case ReasonStreamMismatch:
		return "stream-length-mismatch"
	case ReasonEmptyGraph:
		return "empty-graph"
	case ReasonNoFrames:
		return "zero-length-features"
	case ReasonAlignFailed:
		return "alignment-failed"
	}
	return "unknown"
}

// SkipError marks a per-utterance recoverable failure. The driver logs it,
// counts it, and moves on; it never aborts the run.
type SkipError struct {
	Key    string
	Reason Reason
	Err    error // underlying cause, may be nil
}

func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("utterance %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("utterance %s: %s", e.Key, e.Reason)
}

func (e *SkipError) Unwrap() error { return e.Err }

func skip(key string, reason Reason, err error) *SkipError {
	return &SkipError{Key: key, Reason: reason, Err: err}
}
