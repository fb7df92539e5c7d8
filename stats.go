package aligner

// Stats accumulates run counters. The driver is the only writer; the value
// is returned from Run instead of living in package state.
type Stats struct {
	Utterances int
	Successes  int
	Errors     int
	Retries    int
	TotalLike  float64 // cumulative alignment score
	Frames     int64   // cumulative aligned frames
}

// Succeeded reports whether the run aligned at least one utterance.
func (s Stats) Succeeded() bool { return s.Successes > 0 }

// LikePerFrame returns the average alignment score per frame.
func (s Stats) LikePerFrame() float64 {
	if s.Frames == 0 {
		return 0
	}
	return s.TotalLike / float64(s.Frames)
}
