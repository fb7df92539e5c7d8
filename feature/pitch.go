package feature

import (
	"fmt"
	"math"
)

// PitchConfig holds pitch tracking parameters. Frame length and shift are
// shared with the MFCC configuration so both streams stay frame-aligned.
type PitchConfig struct {
	SampleRate   int
	FrameLenMs   float64
	FrameShiftMs float64
	MinF0        float64 // lowest tracked fundamental, Hz
	MaxF0        float64 // highest tracked fundamental, Hz
}

// DefaultPitchConfig returns standard pitch tracking parameters aligned
// with cfg's framing.
func DefaultPitchConfig(cfg Config) PitchConfig {
	return PitchConfig{
		SampleRate:   cfg.SampleRate,
		FrameLenMs:   cfg.FrameLenMs,
		FrameShiftMs: cfg.FrameShiftMs,
		MinF0:        60,
		MaxF0:        400,
	}
}

// ExtractPitch computes a 3-column pitch stream per frame: normalized
// autocorrelation peak (a voicing correlate), log fundamental frequency,
// and its delta. Unvoiced frames carry the last voiced log-F0 so the
// contour stays continuous for modeling.
func ExtractPitch(samples []float64, cfg PitchConfig) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty samples")
	}
	frameLen := int(cfg.FrameLenMs * float64(cfg.SampleRate) / 1000.0)
	frameShift := int(cfg.FrameShiftMs * float64(cfg.SampleRate) / 1000.0)

	frames := Frame(samples, frameLen, frameShift)
	if len(frames) == 0 {
		return nil, fmt.Errorf("audio too short for a single frame")
	}

	minLag := int(float64(cfg.SampleRate) / cfg.MaxF0)
	maxLag := int(float64(cfg.SampleRate) / cfg.MinF0)
	if maxLag >= frameLen {
		maxLag = frameLen - 1
	}
	if minLag < 1 {
		minLag = 1
	}
	if minLag >= maxLag {
		return nil, fmt.Errorf("frame too short for pitch range %.0f-%.0f Hz", cfg.MinF0, cfg.MaxF0)
	}

	T := len(frames)
	nccf := make([]float64, T)
	logF0 := make([]float64, T)
	lastVoiced := math.Log(cfg.MinF0)
	for t, frame := range frames {
		peak, lag := autocorrPeak(frame, minLag, maxLag)
		nccf[t] = peak
		if peak > 0.3 && lag > 0 {
			lastVoiced = math.Log(float64(cfg.SampleRate) / float64(lag))
		}
		logF0[t] = lastVoiced
	}

	// Delta of the log-F0 contour via the shared regression window.
	contour := make([][]float64, T)
	for t := range contour {
		contour[t] = []float64{logF0[t]}
	}
	dF0 := Delta(contour, 2)

	out := make([][]float64, T)
	buf := make([]float64, T*3)
	for t := range out {
		row := buf[t*3 : (t+1)*3]
		row[0] = nccf[t]
		row[1] = logF0[t]
		row[2] = dF0[t][0]
		out[t] = row
	}
	return out, nil
}

// autocorrPeak returns the highest energy-normalized autocorrelation value
// in [minLag, maxLag] and the lag where it occurs.
func autocorrPeak(frame []float64, minLag, maxLag int) (float64, int) {
	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy == 0 {
		return 0, 0
	}
	bestVal := 0.0
	bestLag := 0
	for lag := minLag; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < len(frame); i++ {
			sum += frame[i] * frame[i+lag]
		}
		r := sum / energy
		if r > bestVal {
			bestVal = r
			bestLag = lag
		}
	}
	return bestVal, bestLag
}
