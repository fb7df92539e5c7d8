package feature

import (
	"fmt"
)

// Config holds all MFCC extraction parameters.
type Config struct {
	SampleRate    int
	FrameLenMs    float64 // frame length in milliseconds
	FrameShiftMs  float64 // frame shift in milliseconds
	PreEmphCoeff  float64
	NumMelFilters int
	NumCepstra    int
	LowFreq       float64
	HighFreq      float64
	FFTSize       int
	CepLifter     int
	Alpha         float64 // VTLN warp factor (1.0 = no warping)
}

// DefaultConfig returns the standard MFCC configuration for alignment:
// a 5 ms frame shift for fine phone boundaries.
func DefaultConfig() Config {
	return Config{
		SampleRate:    16000,
		FrameLenMs:    25.0,
		FrameShiftMs:  5.0,
		PreEmphCoeff:  0.97,
		NumMelFilters: 26,
		NumCepstra:    13,
		LowFreq:       0,
		HighFreq:      8000,
		FFTSize:       512,
		CepLifter:     22,
		Alpha:         1.0,
	}
}

// Extract computes raw MFCC features from audio samples, shape
// [numFrames][NumCepstra]. Mean subtraction, stream fusion, CMVN and delta
// appending happen downstream in the alignment pipeline, so none of them
// are applied here.
func Extract(samples []float64, cfg Config) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty samples")
	}

	frameLen := int(cfg.FrameLenMs * float64(cfg.SampleRate) / 1000.0)
	frameShift := int(cfg.FrameShiftMs * float64(cfg.SampleRate) / 1000.0)

	// 1. Pre-emphasis
	emphasized := PreEmphasize(samples, cfg.PreEmphCoeff)

	// 2. Framing
	frames := Frame(emphasized, frameLen, frameShift)
	if len(frames) == 0 {
		return nil, fmt.Errorf("audio too short for a single frame")
	}

	// 3. Build reusable workspace (once). The mel filterbank carries the
	// VTLN warp.
	melFB := NewMelFilterbank(cfg.NumMelFilters, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq, cfg.Alpha)
	fftWS := newFFTWorkspace(cfg.FFTSize)
	dctTbl := newDCTTable(cfg.NumCepstra, cfg.NumMelFilters)
	melBuf := make([]float64, cfg.NumMelFilters)

	var liftTbl *lifterTable
	if cfg.CepLifter > 0 {
		liftTbl = newLifterTable(cfg.NumCepstra, cfg.CepLifter)
	}

	// 4. For each frame: window+FFT -> power spectrum -> Mel -> DCT -> lifter
	nFrames := len(frames)
	mfccs := make([][]float64, nFrames)
	cepAll := make([]float64, nFrames*cfg.NumCepstra)
	hammWin := getHammingWindow(frameLen)
	for i, frame := range frames {
		fftWS.computePowerSpectrum(frame, hammWin)
		melFB.applyInto(fftWS.power, melBuf)
		cepstra := cepAll[i*cfg.NumCepstra : (i+1)*cfg.NumCepstra]
		dctTbl.applyInto(melBuf, cepstra)
		if liftTbl != nil {
			liftTbl.apply(cepstra)
		}
		mfccs[i] = cepstra
	}

	return mfccs, nil
}
