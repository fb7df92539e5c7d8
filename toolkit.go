package aligner

import (
	"fmt"

	"github.com/mseki/aligner-go/acoustic"
	"github.com/mseki/aligner-go/feature"
	"github.com/mseki/aligner-go/lexicon"
)

// The driver consumes the acoustic toolkit through these narrow
// interfaces; the default implementations below bind them to the in-repo
// toolkit packages.

// FeatureProvider computes the base feature stream for a waveform.
type FeatureProvider interface {
	ComputeFeatures(samples []float64, sampleRate int, warp float64) ([][]float64, error)
}

// PitchProvider computes the auxiliary pitch stream for a waveform.
type PitchProvider interface {
	ComputePitch(samples []float64, sampleRate int) ([][]float64, error)
}

// GraphCompiler turns a word-id sequence into an alignment graph. An
// empty graph means the sequence cannot be aligned.
type GraphCompiler interface {
	Compile(wordIDs []int) *acoustic.Graph
}

// Engine aligns features against a graph. The call takes ownership of the
// graph and may scale its arc weights in place; afterwards the graph is
// still valid as a read-only transition-info view for extraction, but must
// not be aligned again.
type Engine interface {
	Align(g *acoustic.Graph, features [][]float64) (acoustic.Result, error)
}

// MFCCProvider is the default FeatureProvider over the feature package.
type MFCCProvider struct {
	Cfg feature.Config
}

// ComputeFeatures extracts raw MFCCs with the given VTLN warp. The
// waveform's sample rate must match the configured one.
func (p MFCCProvider) ComputeFeatures(samples []float64, sampleRate int, warp float64) ([][]float64, error) {
	if sampleRate != p.Cfg.SampleRate {
		return nil, fmt.Errorf("sample rate mismatch: waveform has %d Hz, configured %d Hz",
			sampleRate, p.Cfg.SampleRate)
	}
	cfg := p.Cfg
	cfg.Alpha = warp
	return feature.Extract(samples, cfg)
}

// AutocorrPitchProvider is the default PitchProvider over the feature
// package's autocorrelation tracker.
type AutocorrPitchProvider struct {
	Cfg feature.PitchConfig
}

// ComputePitch extracts the 3-column pitch stream.
func (p AutocorrPitchProvider) ComputePitch(samples []float64, sampleRate int) ([][]float64, error) {
	if sampleRate != p.Cfg.SampleRate {
		return nil, fmt.Errorf("sample rate mismatch: waveform has %d Hz, configured %d Hz",
			sampleRate, p.Cfg.SampleRate)
	}
	return feature.ExtractPitch(samples, p.Cfg)
}

// GMMEngine is the default Engine over the acoustic package.
type GMMEngine struct {
	AM  *acoustic.AcousticModel
	Cfg acoustic.AlignConfig
}

// Align runs beam-pruned Viterbi alignment.
func (e GMMEngine) Align(g *acoustic.Graph, features [][]float64) (acoustic.Result, error) {
	return acoustic.Align(e.AM, g, features, e.Cfg)
}

// TableLexicon adapts the symbol tables and pronunciation dictionary to
// the graph compiler's lexicon interface.
type TableLexicon struct {
	Words  *lexicon.WordTable
	Dict   *lexicon.Dictionary
	Phones *lexicon.PhoneTable
}

// Pronunciation returns the phoneme sequence for a word id.
func (l TableLexicon) Pronunciation(wordID int) ([]acoustic.Phoneme, bool) {
	word, ok := l.Words.Word(wordID)
	if !ok {
		return nil, false
	}
	return l.Dict.PhonemeSequence(word)
}

// PhoneID returns the phone-table id for a phoneme label.
func (l TableLexicon) PhoneID(p acoustic.Phoneme) (int, bool) {
	return l.Phones.ID(string(p))
}
