// Package aligner drives per-utterance forced alignment: it reads
// co-ordered audio and transcript lists, segments transcripts against the
// lexicon, fuses feature streams, compiles an alignment graph per
// utterance, aligns, and emits phone-level time boundaries.
package aligner

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/mseki/aligner-go/alignment"
	"github.com/mseki/aligner-go/audio"
	"github.com/mseki/aligner-go/feature"
	"github.com/mseki/aligner-go/lexicon"
	"github.com/mseki/aligner-go/output"
)

// Options holds per-run alignment behavior.
type Options struct {
	CaseSensitive   bool    // distinguish upper/lower case in transcripts
	SpellOOV        bool    // spell out alphanumeric OOV words letter by letter
	MinDuration     float64 // seconds; shorter utterances are skipped
	Channel         int     // -1 = expect mono (default to channel 0)
	LengthTolerance int     // allowed row-count spread between feature streams
	SubtractMean    bool    // per-file mean subtraction on the base stream
	NormMeans       bool    // utterance-level cepstral mean normalization
	NormVars        bool    // also normalize variances (requires NormMeans)
	VTLNWarp        float64 // fixed warp factor, used when WarpMap is nil
	WarpMap         map[string]float64
	SpkMap          map[string]string // utterance -> speaker, for WarpMap lookup
}

// Validate rejects option combinations that cannot produce a meaningful
// run. These are the fatal tier: the run never starts.
func (o Options) Validate() error {
	if o.NormVars && !o.NormMeans {
		return errors.New("cannot normalize variances without normalizing means")
	}
	if o.SpkMap != nil && o.WarpMap == nil {
		return errors.New("speaker map is only meaningful together with a warp map")
	}
	return nil
}

// Aligner is the per-utterance alignment driver. Collaborators are
// consumed through narrow interfaces so the acoustic toolkit stays
// replaceable; wire the default toolkit implementations or substitutes.
type Aligner struct {
	Words     *lexicon.WordTable
	Phones    *lexicon.PhoneTable
	Features  FeatureProvider
	Pitch     PitchProvider // nil disables the pitch stream
	Compiler  GraphCompiler
	Engine    Engine
	Emitter   output.Emitter
	Tokenizer *lexicon.Tokenizer // nil: transcripts are pre-tokenized
	Opts      Options

	// LoadWAV reads a waveform by path; defaults to audio.ReadWAVFile.
	LoadWAV func(path string) (*audio.WAV, error)
	Log     zerolog.Logger
}

// New returns an Aligner with defaults filled in; callers assign the
// collaborator fields before Run.
func New(opts Options) *Aligner {
	return &Aligner{
		Opts:    opts,
		LoadWAV: audio.ReadWAVFile,
		Log:     zerolog.Nop(),
	}
}

// uttResult carries the per-utterance outcome into the statistics.
type uttResult struct {
	score   float64
	frames  int
	retried bool
}

// Run processes the audio list against the transcript list, one utterance
// at a time, strictly in order. Recoverable per-utterance failures are
// logged and counted; fatal conditions abort the run with an error. The
// returned statistics are valid either way.
func (a *Aligner) Run(audioList, transcripts io.Reader) (Stats, error) {
	var stats Stats
	if err := a.Opts.Validate(); err != nil {
		return stats, err
	}
	if a.Words == nil || a.Phones == nil || a.Features == nil ||
		a.Compiler == nil || a.Engine == nil || a.Emitter == nil {
		return stats, errors.New("aligner is missing a collaborator")
	}
	if a.LoadWAV == nil {
		a.LoadWAV = audio.ReadWAVFile
	}

	scp := NewScpReader(audioList)
	txt := NewTranscriptReader(transcripts)

	for scp.Next() {
		stats.Utterances++
		key := scp.Key()

		tkey, tokens, err := txt.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stats, fmt.Errorf("transcript list ended before audio list, at utterance %q", key)
			}
			return stats, err
		}
		if tkey != key {
			return stats, fmt.Errorf("utterance key mismatch: audio %q vs transcript %q", key, tkey)
		}

		res, err := a.processOne(key, scp.Path(), tokens)
		if err != nil {
			var se *SkipError
			if !errors.As(err, &se) {
				return stats, err
			}
			stats.Errors++
			a.Log.Warn().
				Str("utt", key).
				Stringer("reason", se.Reason).
				Err(se.Err).
				Msg("skipping utterance")
		} else {
			stats.Successes++
			stats.TotalLike += res.score
			stats.Frames += int64(res.frames)
			if res.retried {
				stats.Retries++
			}
		}
		if stats.Utterances%10 == 0 {
			a.Log.Info().Int("utterances", stats.Utterances).Msg("processed")
		}
	}
	if err := scp.Err(); err != nil {
		return stats, err
	}

	a.Log.Info().
		Int("successes", stats.Successes).
		Int("utterances", stats.Utterances).
		Int("errors", stats.Errors).
		Int("retries", stats.Retries).
		Float64("likePerFrame", stats.LikePerFrame()).
		Msg("done")
	return stats, nil
}

// processOne runs one utterance through the SEGMENT, FEATURIZE,
// GRAPH_COMPILE, ALIGN, EXTRACT and EMIT stages. A *SkipError return means
// the recoverable tier; any other error aborts the run.
func (a *Aligner) processOne(key, wavPath string, tokens []string) (uttResult, error) {
	var res uttResult

	if a.Tokenizer != nil {
		var split []string
		for _, tok := range tokens {
			split = append(split, a.Tokenizer.Split(tok)...)
		}
		tokens = split
	}
	_, wordIDs := lexicon.Segment(tokens, a.Words, a.Opts.CaseSensitive, a.Opts.SpellOOV)

	wav, err := a.LoadWAV(wavPath)
	if err != nil {
		return res, skip(key, ReasonAudio, err)
	}
	if wav.Duration() < a.Opts.MinDuration {
		return res, skip(key, ReasonTooShort,
			fmt.Errorf("%.2f sec < %.2f sec minimum", wav.Duration(), a.Opts.MinDuration))
	}

	channel := a.Opts.Channel
	if channel == -1 {
		channel = 0
		if wav.NumChannels() != 1 {
			a.Log.Warn().Str("utt", key).Int("channels", wav.NumChannels()).
				Msg("channel not specified, defaulting to zero")
		}
	} else if channel >= wav.NumChannels() {
		return res, skip(key, ReasonBadChannel,
			fmt.Errorf("channel %d requested, waveform has %d", channel, wav.NumChannels()))
	}
	samples := wav.Channel(channel)
	sampleRate := int(wav.Header.SampleRate)

	warp := a.Opts.VTLNWarp
	if a.Opts.WarpMap != nil {
		mapKey := key
		if a.Opts.SpkMap != nil {
			spk, ok := a.Opts.SpkMap[key]
			if !ok {
				return res, skip(key, ReasonMissingWarp, fmt.Errorf("no speaker entry for %q", key))
			}
			mapKey = spk
		}
		w, ok := a.Opts.WarpMap[mapKey]
		if !ok {
			return res, skip(key, ReasonMissingWarp, fmt.Errorf("no warp entry for %q", mapKey))
		}
		warp = w
	}

	base, err := a.Features.ComputeFeatures(samples, sampleRate, warp)
	if err != nil {
		return res, skip(key, ReasonFeature, err)
	}
	if a.Opts.SubtractMean {
		feature.ApplyCMN(base)
	}

	streams := [][][]float64{base}
	if a.Pitch != nil {
		pitch, err := a.Pitch.ComputePitch(samples, sampleRate)
		if err != nil {
			return res, skip(key, ReasonPitch, err)
		}
		streams = append(streams, pitch)
	}
	fused := base
	if len(streams) > 1 {
		var spread int
		fused, spread, err = feature.Fuse(streams, a.Opts.LengthTolerance)
		if err != nil {
			return res, skip(key, ReasonStreamMismatch, err)
		}
		if spread > 0 {
			a.Log.Warn().Str("utt", key).Int("spread", spread).
				Msg("stream length mismatch within tolerance")
		}
	}

	if len(fused) == 0 {
		return res, skip(key, ReasonNoFrames, nil)
	}
	if a.Opts.NormMeans {
		feature.ApplyCMVN(fused, a.Opts.NormVars)
	}
	feats := feature.AppendDeltas(fused)

	graph := a.Compiler.Compile(wordIDs)
	if graph.Empty() {
		return res, skip(key, ReasonEmptyGraph, nil)
	}

	// The graph is handed over here; the engine scales it in place and it
	// remains usable below only as the transition-info view.
	alignRes, err := a.Engine.Align(graph, feats)
	if err != nil {
		return res, skip(key, ReasonAlignFailed, err)
	}
	if len(alignRes.StatePath) == 0 {
		return res, skip(key, ReasonAlignFailed, nil)
	}

	segs := alignment.Extract(alignRes.StatePath, graph, a.Phones)
	if err := a.Emitter.Emit(key, segs); err != nil {
		return res, fmt.Errorf("emit %q: %w", key, err)
	}

	res.score = alignRes.Score
	res.frames = len(alignRes.StatePath)
	res.retried = alignRes.Retried
	return res, nil
}
