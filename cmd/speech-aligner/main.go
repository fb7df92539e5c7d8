// Command speech-aligner aligns speech recordings against their
// transcripts and writes phone-level time boundaries.
//
// Usage:
//
//	speech-aligner [flags] <wav-list> <transcript-list> <output>
//
// The wav list holds "key path" lines; the transcript list holds
// "key token token ..." lines in the same order.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	aligner "github.com/mseki/aligner-go"
	"github.com/mseki/aligner-go/acoustic"
	"github.com/mseki/aligner-go/feature"
	"github.com/mseki/aligner-go/lexicon"
	"github.com/mseki/aligner-go/output"
)

// errNoAlignments distinguishes "ran fine, aligned nothing" (exit 1) from
// a fatal abort (exit 2).
var errNoAlignments = errors.New("no utterances aligned")

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errNoAlignments) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

type options struct {
	// feats
	sampleFrequency int
	frameShift      float64
	frameLength     float64
	subtractMean    bool
	vtlnWarp        float64
	vtlnMap         string
	utt2spk         string
	channel         int
	minDuration     float64
	lengthTolerance int
	normVars        bool
	normMeans       bool
	usePitch        bool

	// model and lexicon
	model         string
	lex           string
	lexNoSil      string
	wordSymTable  string
	phoneSymTable string

	// align
	acousticScale   float64
	transitionScale float64
	selfLoopScale   float64
	beam            float64
	retryBeam       float64
	boostSil        float64
	caseSensitive   bool
	spellOOV        bool
	optSil          bool
	tokenize        bool

	// output
	customOutput bool
	mlfOutput    bool
	ctmOutput    bool
	writeLengths bool
	perFrame     bool

	// ambient
	configPath string
	logLevel   string
	logFormat  string
}

// fileConfig is the optional YAML configuration; flags given on the
// command line take precedence over it.
type fileConfig struct {
	Paths struct {
		Model        string `yaml:"model"`
		Lexicon      string `yaml:"lexicon"`
		LexiconNoSil string `yaml:"lexicon_no_sil"`
		WordSymbols  string `yaml:"word_symbols"`
		PhoneSymbols string `yaml:"phone_symbols"`
	} `yaml:"paths"`
	Feats struct {
		SampleFrequency int     `yaml:"sample_frequency"`
		FrameShift      float64 `yaml:"frame_shift"`
		FrameLength     float64 `yaml:"frame_length"`
	} `yaml:"feats"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "speech-aligner <wav-list> <transcript-list> <output>",
		Short: "forced alignment of speech against transcripts",
		Long: "speech-aligner reads a keyed wav list and a co-ordered transcript list,\n" +
			"aligns each utterance against the acoustic model, and writes phone-level\n" +
			"time boundaries in one of several encodings.",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &o, args[0], args[1], args[2])
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.sampleFrequency, "sample-frequency", 16000, "waveform sample frequency (Hz)")
	f.Float64Var(&o.frameShift, "frame-shift", 0.005, "frame shift in seconds")
	f.Float64Var(&o.frameLength, "frame-length", 0.025, "frame length in seconds")
	f.BoolVar(&o.subtractMean, "subtract-mean", false, "subtract mean of each feature file")
	f.Float64Var(&o.vtlnWarp, "vtln-warp", 1.0, "VTLN warp factor (only applicable if vtln-map not specified)")
	f.StringVar(&o.vtlnMap, "vtln-map", "", "map from utterance or speaker id to VTLN warp factor")
	f.StringVar(&o.utt2spk, "utt2spk", "", "utterance to speaker-id map (only with vtln-map)")
	f.IntVar(&o.channel, "channel", -1, "channel to extract (-1 -> expect mono, 0 -> left, 1 -> right)")
	f.Float64Var(&o.minDuration, "min-duration", 0.0, "minimum duration of segments to process (seconds)")
	f.IntVar(&o.lengthTolerance, "length-tolerance", 0, "trim feature streams to the shortest up to this many frames difference")
	f.BoolVar(&o.normVars, "norm-vars", false, "normalize variances (requires norm-means)")
	f.BoolVar(&o.normMeans, "norm-means", true, "normalize means")
	f.BoolVar(&o.usePitch, "use-pitch", true, "append a pitch stream to the features")

	f.StringVar(&o.model, "model", "", "acoustic model path")
	f.StringVar(&o.lex, "lexicon", "", "pronunciation lexicon (with optional silence)")
	f.StringVar(&o.lexNoSil, "lexicon-no-sil", "", "pronunciation lexicon without optional silence")
	f.StringVar(&o.wordSymTable, "word-symbol-table", "", "symbol table for words")
	f.StringVar(&o.phoneSymTable, "phone-symbol-table", "", "symbol table for phones")

	f.Float64Var(&o.acousticScale, "acoustic-scale", 0.1, "scaling factor for acoustic likelihoods")
	f.Float64Var(&o.transitionScale, "transition-scale", 1.0, "scaling factor for transition probabilities")
	f.Float64Var(&o.selfLoopScale, "self-loop-scale", 0.1, "scaling factor for self-loop probabilities")
	f.Float64Var(&o.beam, "beam", 200.0, "alignment pruning beam")
	f.Float64Var(&o.retryBeam, "retry-beam", 800.0, "relaxed beam for one retry (0 disables)")
	f.Float64Var(&o.boostSil, "boost-sil", 1.0, "factor by which to boost silence emission weights")
	f.BoolVar(&o.caseSensitive, "text-case-sensitive", false, "distinguish lower and upper case words in text")
	f.BoolVar(&o.spellOOV, "spell-oov", true, "spell out alphanumeric OOV words letter by letter")
	f.BoolVar(&o.optSil, "opt-sil", true, "allow optional silence between words")
	f.BoolVar(&o.tokenize, "tokenize", false, "tokenize unsegmented transcripts before lexicon lookup")

	f.BoolVar(&o.customOutput, "custom-output", true, "output in the custom start/end/phone format")
	f.BoolVar(&o.mlfOutput, "mlf-output", false, "output an HTK master label file")
	f.BoolVar(&o.ctmOutput, "ctm-output", false, "output in ctm format")
	f.BoolVar(&o.writeLengths, "write-lengths", false, "write (phone, frame count) pairs")
	f.BoolVar(&o.perFrame, "per-frame", false, "sequence output: one phone id per frame")

	f.StringVar(&o.configPath, "config", "", "optional YAML config file; flags override it")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.StringVar(&o.logFormat, "log-format", "console", "log format (console, json)")

	return cmd
}

// applyConfig folds the YAML config into options for flags the user did
// not set explicitly.
func applyConfig(cmd *cobra.Command, o *options) error {
	if o.configPath == "" {
		return nil
	}
	raw, err := os.ReadFile(o.configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	changed := cmd.Flags().Changed
	if fc.Paths.Model != "" && !changed("model") {
		o.model = fc.Paths.Model
	}
	if fc.Paths.Lexicon != "" && !changed("lexicon") {
		o.lex = fc.Paths.Lexicon
	}
	if fc.Paths.LexiconNoSil != "" && !changed("lexicon-no-sil") {
		o.lexNoSil = fc.Paths.LexiconNoSil
	}
	if fc.Paths.WordSymbols != "" && !changed("word-symbol-table") {
		o.wordSymTable = fc.Paths.WordSymbols
	}
	if fc.Paths.PhoneSymbols != "" && !changed("phone-symbol-table") {
		o.phoneSymTable = fc.Paths.PhoneSymbols
	}
	if fc.Feats.SampleFrequency != 0 && !changed("sample-frequency") {
		o.sampleFrequency = fc.Feats.SampleFrequency
	}
	if fc.Feats.FrameShift != 0 && !changed("frame-shift") {
		o.frameShift = fc.Feats.FrameShift
	}
	if fc.Feats.FrameLength != 0 && !changed("frame-length") {
		o.frameLength = fc.Feats.FrameLength
	}
	if fc.Logging.Level != "" && !changed("log-level") {
		o.logLevel = fc.Logging.Level
	}
	if fc.Logging.Format != "" && !changed("log-format") {
		o.logFormat = fc.Logging.Format
	}
	return nil
}

func newLogger(o *options) zerolog.Logger {
	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if o.logFormat == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func run(cmd *cobra.Command, o *options, wavListPath, transcriptPath, outputPath string) error {
	if err := applyConfig(cmd, o); err != nil {
		return err
	}
	log := newLogger(o)

	if o.wordSymTable == "" || o.phoneSymTable == "" || o.model == "" {
		return errors.New("model, word-symbol-table and phone-symbol-table are required")
	}

	words, err := lexicon.LoadWordTableFile(o.wordSymTable)
	if err != nil {
		return fmt.Errorf("load word symbol table: %w", err)
	}
	phones, err := lexicon.LoadPhoneTableFile(o.phoneSymTable)
	if err != nil {
		return fmt.Errorf("load phone symbol table: %w", err)
	}

	lexPath := o.lex
	if !o.optSil {
		lexPath = o.lexNoSil
	}
	if lexPath == "" {
		return errors.New("no pronunciation lexicon for the selected opt-sil setting")
	}
	dict, err := lexicon.LoadFile(lexPath)
	if err != nil {
		return fmt.Errorf("load lexicon: %w", err)
	}

	am, err := acoustic.LoadFile(o.model)
	if err != nil {
		return fmt.Errorf("load acoustic model: %w", err)
	}
	if o.boostSil != 1.0 {
		n := am.BoostSilence(o.boostSil, acoustic.DefaultSilencePhones())
		log.Info().Int("states", n).Float64("factor", o.boostSil).Msg("boosted silence weights")
	}

	opts := aligner.Options{
		CaseSensitive:   o.caseSensitive,
		SpellOOV:        o.spellOOV,
		MinDuration:     o.minDuration,
		Channel:         o.channel,
		LengthTolerance: o.lengthTolerance,
		SubtractMean:    o.subtractMean,
		NormMeans:       o.normMeans,
		NormVars:        o.normVars,
		VTLNWarp:        o.vtlnWarp,
	}
	if o.utt2spk != "" && o.vtlnMap == "" {
		return errors.New("the utt2spk option is only needed if the vtln-map option is used")
	}
	if o.vtlnMap != "" {
		f, err := os.Open(o.vtlnMap)
		if err != nil {
			return fmt.Errorf("open vtln map: %w", err)
		}
		opts.WarpMap, err = aligner.LoadWarpMap(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	if o.utt2spk != "" {
		f, err := os.Open(o.utt2spk)
		if err != nil {
			return fmt.Errorf("open utt2spk map: %w", err)
		}
		opts.SpkMap, err = aligner.LoadKeyMap(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	featCfg := feature.DefaultConfig()
	featCfg.SampleRate = o.sampleFrequency
	featCfg.FrameShiftMs = o.frameShift * 1000
	featCfg.FrameLenMs = o.frameLength * 1000

	al := aligner.New(opts)
	al.Log = log
	al.Words = words
	al.Phones = phones
	al.Features = aligner.MFCCProvider{Cfg: featCfg}
	if o.usePitch {
		al.Pitch = aligner.AutocorrPitchProvider{Cfg: feature.DefaultPitchConfig(featCfg)}
	}
	al.Compiler = acoustic.NewGraphCompiler(am,
		aligner.TableLexicon{Words: words, Dict: dict, Phones: phones}, o.optSil)
	alignCfg := acoustic.AlignConfig{
		AcousticScale:   o.acousticScale,
		TransitionScale: o.transitionScale,
		SelfLoopScale:   o.selfLoopScale,
		Beam:            o.beam,
		RetryBeam:       o.retryBeam,
	}
	if err := alignCfg.Validate(); err != nil {
		return err
	}
	al.Engine = aligner.GMMEngine{AM: am, Cfg: alignCfg}
	if o.tokenize {
		al.Tokenizer, err = lexicon.NewTokenizer()
		if err != nil {
			return fmt.Errorf("init tokenizer: %w", err)
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	format := output.ResolveFormat(o.customOutput, o.mlfOutput, o.ctmOutput, o.writeLengths)
	al.Emitter = output.NewEmitter(out, format, output.Options{
		FrameShift: o.frameShift,
		PerFrame:   o.perFrame,
	})
	log.Info().Stringer("format", format).Str("output", outputPath).Msg("writing alignments")

	wavList, err := os.Open(wavListPath)
	if err != nil {
		return fmt.Errorf("open wav list: %w", err)
	}
	defer wavList.Close()
	transcripts, err := os.Open(transcriptPath)
	if err != nil {
		return fmt.Errorf("open transcript list: %w", err)
	}
	defer transcripts.Close()

	stats, err := al.Run(wavList, transcripts)
	if err != nil {
		return err
	}
	if !stats.Succeeded() {
		return errNoAlignments
	}
	return nil
}
