package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mseki/aligner-go/alignment"
)

// Options configures an Emitter.
type Options struct {
	FrameShift float64 // seconds per frame
	PerFrame   bool    // sequence format: one id per frame instead of per segment
}

// Emitter renders one utterance's phone segments to the output destination.
// Implementations append to a single writer and are not safe for concurrent
// use; the batch pipeline has exactly one writer per destination.
type Emitter interface {
	Emit(key string, segs []alignment.PhoneSegment) error
}

// NewEmitter creates the emitter for the selected format.
func NewEmitter(w io.Writer, format Format, opts Options) Emitter {
	switch format {
	case FormatCustom:
		return &customEmitter{w: w, frameShift: opts.FrameShift}
	case FormatMLF:
		return &mlfEmitter{w: w, frameShift: opts.FrameShift}
	case FormatCTM:
		return newCTMEmitter(w, opts.FrameShift)
	case FormatLengths:
		return &lengthsEmitter{w: w}
	default:
		return &sequenceEmitter{w: w, perFrame: opts.PerFrame}
	}
}

// customEmitter writes, per utterance, the key, one "start end phone" line
// per segment with times accumulated in seconds, and a closing dot.
type customEmitter struct {
	w          io.Writer
	frameShift float64
}

func (e *customEmitter) Emit(key string, segs []alignment.PhoneSegment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", key)
	st, et := 0.0, 0.0
	for _, seg := range segs {
		st = et
		et += float64(seg.Frames) * e.frameShift
		fmt.Fprintf(&b, "%.3f %.3f %s\n", st, et, seg.Phone)
	}
	b.WriteString(".\n")
	_, err := io.WriteString(e.w, b.String())
	return err
}

// mlfEmitter writes an HTK master label file: one header for the whole
// run, then per utterance a quoted label line, per state-class span a
// "start end s<class+2>" line in 100 ns ticks, and a closing dot. The
// phone label is appended on state-class-0 lines only.
type mlfEmitter struct {
	w          io.Writer
	frameShift float64
	headerDone bool
}

func (e *mlfEmitter) Emit(key string, segs []alignment.PhoneSegment) error {
	var b strings.Builder
	if !e.headerDone {
		b.WriteString("#!MLF!#\n")
		e.headerDone = true
	}
	fmt.Fprintf(&b, "\"*/%s.lab\"\n", key)

	// Frame duration in 100 ns units, rounded to millisecond granularity
	// first to match the label files HTK tooling produces.
	tickPerFrame := int64(math.Round(e.frameShift*1e3)) * 10000

	var st, et int64
	for _, seg := range segs {
		for _, span := range seg.Spans {
			et += int64(span.Frames) * tickPerFrame
			if span.Class == 0 {
				fmt.Fprintf(&b, "%d %d s%d %s\n", st, et, span.Class+2, seg.Phone)
			} else {
				fmt.Fprintf(&b, "%d %d s%d\n", st, et, span.Class+2)
			}
			st = et
		}
	}
	b.WriteString(".\n")
	_, err := io.WriteString(e.w, b.String())
	return err
}

// ctmEmitter writes one "key channel start duration phone" line per
// segment. Decimal precision follows the frame shift: two places at 10 ms
// or coarser, three below.
type ctmEmitter struct {
	w          io.Writer
	frameShift float64
	lineFormat string
}

func newCTMEmitter(w io.Writer, frameShift float64) *ctmEmitter {
	prec := 3
	if frameShift >= 0.01 {
		prec = 2
	}
	return &ctmEmitter{
		w:          w,
		frameShift: frameShift,
		lineFormat: fmt.Sprintf("%%s 1 %%.%df %%.%df %%s\n", prec, prec),
	}
}

func (e *ctmEmitter) Emit(key string, segs []alignment.PhoneSegment) error {
	var b strings.Builder
	start := 0.0
	for _, seg := range segs {
		dur := float64(seg.Frames) * e.frameShift
		fmt.Fprintf(&b, e.lineFormat, key, start, dur, seg.Phone)
		start += dur
	}
	_, err := io.WriteString(e.w, b.String())
	return err
}

// sequenceEmitter writes "key id id ..." with one phone id per segment,
// or one per frame when perFrame is set.
type sequenceEmitter struct {
	w        io.Writer
	perFrame bool
}

func (e *sequenceEmitter) Emit(key string, segs []alignment.PhoneSegment) error {
	var b strings.Builder
	b.WriteString(key)
	for _, seg := range segs {
		n := 1
		if e.perFrame {
			n = seg.Frames
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, " %d", seg.PhoneID)
		}
	}
	b.WriteByte('\n')
	_, err := io.WriteString(e.w, b.String())
	return err
}

// lengthsEmitter writes "key id frames ; id frames ; ..." with one pair
// per segment.
type lengthsEmitter struct {
	w io.Writer
}

func (e *lengthsEmitter) Emit(key string, segs []alignment.PhoneSegment) error {
	var b strings.Builder
	b.WriteString(key)
	for i, seg := range segs {
		if i > 0 {
			b.WriteString(" ;")
		}
		fmt.Fprintf(&b, " %d %d", seg.PhoneID, seg.Frames)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(e.w, b.String())
	return err
}
