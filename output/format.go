// Package output renders phone segments into the on-disk alignment
// encodings.
package output

// Format selects one of the output encodings.
type Format int

const (
	// FormatCustom writes "start end phone" second-resolved lines per
	// utterance, terminated by a dot.
	FormatCustom Format = iota
	// FormatMLF writes an HTK master label file with sub-state detail.
	FormatMLF
	// FormatCTM writes one "key channel start duration phone" line per
	// segment.
	FormatCTM
	// FormatLengths writes (phone-id, frame-count) pairs per segment.
	FormatLengths
	// FormatSequence writes a phone-id sequence, collapsed or per frame.
	FormatSequence
)

// String returns the flag-style name of the format.
func (f Format) String() string {
	switch f {
	case FormatCustom:
		return "custom"
	case FormatMLF:
		return "mlf"
	case FormatCTM:
		return "ctm"
	case FormatLengths:
		return "lengths"
	case FormatSequence:
		return "sequence"
	}
	return "unknown"
}

// ResolveFormat turns the historical independent selector flags into one
// Format. When several are set the precedence is fixed:
// custom > mlf > ctm > lengths > sequence.
func ResolveFormat(custom, mlf, ctm, lengths bool) Format {
	switch {
	case custom:
		return FormatCustom
	case mlf:
		return FormatMLF
	case ctm:
		return FormatCTM
	case lengths:
		return FormatLengths
	default:
		return FormatSequence
	}
}
