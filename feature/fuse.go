package feature

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned by Fuse when the input streams' row counts
// differ by more than the tolerance, or when the shortest stream is empty.
var ErrLengthMismatch = errors.New("feature stream length mismatch")

// Fuse merges per-utterance feature streams side by side into one matrix.
//
// All streams must agree on row count up to tolerance frames; the output
// has min(rowCounts) rows and the summed column width, with each stream's
// first minRows rows copied into its column block in stream order. The
// returned spread is max(rowCounts)−min(rowCounts): a nonzero spread within
// tolerance is worth a warning at the call site but is not a failure.
func Fuse(streams [][][]float64, tolerance int) ([][]float64, int, error) {
	if len(streams) == 0 {
		return nil, 0, errors.New("no feature streams")
	}
	minRows := len(streams[0])
	maxRows := minRows
	totDim := 0
	for _, s := range streams {
		rows := len(s)
		if rows < minRows {
			minRows = rows
		}
		if rows > maxRows {
			maxRows = rows
		}
		if rows > 0 {
			totDim += len(s[0])
		}
	}
	spread := maxRows - minRows
	if spread > tolerance || minRows == 0 {
		return nil, spread, fmt.Errorf("%w: %d vs. %d rows exceeds tolerance %d",
			ErrLengthMismatch, maxRows, minRows, tolerance)
	}

	out := make([][]float64, minRows)
	buf := make([]float64, minRows*totDim)
	for t := range out {
		out[t] = buf[t*totDim : (t+1)*totDim]
	}
	offset := 0
	for _, s := range streams {
		dim := len(s[0])
		for t := 0; t < minRows; t++ {
			copy(out[t][offset:offset+dim], s[t])
		}
		offset += dim
	}
	return out, spread, nil
}
