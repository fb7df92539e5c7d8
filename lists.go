package aligner

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ScpReader iterates a whitespace-delimited audio list of "key path"
// lines, in file order.
type ScpReader struct {
	scanner *bufio.Scanner
	key     string
	path    string
	err     error
	line    int
}

// NewScpReader creates a reader over an audio list.
func NewScpReader(r io.Reader) *ScpReader {
	return &ScpReader{scanner: bufio.NewScanner(r)}
}

// Next advances to the next entry. It returns false at end of input or on
// a malformed line; check Err afterwards.
func (s *ScpReader) Next() bool {
	for s.scanner.Scan() {
		s.line++
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			s.err = fmt.Errorf("audio list line %d: expected \"key path\", got %d fields", s.line, len(fields))
			return false
		}
		s.key, s.path = fields[0], fields[1]
		return true
	}
	s.err = s.scanner.Err()
	return false
}

// Key returns the current utterance key.
func (s *ScpReader) Key() string { return s.key }

// Path returns the current waveform path.
func (s *ScpReader) Path() string { return s.path }

// Err returns the first error encountered, if any.
func (s *ScpReader) Err() error { return s.err }

// TranscriptReader iterates transcript lines of "key token token ...",
// one utterance per line, in the same order as the audio list.
type TranscriptReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewTranscriptReader creates a reader over a transcript list.
func NewTranscriptReader(r io.Reader) *TranscriptReader {
	return &TranscriptReader{scanner: bufio.NewScanner(r)}
}

// Next returns the next utterance's key and tokens. Exhausting the list
// while audio entries remain is an error: the lists must correspond 1:1.
func (t *TranscriptReader) Next() (string, []string, error) {
	for t.scanner.Scan() {
		t.line++
		line := strings.TrimSpace(t.scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return "", nil, fmt.Errorf("transcript line %d: empty transcript for key %q", t.line, line)
		}
		return fields[0], fields[1:], nil
	}
	if err := t.scanner.Err(); err != nil {
		return "", nil, err
	}
	return "", nil, io.EOF
}

// LoadWarpMap reads "key warp" lines mapping utterance or speaker ids to
// VTLN warp factors.
func LoadWarpMap(r io.Reader) (map[string]float64, error) {
	m := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("warp map line %d: expected \"key warp\"", line)
		}
		warp, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("warp map line %d: bad warp %q: %w", line, fields[1], err)
		}
		m[fields[0]] = warp
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadKeyMap reads "key value" lines, e.g. an utterance-to-speaker map.
func LoadKeyMap(r io.Reader) (map[string]string, error) {
	m := make(map[string]string)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("key map line %d: expected \"key value\"", line)
		}
		m[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
