package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OOVMarker is the word emitted for input the lexicon cannot cover.
const OOVMarker = "<UNK>"

// WordTable maps words to integer ids and back. It is loaded once at
// startup and never modified afterwards.
type WordTable struct {
	ids   map[string]int
	words map[int]string
}

// LoadWordTable reads a word symbol table of "word id" lines.
func LoadWordTable(r io.Reader) (*WordTable, error) {
	t := &WordTable{
		ids:   make(map[string]int),
		words: make(map[int]string),
	}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("word table line %d: expected 2 fields, got %d", lineNum, len(fields))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("word table line %d: bad id %q: %w", lineNum, fields[1], err)
		}
		t.ids[fields[0]] = id
		t.words[id] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadWordTableFile is a convenience wrapper that opens a file path.
func LoadWordTableFile(path string) (*WordTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadWordTable(f)
}

// ID returns the id for a word.
func (t *WordTable) ID(word string) (int, bool) {
	id, ok := t.ids[word]
	return id, ok
}

// Word returns the word for an id.
func (t *WordTable) Word(id int) (string, bool) {
	w, ok := t.words[id]
	return w, ok
}

// Len returns the number of entries.
func (t *WordTable) Len() int { return len(t.ids) }

// PhoneTable maps phone ids to phone labels and back. Immutable after load.
type PhoneTable struct {
	phones map[int]string
	ids    map[string]int
}

// LoadPhoneTable reads a phone symbol table of "id phone" lines.
func LoadPhoneTable(r io.Reader) (*PhoneTable, error) {
	t := &PhoneTable{
		phones: make(map[int]string),
		ids:    make(map[string]int),
	}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("phone table line %d: expected 2 fields, got %d", lineNum, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("phone table line %d: bad id %q: %w", lineNum, fields[0], err)
		}
		t.phones[id] = fields[1]
		t.ids[fields[1]] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadPhoneTableFile is a convenience wrapper that opens a file path.
func LoadPhoneTableFile(path string) (*PhoneTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPhoneTable(f)
}

// Phone returns the label for a phone id.
func (t *PhoneTable) Phone(id int) (string, bool) {
	p, ok := t.phones[id]
	return p, ok
}

// ID returns the id for a phone label.
func (t *PhoneTable) ID(phone string) (int, bool) {
	id, ok := t.ids[phone]
	return id, ok
}

// Len returns the number of entries.
func (t *PhoneTable) Len() int { return len(t.phones) }
