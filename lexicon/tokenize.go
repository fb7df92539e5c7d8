package lexicon

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Tokenizer splits transcripts written without spaces into surface tokens
// before lexical segmentation. It wraps a kagome morphological analyzer
// with the bundled IPA dictionary.
type Tokenizer struct {
	t *tokenizer.Tokenizer
}

// NewTokenizer creates a tokenizer instance.
func NewTokenizer() (*Tokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Tokenizer{t: t}, nil
}

// Split breaks text into surface tokens, dropping whitespace-only tokens.
// Surfaces are returned unmodified; lexicon lookup happens in Segment.
func (tk *Tokenizer) Split(text string) []string {
	tokens := tk.t.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		out = append(out, tok.Surface)
	}
	return out
}
