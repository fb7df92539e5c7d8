package lexicon

import "strings"

// maxMatchLen caps the forward-maximum-matching window, in runes.
const maxMatchLen = 20

// Segment splits raw transcript tokens into lexicon entries.
//
// Each token is first tried as a whole-token lexicon hit. Otherwise it is
// segmented by forward maximum matching over its rune sequence: the longest
// window (up to maxMatchLen) that matches the lexicon wins. A window that
// is a multi-rune alphanumeric run is treated as a Latin-script word: in
// vocabulary it becomes one subword; out of vocabulary it is either spelled
// out letter by letter (spellOOV) or replaced by the OOV marker. A single
// rune with no match also becomes the OOV marker. The cursor advances on
// every step, so the subwords always cover the whole token.
//
// Returns the subwords and their word ids, parallel and order-preserving.
func Segment(tokens []string, words *WordTable, caseSensitive, spellOOV bool) ([]string, []int) {
	var subwords []string
	var ids []int

	emit := func(w string) {
		id, ok := words.ID(w)
		if !ok {
			w = OOVMarker
			id, _ = words.ID(OOVMarker)
		}
		subwords = append(subwords, w)
		ids = append(ids, id)
	}

	for _, tok := range tokens {
		if !caseSensitive {
			tok = strings.ToUpper(tok)
		}
		if _, ok := words.ID(tok); ok {
			emit(tok)
			continue
		}

		runes := []rune(tok)
		length := len(runes)
		index := 0
		for index < length {
			wordLen := length - index
			if wordLen > maxMatchLen {
				wordLen = maxMatchLen
			}
			for wordLen >= 1 {
				cur := string(runes[index : index+wordLen])
				switch {
				case wordLen > 1 && isWordRun(cur):
					if _, ok := words.ID(cur); ok {
						emit(cur)
					} else if spellOOV {
						for _, c := range cur {
							emit(string(c))
						}
					} else {
						emit(OOVMarker)
					}
					index += wordLen
					wordLen = 0
				case hasWord(words, cur):
					emit(cur)
					index += wordLen
					wordLen = 0
				case wordLen == 1:
					emit(OOVMarker)
					index++
					wordLen = 0
				default:
					wordLen--
				}
			}
		}
	}
	return subwords, ids
}

func hasWord(words *WordTable, w string) bool {
	_, ok := words.ID(w)
	return ok
}

// isWordRun reports whether s consists only of ASCII word characters.
func isWordRun(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return len(s) > 0
}
