package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/mseki/aligner-go/acoustic"
	"github.com/mseki/aligner-go/lexicon"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "Usage: lexsyms <lexicon> <words-out> <phones-out>")
		fmt.Fprintln(os.Stderr, "  Generates word and phone symbol tables from a pronunciation lexicon.")
		fmt.Fprintln(os.Stderr, "  The word table gets 'word id' lines, the phone table 'id phone' lines.")
		os.Exit(1)
	}

	dict, err := lexicon.LoadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "load lexicon: %v\n", err)
		os.Exit(1)
	}

	words := dict.Words()
	sort.Strings(words)

	phoneSet := map[string]bool{
		string(acoustic.PhonSil): true,
		string(acoustic.PhonSP):  true,
	}
	for _, entries := range dict.Entries {
		for _, e := range entries {
			for _, p := range e.Phonemes {
				phoneSet[string(p)] = true
			}
		}
	}
	phones := make([]string, 0, len(phoneSet))
	for p := range phoneSet {
		phones = append(phones, p)
	}
	sort.Strings(phones)

	if err := writeWords(os.Args[2], words); err != nil {
		fmt.Fprintf(os.Stderr, "write word table: %v\n", err)
		os.Exit(1)
	}
	if err := writePhones(os.Args[3], phones); err != nil {
		fmt.Fprintf(os.Stderr, "write phone table: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %d words, %d phones\n", len(words)+1, len(phones))
}

// writeWords assigns id 0 to the OOV marker and sequential ids to the
// lexicon words.
func writeWords(path string, words []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s 0\n", lexicon.OOVMarker)
	id := 1
	for _, word := range words {
		if word == lexicon.OOVMarker {
			continue
		}
		fmt.Fprintf(w, "%s %d\n", word, id)
		id++
	}
	return w.Flush()
}

func writePhones(path string, phones []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for id, p := range phones {
		fmt.Fprintf(w, "%d %s\n", id, p)
	}
	return w.Flush()
}
