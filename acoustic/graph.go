package acoustic

import (
	"math"

	"github.com/mseki/aligner-go/internal/mathutil"
)

// Lexicon resolves word ids to pronunciations and phoneme labels to phone
// ids. It decouples graph compilation from the symbol-table packages.
type Lexicon interface {
	Pronunciation(wordID int) ([]Phoneme, bool)
	PhoneID(p Phoneme) (int, bool)
}

// phoneNode is one phone instance in the utterance automaton.
type phoneNode struct {
	phone    Phoneme
	phoneID  int
	optional bool
	hmm      *PhonemeHMM
}

// Graph is the alignment automaton compiled for one utterance: a
// left-to-right chain of phone instances, three emitting states each, with
// optional-silence detours. The graph is owned by its holder; ApplyScales
// mutates arc weights in place, and after the graph is handed to Align it
// must not be reused.
type Graph struct {
	nodes []phoneNode

	// Arc weights, per emitting state (3 per node) or per node.
	selfLoop []float64 // state class s -> s
	forward  []float64 // state class s -> s+1 (class 2 slot unused)
	entry    []float64 // per node: entry -> first emitting state
	exit     []float64 // per node: last emitting state -> exit

	starts []int   // node indices reachable at t=0
	finals []int   // node indices that may end the utterance
	preds  [][]int // per node: predecessor node indices

	scaled bool
}

// Empty reports whether the graph has no states.
func (g *Graph) Empty() bool { return g == nil || len(g.nodes) == 0 }

// NumStates returns the number of emitting states.
func (g *Graph) NumStates() int { return len(g.nodes) * NumEmittingStates }

// PhoneOf returns the phone id of an emitting state.
func (g *Graph) PhoneOf(state int) int {
	return g.nodes[state/NumEmittingStates].phoneID
}

// StateClassOf returns the intra-phone state class (0-based) of an
// emitting state.
func (g *Graph) StateClassOf(state int) int {
	return state % NumEmittingStates
}

// MinFrames returns the fewest frames any path through the graph can
// consume: every mandatory phone must visit all its emitting states.
func (g *Graph) MinFrames() int {
	n := 0
	for _, node := range g.nodes {
		if !node.optional {
			n++
		}
	}
	return n * NumEmittingStates
}

// ApplyScales scales arc weights: self-loops by selfLoopScale, all other
// transitions by transitionScale. It is applied at most once.
func (g *Graph) ApplyScales(transitionScale, selfLoopScale float64) {
	if g.scaled {
		return
	}
	g.scaled = true
	for i := range g.selfLoop {
		g.selfLoop[i] *= selfLoopScale
		g.forward[i] *= transitionScale
	}
	for i := range g.nodes {
		g.entry[i] *= transitionScale
		g.exit[i] *= transitionScale
	}
}

// GraphCompiler builds alignment graphs for word-id sequences.
type GraphCompiler struct {
	am          *AcousticModel
	lex         Lexicon
	optSil      bool
	silence     Phoneme
	defaultExit float64
}

// NewGraphCompiler creates a compiler over the given model and lexicon.
// When optSil is true an optional silence phone is allowed at the start and
// end of the utterance and between words.
func NewGraphCompiler(am *AcousticModel, lex Lexicon, optSil bool) *GraphCompiler {
	return &GraphCompiler{
		am:          am,
		lex:         lex,
		optSil:      optSil,
		silence:     PhonSil,
		defaultExit: math.Log(0.5),
	}
}

// Compile turns a word-id sequence into an alignment graph. It returns an
// empty graph when any word has no pronunciation or any phone is missing
// from the acoustic model; the caller is expected to skip the utterance.
func (c *GraphCompiler) Compile(wordIDs []int) *Graph {
	g := &Graph{}
	if len(wordIDs) == 0 {
		return g
	}

	silHMM := c.am.Phonemes[c.silence]
	useSil := c.optSil && silHMM != nil
	silID := -1
	if useSil {
		id, ok := c.lex.PhoneID(c.silence)
		if !ok {
			useSil = false
		}
		silID = id
	}

	addSil := func() {
		g.nodes = append(g.nodes, phoneNode{
			phone:    c.silence,
			phoneID:  silID,
			optional: true,
			hmm:      silHMM,
		})
	}

	if useSil {
		addSil()
	}
	for _, id := range wordIDs {
		pron, ok := c.lex.Pronunciation(id)
		if !ok || len(pron) == 0 {
			return &Graph{}
		}
		for _, p := range pron {
			hmm := c.am.Phonemes[p]
			if hmm == nil {
				return &Graph{}
			}
			phoneID, ok := c.lex.PhoneID(p)
			if !ok {
				return &Graph{}
			}
			g.nodes = append(g.nodes, phoneNode{
				phone:   p,
				phoneID: phoneID,
				hmm:     hmm,
			})
		}
		if useSil {
			addSil()
		}
	}

	c.wire(g)
	return g
}

// wire fills in arc weights and the start/final/predecessor structure.
func (c *GraphCompiler) wire(g *Graph) {
	n := len(g.nodes)
	g.selfLoop = make([]float64, n*NumEmittingStates)
	g.forward = make([]float64, n*NumEmittingStates)
	g.entry = make([]float64, n)
	g.exit = make([]float64, n)
	g.preds = make([][]int, n)

	for i, node := range g.nodes {
		for s := 1; s <= NumEmittingStates; s++ {
			j := i*NumEmittingStates + (s - 1)
			g.selfLoop[j] = node.hmm.TransLog[s][s]
			if s < NumEmittingStates {
				g.forward[j] = node.hmm.TransLog[s][s+1]
			}
		}
		g.entry[i] = node.hmm.TransLog[0][1]
		// Baum-Welch on isolated segments often leaves the exit
		// transition at LogZero; floor it like the trainer does.
		et := node.hmm.TransLog[NumEmittingStates][NumStatesPerPhoneme-1]
		if et <= mathutil.LogZero+1 {
			et = c.defaultExit
		}
		g.exit[i] = et
	}

	// Start set: first node plus everything reachable by skipping
	// leading optional nodes.
	for i := 0; i < n; i++ {
		g.starts = append(g.starts, i)
		if !g.nodes[i].optional {
			break
		}
	}
	// Final set: last node plus everything reachable backward over
	// trailing optional nodes.
	for i := n - 1; i >= 0; i-- {
		g.finals = append(g.finals, i)
		if !g.nodes[i].optional {
			break
		}
	}
	// Successors: node i connects to i+1 and, across optional nodes, to
	// each following node until the first non-optional one.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.preds[j] = append(g.preds[j], i)
			if !g.nodes[j].optional {
				break
			}
		}
	}
}
