package acoustic

import (
	"errors"
	"fmt"

	"github.com/mseki/aligner-go/internal/mathutil"
)

// ErrNoPath is returned when no valid alignment path survives, even at the
// retry beam.
var ErrNoPath = errors.New("no valid alignment path")

// AlignConfig holds alignment search parameters.
type AlignConfig struct {
	AcousticScale   float64 // scale on emission log-likelihoods
	TransitionScale float64 // scale on non-self-loop transitions
	SelfLoopScale   float64 // scale on self-loop transitions
	Beam            float64 // pruning beam
	RetryBeam       float64 // relaxed beam for one retry; 0 disables retry
}

// Validate rejects beam settings that cannot work: a retry beam narrower
// than the first-pass beam could never rescue a pruned-out path.
func (c AlignConfig) Validate() error {
	if c.RetryBeam > 0 && c.RetryBeam < c.Beam {
		return fmt.Errorf("retry beam %.1f is narrower than beam %.1f", c.RetryBeam, c.Beam)
	}
	return nil
}

// DefaultAlignConfig returns the standard alignment parameters.
func DefaultAlignConfig() AlignConfig {
	return AlignConfig{
		AcousticScale:   0.1,
		TransitionScale: 1.0,
		SelfLoopScale:   0.1,
		Beam:            200.0,
		RetryBeam:       800.0,
	}
}

// Result is a frame-level alignment: one emitting graph state per frame
// plus the path score. StatePath is empty on failure.
type Result struct {
	StatePath []int
	Score     float64
	Retried   bool
}

// Align performs beam-pruned Viterbi alignment of the feature sequence
// against the graph. Align takes ownership of the graph: arc weights are
// scaled in place, after which the graph stays valid only as a read-only
// transition-info view. When the path is pruned away at the configured
// beam, the search is retried once with RetryBeam before giving up.
func Align(am *AcousticModel, g *Graph, features [][]float64, cfg AlignConfig) (Result, error) {
	if g.Empty() {
		return Result{}, errors.New("empty alignment graph")
	}
	T := len(features)
	if T == 0 {
		return Result{}, errors.New("no feature frames")
	}
	if dim := len(features[0]); dim != am.FeatureDim {
		return Result{}, fmt.Errorf("feature dimension %d does not match model dimension %d",
			dim, am.FeatureDim)
	}
	if T < g.MinFrames() { // cannot even traverse the shortest path
		return Result{}, ErrNoPath
	}

	g.ApplyScales(cfg.TransitionScale, cfg.SelfLoopScale)

	emit := computeEmissions(g, features, cfg.AcousticScale)

	path, score, ok := viterbi(g, emit, cfg.Beam)
	if ok {
		return Result{StatePath: path, Score: score}, nil
	}
	if cfg.RetryBeam > 0 && cfg.RetryBeam > cfg.Beam {
		path, score, ok = viterbi(g, emit, cfg.RetryBeam)
		if ok {
			return Result{StatePath: path, Score: score, Retried: true}, nil
		}
	}
	return Result{}, ErrNoPath
}

// computeEmissions precomputes scaled emission log-likelihoods emit[t][j].
// Iterates state-outer, frame-inner for cache locality (GMM SoA pattern).
func computeEmissions(g *Graph, features [][]float64, acousticScale float64) [][]float64 {
	T := len(features)
	S := g.NumStates()
	emit := mathutil.NewMat(T, S)
	col := make([]float64, T)
	for j := 0; j < S; j++ {
		node := g.nodes[j/NumEmittingStates]
		s := j%NumEmittingStates + 1
		node.hmm.States[s].GMM.LogProbBatch(features, col)
		for t := 0; t < T; t++ {
			emit[t][j] = acousticScale * col[t]
		}
	}
	return emit
}

func viterbi(g *Graph, emit [][]float64, beam float64) ([]int, float64, bool) {
	T := len(emit)
	S := g.NumStates()

	prev := mathutil.NewVecFill(S, mathutil.LogZero)
	curr := mathutil.NewVecFill(S, mathutil.LogZero)

	bp := make([][]int32, T)
	for t := range bp {
		bp[t] = make([]int32, S)
	}

	// Initialize t=0: entry states of the start set.
	for _, i := range g.starts {
		j := i * NumEmittingStates
		prev[j] = g.entry[i] + emit[0][j]
	}

	for t := 1; t < T; t++ {
		mathutil.FillVec(curr, mathutil.LogZero)
		best := mathutil.LogZero

		for j := 0; j < S; j++ {
			i := j / NumEmittingStates
			s := j % NumEmittingStates

			bestScore := mathutil.LogZero
			bestPrev := int32(0)

			// Self-loop.
			if score := prev[j] + g.selfLoop[j]; score > bestScore {
				bestScore = score
				bestPrev = int32(j)
			}
			// Intra-phone forward.
			if s >= 1 {
				prevJ := j - 1
				if score := prev[prevJ] + g.forward[prevJ]; score > bestScore {
					bestScore = score
					bestPrev = int32(prevJ)
				}
			}
			// Cross-phone: exit of a predecessor into our entry.
			if s == 0 {
				for _, p := range g.preds[i] {
					prevJ := p*NumEmittingStates + (NumEmittingStates - 1)
					score := prev[prevJ] + g.exit[p] + g.entry[i]
					if score > bestScore {
						bestScore = score
						bestPrev = int32(prevJ)
					}
				}
			}

			if bestScore > mathutil.LogZero+1 {
				curr[j] = bestScore + emit[t][j]
				if curr[j] > best {
					best = curr[j]
				}
			}
			bp[t][j] = bestPrev
		}

		if best <= mathutil.LogZero+1 {
			return nil, 0, false
		}
		// Beam pruning relative to the frame's best hypothesis.
		thresh := best - beam
		for j := 0; j < S; j++ {
			if curr[j] < thresh {
				curr[j] = mathutil.LogZero
			}
		}

		prev, curr = curr, prev
	}

	// Termination: best final-set exit state.
	bestJ := -1
	bestScore := mathutil.LogZero
	for _, i := range g.finals {
		j := i*NumEmittingStates + (NumEmittingStates - 1)
		score := prev[j] + g.exit[i]
		if score > bestScore {
			bestScore = score
			bestJ = j
		}
	}
	if bestJ < 0 || bestScore <= mathutil.LogZero+1 {
		return nil, 0, false
	}

	path := make([]int, T)
	path[T-1] = bestJ
	for t := T - 1; t > 0; t-- {
		path[t-1] = int(bp[t][path[t]])
	}
	return path, bestScore, true
}
