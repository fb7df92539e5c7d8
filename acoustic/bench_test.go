package acoustic

import (
	"math/rand"
	"testing"
)

func randomObs(dim int) []float64 {
	obs := make([]float64, dim)
	for i := range obs {
		obs[i] = rand.NormFloat64()
	}
	return obs
}

func randomObsSeq(T, dim int) [][]float64 {
	seq := make([][]float64, T)
	for t := range seq {
		seq[t] = randomObs(dim)
	}
	return seq
}

func BenchmarkGMM_LogProb_1mix_39dim(b *testing.B) {
	gmm := NewGMM(1, 39)
	obs := randomObs(39)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gmm.LogProb(obs)
	}
}

func BenchmarkGMM_LogProb_4mix_39dim(b *testing.B) {
	gmm := NewGMM(4, 39)
	obs := randomObs(39)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gmm.LogProb(obs)
	}
}

func BenchmarkGMM_LogProb_16mix_39dim(b *testing.B) {
	gmm := NewGMM(16, 39)
	obs := randomObs(39)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gmm.LogProb(obs)
	}
}

func BenchmarkGMM_LogProbBatch_500frames(b *testing.B) {
	gmm := NewGMM(4, 39)
	xs := randomObsSeq(500, 39)
	dst := make([]float64, 500)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gmm.LogProbBatch(xs, dst)
	}
}

func benchmarkAlign(b *testing.B, frames int) {
	phones := []Phoneme{"a", "k", "i", "u", "e"}
	am := makeTestModel(39, phones, []float64{0, 2, 4, 6, 8})
	lex := newTestLexicon(phones)
	compiler := NewGraphCompiler(am, lex, false)
	features := randomObsSeq(frames, 39)
	cfg := DefaultAlignConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := compiler.Compile([]int{0})
		Align(am, g, features, cfg)
	}
}

func BenchmarkAlign_100frames(b *testing.B) {
	benchmarkAlign(b, 100)
}

func BenchmarkAlign_500frames(b *testing.B) {
	benchmarkAlign(b, 500)
}
