package acoustic

import "math"

// BoostSilence scales the mixture weights of the given silence phones'
// emitting states by factor, raising (or lowering) their emission
// likelihoods. It is the one startup-time mutation of the model; a factor
// of 1 is a no-op. Returns the number of states modified.
func (am *AcousticModel) BoostSilence(factor float64, phones []Phoneme) int {
	if factor == 1.0 || factor <= 0 {
		return 0
	}
	logFactor := math.Log(factor)
	boosted := 0
	for _, p := range phones {
		hmm := am.Phonemes[p]
		if hmm == nil {
			continue
		}
		for s := 1; s <= NumEmittingStates; s++ {
			st := hmm.States[s]
			if st == nil || st.GMM == nil {
				continue
			}
			for i := range st.GMM.Components {
				st.GMM.Components[i].LogWeight += logFactor
			}
			st.GMM.PrecomputeSoA()
			boosted++
		}
	}
	return boosted
}
