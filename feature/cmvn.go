package feature

import "math"

// ApplyCMN subtracts the utterance-level mean from each feature dimension
// (Cepstral Mean Normalization). This removes channel and speaker-dependent
// spectral bias.
func ApplyCMN(features [][]float64) {
	ApplyCMVN(features, false)
}

// ApplyCMVN normalizes each feature dimension to zero mean and, when
// normVars is set, unit variance, using utterance-level statistics.
func ApplyCMVN(features [][]float64, normVars bool) {
	T := len(features)
	if T == 0 {
		return
	}
	dim := len(features[0])
	mean := make([]float64, dim)
	for t := 0; t < T; t++ {
		for d := 0; d < dim; d++ {
			mean[d] += features[t][d]
		}
	}
	invT := 1.0 / float64(T)
	for d := 0; d < dim; d++ {
		mean[d] *= invT
	}

	if !normVars {
		for t := 0; t < T; t++ {
			for d := 0; d < dim; d++ {
				features[t][d] -= mean[d]
			}
		}
		return
	}

	variance := make([]float64, dim)
	for t := 0; t < T; t++ {
		for d := 0; d < dim; d++ {
			diff := features[t][d] - mean[d]
			variance[d] += diff * diff
		}
	}
	invStd := make([]float64, dim)
	for d := 0; d < dim; d++ {
		v := variance[d] * invT
		if v <= 1e-10 {
			// Constant dimension: leave it centered, not scaled.
			invStd[d] = 1.0
			continue
		}
		invStd[d] = 1.0 / math.Sqrt(v)
	}
	for t := 0; t < T; t++ {
		for d := 0; d < dim; d++ {
			features[t][d] = (features[t][d] - mean[d]) * invStd[d]
		}
	}
}
