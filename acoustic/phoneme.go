package acoustic

// Phoneme is a modeled speech sound unit. The inventory is not fixed: it
// comes from the acoustic model and the phone symbol table.
type Phoneme string

const (
	// PhonSil is long silence (utterance boundaries, pauses).
	PhonSil Phoneme = "sil"
	// PhonSP is an optional short pause between words.
	PhonSP Phoneme = "sp"
)

// NumEmittingStates is the number of emitting states per phoneme HMM.
const NumEmittingStates = 3

// NumStatesPerPhoneme is the total states: entry + emitting + exit.
const NumStatesPerPhoneme = NumEmittingStates + 2

// DefaultSilencePhones returns the phones treated as silence for
// emission-weight boosting.
func DefaultSilencePhones() []Phoneme {
	return []Phoneme{PhonSil, PhonSP}
}
