package analysis

import "github.com/otherjamesbrown/conversa/pkg/transcript"

// LongStreakThreshold is the run length a streak must exceed to count as long.
const LongStreakThreshold = 3

// StreakEntry summarizes one author's consecutive-message runs.
type StreakEntry struct {
	Author string `json:"author" yaml:"author"`
	// Max is the longest committed run.
	Max int `json:"max" yaml:"max"`
	// Mean averages the runs longer than LongStreakThreshold, 0 when none.
	Mean float64 `json:"mean" yaml:"mean"`
	// Long lists the runs longer than LongStreakThreshold in order.
	Long []int `json:"long,omitempty" yaml:"long,omitempty"`
}

// Streaks ranks authors by their longest run of consecutive messages and
// returns the top n. A run is committed only when a different author
// speaks, so the run that ends the transcript never counts.
func Streaks(msgs []transcript.Message, n int) []StreakEntry {
	maxes := NewCounter[string]()
	long := make(map[string][]int)

	var current string
	run := 0
	for i, m := range msgs {
		if i > 0 && m.Author == current {
			run++
			continue
		}
		if i > 0 {
			maxes.Max(current, run)
			if run > LongStreakThreshold {
				long[current] = append(long[current], run)
			}
		}
		current = m.Author
		run = 1
	}

	top := maxes.MostCommon(n)
	out := make([]StreakEntry, 0, len(top))
	for _, e := range top {
		entry := StreakEntry{Author: e.Key, Max: e.Count, Long: long[e.Key]}
		if runs := long[e.Key]; len(runs) > 0 {
			sum := 0
			for _, r := range runs {
				sum += r
			}
			entry.Mean = float64(sum) / float64(len(runs))
		}
		out = append(out, entry)
	}
	return out
}
