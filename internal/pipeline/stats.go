package pipeline

// Stats accumulates per-run processing counters. Counts only increase; each
// run owns a fresh instance.
type Stats struct {
	ProcessedCount      int
	ErrorCount          int
	AudioTypeCounts     map[string]int
	TotalUtterances     int
	TotalAudioEvents    int
	ClipsWithStoryBeats int
}

// NewStats returns a zeroed accumulator.
func NewStats() *Stats {
	return &Stats{AudioTypeCounts: make(map[string]int)}
}
