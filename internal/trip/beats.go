package trip

// StoryBeatLookup maps beat IDs to beats for per-clip resolution.
type StoryBeatLookup map[string]StoryBeat

// BuildStoryBeatLookup indexes beats by ID. Beats without an ID are dropped.
func BuildStoryBeatLookup(beats []StoryBeat) StoryBeatLookup {
	lookup := make(StoryBeatLookup, len(beats))
	for _, beat := range beats {
		if beat.ID == "" {
			continue
		}
		lookup[beat.ID] = beat
	}
	return lookup
}
