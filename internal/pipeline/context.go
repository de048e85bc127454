package pipeline

import (
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// AnalysisContext is the per-clip context handed to the analysis prompt.
// A field is set only when the source data actually carried it; empty string
// means absent. Travelers is always non-nil, possibly empty.
type AnalysisContext struct {
	Travelers        []trip.Traveler
	Location         string
	StoryBeatContext string
	StoryBeatStarred bool
	RecordedAt       string
}

// HasStoryBeat reports whether the clip resolved any story-beat text.
func (c AnalysisContext) HasStoryBeat() bool {
	return c.StoryBeatContext != ""
}

// BuildContext assembles the analysis context for one clip.
//
// Story-beat precedence: a clip with a storyBeatId uses the looked-up beat
// (summary if one was cached for that ID, else the full text). If the ID does
// not resolve, the clip gets no story-beat fields at all; the legacy inline
// storyBeatContext is only consulted when no ID is present.
func BuildContext(clip *trip.Clip, travelers []trip.Traveler, lookup trip.StoryBeatLookup, summaries map[string]string) AnalysisContext {
	actx := AnalysisContext{Travelers: travelers}
	if actx.Travelers == nil {
		actx.Travelers = []trip.Traveler{}
	}

	if clip.Location != nil && clip.Location.PlaceName != "" {
		actx.Location = clip.Location.PlaceName
	}

	switch {
	case clip.StoryBeatID != "":
		if beat, ok := lookup[clip.StoryBeatID]; ok {
			text := beat.Text
			if summary, ok := summaries[beat.ID]; ok && summary != "" {
				text = summary
			}
			actx.StoryBeatContext = text
			if beat.Starred {
				actx.StoryBeatStarred = true
			}
		}
	case clip.StoryBeatContext != "":
		actx.StoryBeatContext = clip.StoryBeatContext
	}

	if clip.RecordedAt != "" {
		actx.RecordedAt = clip.RecordedAt
	}

	return actx
}
