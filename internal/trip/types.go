package trip

// Audio type labels the analysis model may assign to a clip.
const (
	AudioTypeSpeech  = "speech"
	AudioTypeAmbient = "ambient"
	AudioTypeMixed   = "mixed"
	AudioTypeMusic   = "music"
	AudioTypeSilent  = "silent"
)

// Traveler is a named trip participant. Age and the voice reference are
// optional; a nil Age is "not recorded" and is distinct from age 0.
type Traveler struct {
	Name               string `json:"name"`
	Age                *int   `json:"age,omitempty"`
	VoiceReferenceFile string `json:"voiceReferenceFile,omitempty"`
}

// StoryBeat is a narrative text item clips may reference by ID.
type StoryBeat struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Starred bool   `json:"starred,omitempty"`
}

// Location is where a clip was recorded.
type Location struct {
	PlaceName string   `json:"placeName,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// TranscriptEntry is one attributed utterance.
type TranscriptEntry struct {
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// AudioEvent is a non-speech sound the model noticed.
type AudioEvent struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

// Analysis is the enrichment persisted onto a clip. Exactly these five
// fields; adapter side-channel metadata never lands here.
type Analysis struct {
	AudioType        string            `json:"audioType"`
	Transcript       []TranscriptEntry `json:"transcript"`
	AudioEvents      []AudioEvent      `json:"audioEvents"`
	SceneDescription string            `json:"sceneDescription"`
	EmotionalTone    string            `json:"emotionalTone"`
}

// AnalysisFailure is the error variant of an analysis result: the model
// answered, but not with usable JSON.
type AnalysisFailure struct {
	Error        string `json:"error"`
	ErrorDetails string `json:"errorDetails"`
	RawResponse  string `json:"rawResponse"`
}

// ResolvedStoryBeat is the display copy of a clip's story beat written back
// into the enriched document.
type ResolvedStoryBeat struct {
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Summary string `json:"summary,omitempty"`
	Starred bool   `json:"starred,omitempty"`
}

// Clip is one recorded snippet. A processed clip ends with exactly one of
// Analysis or AnalysisError set.
type Clip struct {
	ID         string    `json:"id,omitempty"`
	Filename   string    `json:"filename"`
	RecordedAt string    `json:"recordedAt,omitempty"`
	Location   *Location `json:"location,omitempty"`

	// New-format clips reference a story beat by ID; legacy exports inline
	// the text directly.
	StoryBeatID      string `json:"storyBeatId,omitempty"`
	StoryBeatContext string `json:"storyBeatContext,omitempty"`
	StoryBeatStarred *bool  `json:"storyBeatStarred,omitempty"`

	StoryBeat     *ResolvedStoryBeat `json:"storyBeat,omitempty"`
	Analysis      *Analysis          `json:"analysis,omitempty"`
	AnalysisError string             `json:"analysisError,omitempty"`
}

// Trip is the new-format trip header.
type Trip struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name,omitempty"`
	ExportedAt string      `json:"exportedAt,omitempty"`
	Talent     []Traveler  `json:"talent,omitempty"`
	StoryBeats []StoryBeat `json:"storyBeats,omitempty"`
}

// Processing records what produced the enriched document.
type Processing struct {
	RunID           string `json:"runId"`
	ProcessedAt     string `json:"processedAt"`
	AnalysisModel   string `json:"analysisModel,omitempty"`
	TranscribeModel string `json:"transcribeModel,omitempty"`
}

// Document is the export metadata file. Old exports put the trip name,
// travelers and story beats at the top level; new ones nest them under trip.
type Document struct {
	Trip       *Trip       `json:"trip,omitempty"`
	TripName   string      `json:"tripName,omitempty"`
	Travelers  []Traveler  `json:"travelers,omitempty"`
	StoryBeats []StoryBeat `json:"storyBeats,omitempty"`
	Clips      []*Clip     `json:"clips"`
	Processing *Processing `json:"processing,omitempty"`
}

// Name returns the trip name, preferring the new format.
func (d *Document) Name() string {
	if d.Trip != nil && d.Trip.Name != "" {
		return d.Trip.Name
	}
	if d.TripName != "" {
		return d.TripName
	}
	return "Unknown"
}

// ResolveTravelers returns the traveler roster, preferring trip.talent over
// the legacy top-level list.
func (d *Document) ResolveTravelers() []Traveler {
	if d.Trip != nil && len(d.Trip.Talent) > 0 {
		return d.Trip.Talent
	}
	return d.Travelers
}

// ResolveStoryBeats returns the story beats, preferring trip.storyBeats over
// the legacy top-level list.
func (d *Document) ResolveStoryBeats() []StoryBeat {
	if d.Trip != nil && len(d.Trip.StoryBeats) > 0 {
		return d.Trip.StoryBeats
	}
	return d.StoryBeats
}
