package config

// Config holds the full application configuration.
type Config struct {
	// Model identifiers.
	AnalysisModel   string
	TranscribeModel string
	SummaryModel    string

	// Vendor endpoints.
	GeminiBaseURL        string
	TranscriptionsAPIURL string

	// DefaultAudioMIME is used when an extension is unrecognized and for
	// concatenated voice-reference files.
	DefaultAudioMIME string

	// SummaryBypassChars skips summarization for story beats shorter than
	// this many characters.
	SummaryBypassChars int

	// LegacyVoiceReferenceName is the shared reference filename old exports
	// placed at the archive root.
	LegacyVoiceReferenceName string

	OutputDir          string
	APIRateLimitPerMin int
}

// Default returns a Config with the defaults the pipeline ships with.
func Default() *Config {
	return &Config{
		AnalysisModel:   "gemini-3-flash-preview",
		TranscribeModel: "gpt-4o-transcribe-diarize",
		SummaryModel:    "gpt-4o-mini",

		GeminiBaseURL:        "https://generativelanguage.googleapis.com/v1beta",
		TranscriptionsAPIURL: "https://api.openai.com/v1/audio/transcriptions",

		DefaultAudioMIME: "audio/webm",

		SummaryBypassChars: 200,

		LegacyVoiceReferenceName: "voice_reference.webm",

		OutputDir:          "./output",
		APIRateLimitPerMin: 30,
	}
}
