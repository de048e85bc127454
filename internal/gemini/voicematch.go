package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/ffmpeg"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
)

// VoiceMatchAnalyzer analyzes a clip as a single concatenated file: each
// voice reference first, then the clip, with the prompt telling the model
// where each speaker's sample sits. Used when no separate diarizing
// transcription call is made.
type VoiceMatchAnalyzer struct {
	Client     *Client
	References []pipeline.VoiceReference
	WorkDir    string
}

// Analyze concatenates the references and the clip, then runs the analysis
// with voice-matching prompt sections. The temp file is removed afterwards.
func (a *VoiceMatchAnalyzer) Analyze(ctx context.Context, audioPath string, actx pipeline.AnalysisContext) (pipeline.AnalysisOutcome, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return pipeline.AnalysisOutcome{}, fmt.Errorf("audio file not found: %s", audioPath)
	}
	if len(a.References) == 0 {
		return a.Client.Analyze(ctx, audioPath, actx)
	}

	inputs := make([]string, 0, len(a.References)+1)
	for _, ref := range a.References {
		inputs = append(inputs, ref.FilePath)
	}
	inputs = append(inputs, audioPath)

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	concatPath := filepath.Join(a.WorkDir, "concat_"+base+".webm")

	durations, err := ffmpeg.ConcatFiles(ctx, inputs, concatPath)
	if err != nil {
		return pipeline.AnalysisOutcome{}, fmt.Errorf("concatenate voice references: %w", err)
	}
	defer os.Remove(concatPath)

	segments := make([]VoiceSegment, len(a.References))
	cursor := 0.0
	for i, ref := range a.References {
		segments[i] = VoiceSegment{
			Traveler: ref.Traveler,
			StartMS:  cursor,
			EndMS:    cursor + durations[i],
		}
		cursor += durations[i]
	}

	return a.Client.analyze(ctx, concatPath, actx, segments, cursor)
}
