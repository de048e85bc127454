package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// AnalysisMeta is the side-channel an analyzer attaches to its result. It is
// kept for logging and debugging only and must never reach the saved clip.
type AnalysisMeta struct {
	Prompt      string
	RawResponse string
}

// AnalysisOutcome is what the multimodal model produced for one clip:
// exactly one of Analysis or Failure is set.
type AnalysisOutcome struct {
	Analysis *trip.Analysis
	Failure  *trip.AnalysisFailure
	Meta     AnalysisMeta
}

// Analyzer sends one clip plus its context to the multimodal model.
// A returned error is a hard failure (missing file, transport); a model
// response that could not be parsed comes back as Outcome.Failure.
type Analyzer interface {
	Analyze(ctx context.Context, audioPath string, actx AnalysisContext) (AnalysisOutcome, error)
}

// Transcriber produces a diarized transcript for one clip, using voice
// references as known-speaker hints when available.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, refs []VoiceReference) ([]trip.TranscriptEntry, error)
}

// Processor drives the per-clip pipeline: build context, transcribe
// (hybrid mode), analyze, merge, record. Failures are trapped at the clip
// boundary so one bad clip never aborts the batch.
type Processor struct {
	Travelers   []trip.Traveler
	Lookup      trip.StoryBeatLookup
	Summaries   map[string]string
	Root        string
	References  []VoiceReference
	Analyzer    Analyzer
	Transcriber Transcriber // nil disables the separate transcription call
	DryRun      bool
}

// ProcessClip runs one clip through the pipeline, mutating the clip record
// and stats. The only error it returns is context cancellation; everything
// else ends up on the clip as analysisError.
func (p *Processor) ProcessClip(ctx context.Context, clip *trip.Clip, stats *Stats) error {
	if err := p.processClip(ctx, clip, stats); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		slog.Warn("clip failed", "clip", clip.Filename, "err", err)
		clip.Analysis = nil
		clip.AnalysisError = err.Error()
		stats.ErrorCount++
	}
	return nil
}

func (p *Processor) processClip(ctx context.Context, clip *trip.Clip, stats *Stats) error {
	actx := BuildContext(clip, p.Travelers, p.Lookup, p.Summaries)
	p.attachStoryBeat(clip)

	audioPath := filepath.Join(p.Root, clip.Filename)
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}

	if p.DryRun {
		p.logDryRun(clip, audioPath, actx)
		return nil
	}

	var transcript []trip.TranscriptEntry
	if p.Transcriber != nil {
		entries, err := p.Transcriber.Transcribe(ctx, audioPath, p.References)
		if err != nil {
			return fmt.Errorf("transcription: %w", err)
		}
		transcript = entries
	}

	outcome, err := p.Analyzer.Analyze(ctx, audioPath, actx)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if outcome.Failure != nil {
		slog.Warn("analysis failed", "clip", clip.Filename, "err", outcome.Failure.Error)
		clip.Analysis = nil
		clip.AnalysisError = outcome.Failure.Error
		stats.ErrorCount++
		return nil
	}

	analysis := outcome.Analysis
	if p.Transcriber != nil {
		// The diarized transcript is authoritative; the analysis model's own
		// attempt is discarded.
		analysis.Transcript = transcript
	}
	if analysis.Transcript == nil {
		analysis.Transcript = []trip.TranscriptEntry{}
	}
	if analysis.AudioEvents == nil {
		analysis.AudioEvents = []trip.AudioEvent{}
	}

	clip.Analysis = analysis
	clip.AnalysisError = ""

	stats.ProcessedCount++
	stats.AudioTypeCounts[analysis.AudioType]++
	stats.TotalUtterances += len(analysis.Transcript)
	stats.TotalAudioEvents += len(analysis.AudioEvents)
	if actx.HasStoryBeat() {
		stats.ClipsWithStoryBeats++
	}

	slog.Info("clip analyzed",
		"clip", clip.Filename,
		"audio_type", analysis.AudioType,
		"utterances", len(analysis.Transcript),
		"audio_events", len(analysis.AudioEvents))
	return nil
}

// attachStoryBeat writes the resolved display copy of a new-format clip's
// story beat onto the output record.
func (p *Processor) attachStoryBeat(clip *trip.Clip) {
	if clip.StoryBeatID == "" {
		return
	}
	beat, ok := p.Lookup[clip.StoryBeatID]
	if !ok {
		return
	}
	clip.StoryBeat = &trip.ResolvedStoryBeat{
		ID:      beat.ID,
		Text:    beat.Text,
		Summary: p.Summaries[beat.ID],
		Starred: beat.Starred,
	}
}

func (p *Processor) logDryRun(clip *trip.Clip, audioPath string, actx AnalysisContext) {
	location := "N/A"
	if actx.Location != "" {
		location = actx.Location
	}
	slog.Info("[DRY RUN] would analyze",
		"clip", audioPath,
		"travelers", len(actx.Travelers),
		"location", location,
		"story_beat", actx.HasStoryBeat())
	if len(p.References) > 0 {
		names := make([]string, 0, len(p.References))
		for _, ref := range p.References {
			names = append(names, ref.Traveler.Name)
		}
		slog.Info("[DRY RUN] voice references", "speakers", names)
	}
}
