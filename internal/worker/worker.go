package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/config"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/export"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/ffmpeg"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/gemini"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/pipeline"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/summary"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/transcribe"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// Options configures the worker.
type Options struct {
	ZipPath         string
	OutputDir       string
	DryRun          bool
	ShowTranscripts bool
	AnalysisOnly    bool
	RateLimitPerMin int
	AnalysisModel   string
	TranscribeModel string

	GeminiAPIKey string
	OpenAIAPIKey string
}

// Run is the top-level orchestrator for the enrichment pipeline.
func Run(ctx context.Context, opts Options) error {
	cfg := config.Default()
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.AnalysisModel != "" {
		cfg.AnalysisModel = opts.AnalysisModel
	}
	if opts.TranscribeModel != "" {
		cfg.TranscribeModel = opts.TranscribeModel
	}
	if opts.RateLimitPerMin > 0 {
		cfg.APIRateLimitPerMin = opts.RateLimitPerMin
	}

	root, err := export.Extract(opts.ZipPath, cfg.OutputDir)
	if err != nil {
		return err
	}

	doc, err := trip.Load(filepath.Join(root, "metadata.json"))
	if err != nil {
		return err
	}

	logTripSummary(doc)

	travelers := doc.ResolveTravelers()
	lookup := trip.BuildStoryBeatLookup(doc.ResolveStoryBeats())

	// Voice references resolve once per run, not per clip.
	refs := pipeline.ResolveVoiceReferences(root, travelers)
	slog.Info("voice reference coverage", "summary", pipeline.CoverageSummary(travelers, refs))
	if len(refs) == 0 && pipeline.DetectLegacyVoiceReference(root, cfg.LegacyVoiceReferenceName) {
		slog.Warn("legacy shared voice reference detected; this format is no longer supported, continuing without voice references",
			"file", cfg.LegacyVoiceReferenceName)
	}

	// Story beats likewise summarize once, cached by beat ID.
	var summaries map[string]string
	if !opts.DryRun && opts.OpenAIAPIKey != "" {
		summarizer := summary.NewSummarizer(opts.OpenAIAPIKey, cfg.SummaryModel, cfg.SummaryBypassChars)
		summaries = summarizer.SummarizeBeats(ctx, doc.Clips, lookup)
		if len(summaries) > 0 {
			slog.Info("story beats summarized", "count", len(summaries))
		}
	}

	analyzer, transcriber := buildAdapters(cfg, opts, refs)

	proc := &pipeline.Processor{
		Travelers:   travelers,
		Lookup:      lookup,
		Summaries:   summaries,
		Root:        root,
		References:  refs,
		Analyzer:    analyzer,
		Transcriber: transcriber,
		DryRun:      opts.DryRun,
	}

	stats := pipeline.NewStats()
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.APIRateLimitPerMin)/60.0), 1)

	for i, clip := range doc.Clips {
		slog.Info("processing clip",
			"clip", fmt.Sprintf("%d/%d", i+1, len(doc.Clips)),
			"percent", (i+1)*100/len(doc.Clips),
			"file", clip.Filename)

		if !opts.DryRun {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := proc.ProcessClip(ctx, clip, stats); err != nil {
			return err
		}

		if opts.ShowTranscripts && clip.Analysis != nil && len(clip.Analysis.Transcript) > 0 {
			echoTranscript(clip)
		}
	}

	if !opts.DryRun {
		doc.Processing = &trip.Processing{
			RunID:           uuid.NewString(),
			ProcessedAt:     time.Now().UTC().Format(time.RFC3339),
			AnalysisModel:   cfg.AnalysisModel,
			TranscribeModel: transcribeModelLabel(cfg, opts),
		}

		outPath := filepath.Join(cfg.OutputDir, "enriched_metadata.json")
		if err := trip.Save(doc, outPath); err != nil {
			return err
		}
		slog.Info("enriched metadata saved", "path", outPath)
	}

	logFinalSummary(stats, len(doc.Clips), opts.DryRun)
	return nil
}

func buildAdapters(cfg *config.Config, opts Options, refs []pipeline.VoiceReference) (pipeline.Analyzer, pipeline.Transcriber) {
	client := gemini.NewClient(opts.GeminiAPIKey, cfg.AnalysisModel, cfg.GeminiBaseURL)

	if !opts.AnalysisOnly {
		return client, transcribe.NewClient(opts.OpenAIAPIKey, cfg.TranscribeModel, cfg.TranscriptionsAPIURL)
	}

	// Analysis-only mode: no separate transcription call. If voice samples
	// resolved, fold them into the analysis as a concatenated file so the
	// model can still attribute speakers by name.
	if len(refs) > 0 {
		if ffmpeg.Available() {
			return &gemini.VoiceMatchAnalyzer{Client: client, References: refs, WorkDir: cfg.OutputDir}, nil
		}
		slog.Warn("ffmpeg not found; voice references will not be used in analysis-only mode")
	}
	return client, nil
}

func transcribeModelLabel(cfg *config.Config, opts Options) string {
	if opts.AnalysisOnly {
		return ""
	}
	return cfg.TranscribeModel
}

func logTripSummary(doc *trip.Document) {
	slog.Info("trip loaded", "name", doc.Name(), "clips", len(doc.Clips))
	if doc.Trip != nil {
		if doc.Trip.ID != "" {
			slog.Info("trip id", "id", doc.Trip.ID)
		}
		if doc.Trip.ExportedAt != "" {
			slog.Info("trip exported", "at", doc.Trip.ExportedAt)
		}
	}

	travelers := doc.ResolveTravelers()
	if len(travelers) == 0 {
		slog.Info("travelers: none specified")
		return
	}
	names := make([]string, len(travelers))
	for i, t := range travelers {
		names[i] = gemini.FormatTraveler(t)
	}
	slog.Info("travelers", "roster", strings.Join(names, ", "))
}

func echoTranscript(clip *trip.Clip) {
	fmt.Printf("\nTranscript for %s:\n", clip.Filename)
	for _, u := range clip.Analysis.Transcript {
		fmt.Printf("  [%s] %s: %s\n", u.Timestamp, u.Speaker, u.Text)
	}
	fmt.Println()
}

func logFinalSummary(stats *pipeline.Stats, numClips int, dryRun bool) {
	if dryRun {
		slog.Info("dry run complete", "clips", numClips)
		return
	}

	slog.Info("done", "processed", fmt.Sprintf("%d/%d", stats.ProcessedCount, numClips))
	if stats.ErrorCount > 0 {
		slog.Warn("some clips failed", "errors", stats.ErrorCount)
	}

	if len(stats.AudioTypeCounts) > 0 {
		types := make([]string, 0, len(stats.AudioTypeCounts))
		for audioType := range stats.AudioTypeCounts {
			types = append(types, audioType)
		}
		sort.Strings(types)

		parts := make([]string, len(types))
		for i, audioType := range types {
			parts[i] = fmt.Sprintf("%d %s", stats.AudioTypeCounts[audioType], audioType)
		}
		slog.Info("audio type breakdown", "types", strings.Join(parts, ", "))
	}

	slog.Info("totals",
		"utterances", stats.TotalUtterances,
		"audio_events", stats.TotalAudioEvents,
		"clips_with_story_beats", stats.ClipsWithStoryBeats)
}
