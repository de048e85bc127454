package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/config"
	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/worker"
)

var processCmd = &cobra.Command{
	Use:   "process <export-zip>",
	Short: "Process an export ZIP with AI audio analysis",
	Long: `Process extracts a Travel Chronicle export ZIP, runs every audio clip
through transcription and multimodal analysis, and writes the enriched
metadata document alongside the extracted files.

Credentials come from the environment (or a .env file): GEMINI_API_KEY is
always required, OPENAI_API_KEY unless --analysis-only is set. A dry run
needs neither.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var (
	outputDir       string
	dryRun          bool
	showTranscripts bool
	analysisOnly    bool
	rateLimit       int
	analysisModel   string
	transcribeModel string
)

func init() {
	defaults := config.Default()

	processCmd.Flags().StringVarP(&outputDir, "output", "o", defaults.OutputDir, "output directory for extraction and results")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be processed without calling any API")
	processCmd.Flags().BoolVarP(&showTranscripts, "show-transcripts", "t", false, "echo each clip's full transcript")
	processCmd.Flags().BoolVar(&analysisOnly, "analysis-only", false, "skip the separate diarized transcription call")
	processCmd.Flags().IntVar(&rateLimit, "rate-limit", defaults.APIRateLimitPerMin, "API requests per minute")
	processCmd.Flags().StringVar(&analysisModel, "analysis-model", defaults.AnalysisModel, "multimodal analysis model ID")
	processCmd.Flags().StringVar(&transcribeModel, "transcribe-model", defaults.TranscribeModel, "diarizing transcription model ID")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	zipPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		return fmt.Errorf("ZIP file not found: %s", args[0])
	}

	// .env is optional; real environment variables win either way.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	openAIKey := os.Getenv("OPENAI_API_KEY")

	if !dryRun {
		if geminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not found in environment or .env file")
		}
		if !analysisOnly && openAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not found in environment or .env file (use --analysis-only to skip transcription)")
		}
	}

	// Graceful cancellation: SIGINT aborts without a partial save.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := worker.Options{
		ZipPath:         zipPath,
		OutputDir:       outputDir,
		DryRun:          dryRun,
		ShowTranscripts: showTranscripts,
		AnalysisOnly:    analysisOnly,
		RateLimitPerMin: rateLimit,
		AnalysisModel:   analysisModel,
		TranscribeModel: transcribeModel,
		GeminiAPIKey:    geminiKey,
		OpenAIAPIKey:    openAIKey,
	}

	if err := worker.Run(ctx, opts); err != nil {
		return err
	}

	if !quiet {
		slog.Info("done")
	}
	return nil
}
