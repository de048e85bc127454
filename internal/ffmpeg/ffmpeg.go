package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Available returns true if ffmpeg is on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDurationMS uses ffprobe to get a file's duration in milliseconds.
func ProbeDurationMS(ctx context.Context, path string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", probe.Format.Duration, err)
	}
	return dur * 1000, nil
}

// ConcatFiles concatenates the inputs into outputPath, re-encoding to opus so
// mixed source codecs still produce one coherent stream. Returns each input's
// duration in milliseconds, in input order.
func ConcatFiles(ctx context.Context, inputs []string, outputPath string) ([]float64, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files to concatenate")
	}

	durations := make([]float64, len(inputs))
	for i, input := range inputs {
		dur, err := ProbeDurationMS(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", filepath.Base(input), err)
		}
		durations[i] = dur
	}

	listPath := outputPath + ".txt"
	if err := writeConcatList(listPath, inputs); err != nil {
		return nil, err
	}
	defer os.Remove(listPath)

	slog.Debug("concatenating audio", "inputs", len(inputs), "output", filepath.Base(outputPath))

	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:a", "libopus",
		"-y",
		outputPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg concat failed: %w\n%s", err, string(out))
	}
	return durations, nil
}

func writeConcatList(listPath string, inputs []string) error {
	var sb strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		// Concat-demuxer quoting: single quotes, embedded quotes escaped.
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
