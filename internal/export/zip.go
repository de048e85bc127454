package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks an export ZIP into outDir and returns the export root.
// When the archive expands to a single top-level directory, that directory
// is the root; otherwise outDir itself is.
func Extract(zipPath, outDir string) (string, error) {
	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		return "", fmt.Errorf("ZIP file not found: %s", zipPath)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	slog.Info("extracting export", "archive", filepath.Base(zipPath), "dest", outDir)

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open ZIP: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractFile(f, outDir); err != nil {
			return "", err
		}
	}

	root, err := detectRoot(outDir)
	if err != nil {
		return "", err
	}

	slog.Info("extraction complete", "root", root)
	return root, nil
}

func extractFile(f *zip.File, outDir string) error {
	dest := filepath.Join(outDir, f.Name)

	// Reject entries that would escape the output directory.
	if rel, err := filepath.Rel(outDir, dest); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("ZIP entry escapes output dir: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open ZIP entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

func detectRoot(outDir string) (string, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(outDir, entries[0].Name()), nil
	}
	return outDir, nil
}
