package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/internal/trip"
)

// VoiceReference pairs a traveler with a voice sample that exists on disk.
type VoiceReference struct {
	Traveler trip.Traveler
	FilePath string
}

// ResolveVoiceReferences matches travelers to their voice sample files under
// the extracted export root, preserving traveler order. Travelers without a
// reference, or whose referenced file is missing, are skipped silently;
// partial coverage is expected, not an error.
func ResolveVoiceReferences(extractedRoot string, travelers []trip.Traveler) []VoiceReference {
	var refs []VoiceReference
	for _, t := range travelers {
		if t.VoiceReferenceFile == "" {
			continue
		}
		path := filepath.Join(extractedRoot, t.VoiceReferenceFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		refs = append(refs, VoiceReference{Traveler: t, FilePath: path})
	}
	return refs
}

// DetectLegacyVoiceReference reports whether an old-format shared reference
// file sits at the export root. That format is recognized but not usable.
func DetectLegacyVoiceReference(extractedRoot, legacyName string) bool {
	_, err := os.Stat(filepath.Join(extractedRoot, legacyName))
	return err == nil
}

// VoiceCoverage splits the traveler roster into those with a resolved
// reference and those without.
func VoiceCoverage(travelers []trip.Traveler, refs []VoiceReference) (covered, missing []string) {
	have := make(map[string]bool, len(refs))
	for _, ref := range refs {
		have[ref.Traveler.Name] = true
	}
	for _, t := range travelers {
		if have[t.Name] {
			covered = append(covered, t.Name)
		} else {
			missing = append(missing, t.Name)
		}
	}
	return covered, missing
}

// CoverageSummary renders the voice-reference coverage for operator output.
func CoverageSummary(travelers []trip.Traveler, refs []VoiceReference) string {
	if len(travelers) == 0 {
		return "no travelers listed in metadata"
	}
	covered, missing := VoiceCoverage(travelers, refs)
	if len(covered) == 0 {
		return fmt.Sprintf("no voice references resolved for %d travelers", len(travelers))
	}
	s := "voice references: " + strings.Join(covered, ", ")
	if len(missing) > 0 {
		s += "; missing: " + strings.Join(missing, ", ")
	}
	return s
}
