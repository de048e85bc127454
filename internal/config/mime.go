package config

import (
	"path/filepath"
	"strings"
)

// Audio MIME types by file extension.
var audioMIMETypes = map[string]string{
	".webm": "audio/webm",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// MIMEForPath returns the audio MIME type for a file path, falling back to
// the webm default exports use.
func MIMEForPath(path string) string {
	if mime, ok := audioMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "audio/webm"
}
