package shared

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates the application logger writing to stderr and, when a
// log directory is given, to a session log file as well.
func NewLogger(logDir string) *log.Logger {
	var w io.Writer = os.Stderr

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err == nil {
			name := "chronosonic-" + time.Now().Format("20060102-150405") + ".log"
			if f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				w = io.MultiWriter(os.Stderr, f)
			}
		}
	}

	logger := log.New(w)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.Kitchen)
	return logger
}

// GenerateID returns a fresh unique identifier for temp files and
// unnamed playlists.
func GenerateID() string {
	return uuid.NewString()
}
