package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// Exporter saves export documents as timestamped files in a directory.
// Used for scheduled daily reports; the HTTP endpoint streams instead.
type Exporter struct {
	dir string
}

// NewExporter creates an Exporter rooted at dir, creating it if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// Save writes events in the given format to a timestamped file.
//
// Returns:
//   - string: The path of the written file
//   - error: ErrUnsupportedFormat or a filesystem failure
func (x *Exporter) Save(format string, events []event.Event) (string, error) {
	ext := format
	if format == FormatReport {
		ext = "txt"
	}

	name := fmt.Sprintf("baby_care_export_%s.%s", time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(x.dir, name)

	f, err := os.Create(path) // #nosec G304 -- path built from config dir and a timestamp
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	if err := Write(f, format, events); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}
