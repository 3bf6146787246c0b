package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mrlokans/gkeep2notion/internal/utils"
)

// Snapshotter writes JSON documents to a directory, one file per call.
// Dry runs use it to keep the rendered pages for inspection.
type Snapshotter struct {
	Dir string
}

func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{Dir: dir}
}

// SaveJSON writes data as indented JSON to <Dir>/<name>-<id>.json and
// returns the file name. name is sanitized; the random id keeps pages with
// the same title apart.
func (s *Snapshotter) SaveJSON(name string, data any) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.json", utils.SanitizeFilename(name), uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(s.Dir, filename), jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return filename, nil
}
