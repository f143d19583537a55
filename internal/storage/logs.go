// Package storage saves the captured output of each pipeline stage to a file.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogStorage manages per-stage log files under a base directory.
type LogStorage struct {
	BaseDir string
}

// NewLogStorage creates a log storage handler rooted at baseDir.
func NewLogStorage(baseDir string) *LogStorage {
	return &LogStorage{BaseDir: baseDir}
}

// SaveLog writes the output of one stage and returns the file path.
// Filenames carry the run id, stage name and a timestamp for uniqueness.
func (ls *LogStorage) SaveLog(runID, stage, output string) (string, error) {
	if err := os.MkdirAll(ls.BaseDir, 0755); err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s_%s.log", sanitize(runID), sanitize(stage), timestamp)
	filePath := filepath.Join(ls.BaseDir, filename)

	if err := os.WriteFile(filePath, []byte(output), 0644); err != nil {
		return "", err
	}
	return filePath, nil
}

// sanitize strips characters that are unsafe in filenames.
func sanitize(name string) string {
	clean := make([]rune, 0, len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return "stage"
	}
	return string(clean)
}
