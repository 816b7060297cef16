package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trainfetch/trainfetch/internal/model"
)

// DatasetWriter persists the generated dataset file.
//
// The dataset is the run's primary artifact, distinct from the run summary
// the Writer implementations render. It is always pretty-printed: the file
// is reviewed in diffs and pull requests, where compact JSON is unreadable.
type DatasetWriter struct {
	// perm is the file mode for the dataset file.
	perm os.FileMode
}

// DatasetOption configures a DatasetWriter.
type DatasetOption func(*DatasetWriter)

// WithFileMode overrides the dataset file permissions.
func WithFileMode(perm os.FileMode) DatasetOption {
	return func(w *DatasetWriter) {
		w.perm = perm
	}
}

// NewDatasetWriter creates a DatasetWriter.
// The default mode is 0600: the dataset may contain text from paywalled
// pages and should not be world-readable by default.
func NewDatasetWriter(opts ...DatasetOption) *DatasetWriter {
	w := &DatasetWriter{perm: 0600}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Save writes the dataset to path, creating parent directories as needed.
//
// The file is written via a temporary sibling and renamed into place, so a
// crash mid-write never leaves a truncated dataset where a previous good
// one stood.
func (w *DatasetWriter) Save(dataset *model.Dataset, path string) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize dataset: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close dataset file: %w", err)
	}
	if err := os.Chmod(tmpName, w.perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set dataset permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}
	return nil
}

// Load reads a dataset file written by Save.
func (w *DatasetWriter) Load(path string) (*model.Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, err
	}
	var dataset model.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return &dataset, nil
}
