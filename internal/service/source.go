package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrSourceNotFound is returned when a source file does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrInvalidSourceName is returned for names that are not plain GeoJSON file names.
	ErrInvalidSourceName = errors.New("invalid source name")
)

// Supported source file extensions and their types.
var extToType = map[string]string{
	".geojson": "GeoJSON",
	".json":    "GeoJSON",
}

// SourceService serves local GeoJSON files.
type SourceService struct {
	sourcesDir string
}

// NewSourceService creates a new source service.
func NewSourceService(dataDir string) *SourceService {
	return &SourceService{
		sourcesDir: filepath.Join(dataDir, "sources"),
	}
}

// List returns all available source files.
func (s *SourceService) List() ([]SourceFile, error) {
	entries, err := os.ReadDir(s.sourcesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SourceFile{}, nil
		}
		return nil, err
	}

	files := []SourceFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileType, ok := extToType[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, SourceFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: fileType,
		})
	}

	return files, nil
}

// Read returns the contents of a source file. name must be a bare file name
// with a GeoJSON extension.
func (s *SourceService) Read(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidSourceName)
	}
	if _, ok := extToType[strings.ToLower(filepath.Ext(name))]; !ok {
		return nil, fmt.Errorf("%q: unsupported extension: %w", name, ErrInvalidSourceName)
	}

	data, err := os.ReadFile(filepath.Join(s.sourcesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, ErrSourceNotFound)
		}
		return nil, err
	}
	return data, nil
}

// SourcesDir returns the path to the sources directory.
func (s *SourceService) SourcesDir() string {
	return s.sourcesDir
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
