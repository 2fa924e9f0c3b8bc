package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of a bookmarks export file. The file
// is optional: it seeds the warm-start store on a fresh install so that the
// first session starts with data instead of an empty shelf.
type Loader struct {
	filePath string
}

// NewLoader creates a new export loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the export file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read export file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse export yaml: %w", err)
	}

	return f, nil
}
