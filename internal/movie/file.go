package movie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a list of movies from a YAML (.yaml, .yml) or JSON (.json)
// file. Each entry follows the same rules as a request body. Two entries
// sharing an id are rejected since the second would silently replace the
// first.
func LoadFile(path string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read movie file: %w", err)
	}

	var movies []Movie
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &movies); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&movies); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported movie file format: %s", ext)
	}

	seen := make(map[string]int, len(movies))
	for i, m := range movies {
		if prev, ok := seen[m.ID]; ok {
			return nil, fmt.Errorf("duplicate movie id %q at entries %d and %d", m.ID, prev, i)
		}
		seen[m.ID] = i
	}
	return movies, nil
}
