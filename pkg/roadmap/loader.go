package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions recognised as roadmap definitions
var Extensions = []string{".json", ".yaml", ".yml"}

// IsDefinitionFile reports whether path has a roadmap definition extension
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SlugFromPath derives the default slug from a file name (stem)
func SlugFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads one definition from a JSON or YAML file. Files in the
// legacy site export format (a top-level "roadmap" object) are converted
// with ConvertLegacy.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	def, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if def.Slug == "" {
		def.Slug = SlugFromPath(path)
	}
	return def, nil
}

// Parse decodes a definition; ext selects the decoder (".json", ".yaml", ".yml")
func Parse(data []byte, ext string) (*Definition, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	switch strings.ToLower(ext) {
	case ".json":
		if isLegacyJSON(data) {
			var doc LegacyDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("decoding legacy roadmap: %w", err)
			}
			return ConvertLegacy(&doc.Roadmap), nil
		}
		var def Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decoding roadmap: %w", err)
		}
		return &def, nil
	case ".yaml", ".yml":
		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decoding roadmap: %w", err)
		}
		return &def, nil
	default:
		return nil, fmt.Errorf("unsupported roadmap format %q", ext)
	}
}

func isLegacyJSON(data []byte) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return false
	}
	_, hasRoadmap := keys["roadmap"]
	_, hasPhases := keys["phases"]
	return hasRoadmap && !hasPhases
}

// LoadResult is the outcome of loading a single file from a directory
type LoadResult struct {
	Path       string
	Definition *Definition
	Err        error
}

// LoadDir loads every definition file directly inside dir, sorted by path.
// A broken file does not stop the others; its error is reported in the result.
func LoadDir(dir string) ([]LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading roadmap directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsDefinitionFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	results := make([]LoadResult, 0, len(paths))
	for _, path := range paths {
		def, err := LoadFile(path)
		results = append(results, LoadResult{Path: path, Definition: def, Err: err})
	}
	return results, nil
}
