package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one level in the output manifest.
type ManifestEntry struct {
	Level     string   `json:"level"`
	OBJ       string   `json:"obj,omitempty"`
	Vertices  int      `json:"vertices"`
	Faces     int      `json:"faces"`
	Materials int      `json:"materials"`
	Images    int      `json:"images"`
	Missing   []string `json:"missing_textures,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// WriteManifest writes manifest.json to the output directory.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Level:     r.Level,
			OBJ:       r.Output,
			Vertices:  r.Stats.Vertices,
			Faces:     r.Stats.Faces,
			Materials: r.Stats.Materials,
			Images:    r.Stats.Images,
			Missing:   r.Stats.Missing,
			Error:     r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
