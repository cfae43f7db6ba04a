package snapshot

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered frame in the output manifest.
type ManifestEntry struct {
	Shape  string    `json:"shape"`
	Frame  int       `json:"frame"`
	Params []float64 `json:"params"`
	Image  string    `json:"image"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		params := r.Params
		if params == nil {
			params = []float64{}
		}
		entries = append(entries, ManifestEntry{
			Shape:  r.Shape,
			Frame:  r.Frame,
			Params: params,
			Image:  r.Image,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
