package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest describes an exported frame sequence.
type Manifest struct {
	Width  int             `json:"width"`
	Height int             `json:"height"`
	FPS    int             `json:"fps"`
	Frames []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one exported frame.
type ManifestEntry struct {
	Index     int    `json:"index"`
	Time      string `json:"time"`
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// BuildManifest lists the successful results. Frame times are derived
// from fps and the frame index.
func BuildManifest(results []Result, fps int) Manifest {
	m := Manifest{FPS: fps, Frames: make([]ManifestEntry, 0, len(results))}
	for _, r := range results {
		if !r.Success {
			continue
		}
		if m.Width == 0 {
			m.Width, m.Height = r.Width, r.Height
		}
		var sec float64
		if fps > 0 {
			sec = float64(r.Index) / float64(fps)
		}
		m.Frames = append(m.Frames, ManifestEntry{
			Index:     r.Index,
			Time:      fmt.Sprintf("%.3fs", sec),
			Image:     r.Image,
			Thumbnail: r.Thumbnail,
		})
	}
	return m
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
