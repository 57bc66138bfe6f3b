// Package sheet reads the JSON metadata Aseprite writes next to a packed
// sprite sheet and condenses it into a summary for logs and CLI output.
package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Size is a width/height pair in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Summary describes a packed sheet.
type Summary struct {
	Frames     int    `json:"frames"`
	Size       Size   `json:"size"`
	Image      string `json:"image"`
	ImageBytes int64  `json:"image_bytes"`
	App        string `json:"app,omitempty"`
	Version    string `json:"version,omitempty"`
	Tags       int    `json:"tags"`
}

type document struct {
	Frames json.RawMessage `json:"frames"`
	Meta   struct {
		App       string            `json:"app"`
		Version   string            `json:"version"`
		Image     string            `json:"image"`
		Size      Size              `json:"size"`
		FrameTags []json.RawMessage `json:"frameTags"`
	} `json:"meta"`
}

// ReadSummary parses the metadata at dataPath. Frames may be a JSON object
// keyed by frame name (--format json-hash) or an array (json-array).
// imagePath, when non-empty, is stat'ed for its size; otherwise meta.image is
// resolved relative to the metadata file.
func ReadSummary(dataPath, imagePath string) (Summary, error) {
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return Summary{}, fmt.Errorf("read sheet metadata: %w", err)
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Summary{}, fmt.Errorf("parse sheet metadata: %w", err)
	}
	frames, err := countFrames(doc.Frames)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Frames:  frames,
		Size:    doc.Meta.Size,
		Image:   doc.Meta.Image,
		App:     doc.Meta.App,
		Version: doc.Meta.Version,
		Tags:    len(doc.Meta.FrameTags),
	}

	if imagePath == "" && doc.Meta.Image != "" {
		imagePath = doc.Meta.Image
		if !filepath.IsAbs(imagePath) {
			imagePath = filepath.Join(filepath.Dir(dataPath), imagePath)
		}
	}
	if imagePath != "" {
		if info, err := os.Stat(imagePath); err == nil {
			summary.ImageBytes = info.Size()
		}
	}
	return summary, nil
}

func countFrames(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	switch raw[0] {
	case '{':
		var frames map[string]json.RawMessage
		if err := json.Unmarshal(raw, &frames); err != nil {
			return 0, fmt.Errorf("parse frames: %w", err)
		}
		return len(frames), nil
	case '[':
		var frames []json.RawMessage
		if err := json.Unmarshal(raw, &frames); err != nil {
			return 0, fmt.Errorf("parse frames: %w", err)
		}
		return len(frames), nil
	default:
		return 0, errors.New("parse frames: expected object or array")
	}
}

// String renders a one-line description such as "12 frames, 256x128, 14 kB".
func (s Summary) String() string {
	out := fmt.Sprintf("%d frames, %dx%d", s.Frames, s.Size.W, s.Size.H)
	if s.ImageBytes > 0 {
		out += ", " + humanize.Bytes(uint64(s.ImageBytes))
	}
	return out
}
