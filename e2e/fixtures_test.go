package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ayusman/mudra/internal/detector"
)

const framesDir = "testdata/frames"

// loadFrame loads a recorded estimator frame by name.
func loadFrame(name string) (detector.Frame, error) {
	data, err := os.ReadFile(filepath.Join(framesDir, name))
	if err != nil {
		return detector.Frame{}, fmt.Errorf("load frame %s: %w", name, err)
	}

	var f detector.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return detector.Frame{}, fmt.Errorf("decode frame %s: %w", name, err)
	}
	return f, nil
}

// loadSequence loads every frame in dir, ordered by file name.
func loadSequence(dir string) ([]detector.Frame, error) {
	entries, err := os.ReadDir(filepath.Join(framesDir, dir))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	frames := make([]detector.Frame, 0, len(names))
	for _, name := range names {
		f, err := loadFrame(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// rawFrame returns the file contents unparsed, for posting as-is.
func rawFrame(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(framesDir, name))
}
