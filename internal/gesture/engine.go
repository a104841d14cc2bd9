package gesture

import (
	"fmt"
	"strings"
)

// ThumbConvention selects how the thumb's outward direction is chosen.
type ThumbConvention string

const (
	// ThumbConventionRight always uses ThumbRight.
	ThumbConventionRight ThumbConvention = "right"
	// ThumbConventionLeft always uses ThumbLeft.
	ThumbConventionLeft ThumbConvention = "left"
	// ThumbConventionAuto picks the side from the handedness reported by the
	// pose estimator: "Left" hands use ThumbLeft, everything else ThumbRight.
	ThumbConventionAuto ThumbConvention = "auto"
)

// ParseThumbConvention validates a convention name. The empty string selects
// ThumbConventionRight.
func ParseThumbConvention(s string) (ThumbConvention, error) {
	switch c := ThumbConvention(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ThumbConventionRight, nil
	case ThumbConventionRight, ThumbConventionLeft, ThumbConventionAuto:
		return c, nil
	}
	return "", fmt.Errorf("unknown thumb convention %q (want right, left or auto)", s)
}

// Side resolves the convention for a hand with the given handedness label.
func (c ThumbConvention) Side(handedness string) ThumbSide {
	switch c {
	case ThumbConventionLeft:
		return ThumbLeft
	case ThumbConventionAuto:
		if strings.EqualFold(handedness, "left") {
			return ThumbLeft
		}
	}
	return ThumbRight
}

// Recognition is the outcome of classifying one hand.
type Recognition struct {
	Label    Label    `json:"label"`
	Features Features `json:"features"`
}

// Engine ties feature extraction and classification together under a fixed
// thumb convention. It holds no per-frame state and is safe for concurrent use.
type Engine struct {
	thumb ThumbConvention
}

// NewEngine creates an Engine. An empty convention means ThumbConventionRight.
func NewEngine(thumb ThumbConvention) *Engine {
	if thumb == "" {
		thumb = ThumbConventionRight
	}
	return &Engine{thumb: thumb}
}

// Thumb returns the engine's thumb convention.
func (e *Engine) Thumb() ThumbConvention {
	return e.thumb
}

// Recognize extracts features from points and classifies them.
func (e *Engine) Recognize(points []Point, handedness string) (Recognition, error) {
	f, err := ExtractFeatures(points, e.thumb.Side(handedness))
	if err != nil {
		return Recognition{}, err
	}
	return Recognition{
		Label:    Classify(f.Fingers, f.Distances),
		Features: f,
	}, nil
}
