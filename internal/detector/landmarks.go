// Package detector provides hand landmark sources for mudra recognition.
package detector

import (
	"math"

	"github.com/ayusman/mudra/internal/gesture"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one detected hand as reported by the pose estimator. Points is a
// slice rather than a fixed array so that a malformed report reaches the
// extractor intact and is rejected there.
type Hand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Frame is the estimator's output for one video frame. Width and Height are
// the source image size used to scale normalized coordinates; zero means the
// points are already in pixels.
type Frame struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Timestamp int64  `json:"timestamp"`
	Hands     []Hand `json:"hands"`
}

// Pixels projects the hand onto the image plane. With a positive width and
// height, normalized coordinates are scaled and truncated toward zero;
// otherwise X and Y are passed through unchanged. The point count is kept as
// is, and NaN or infinite products stay non-finite so extraction rejects them.
func (h Hand) Pixels(width, height int) []gesture.Point {
	out := make([]gesture.Point, len(h.Points))
	scale := width > 0 && height > 0
	for i, p := range h.Points {
		if scale {
			out[i] = gesture.Point{
				X: math.Trunc(p.X * float64(width)),
				Y: math.Trunc(p.Y * float64(height)),
			}
			continue
		}
		out[i] = gesture.Point{X: p.X, Y: p.Y}
	}
	return out
}
