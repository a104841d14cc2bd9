// Package gesture provides mudra recognition: feature extraction from hand
// landmarks and rule-based classification of the resulting feature vector.
package gesture

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// NumLandmarks is the number of landmarks in a hand as produced by the pose model.
const NumLandmarks = 21

// Landmark indices used by the extractor (MediaPipe hand convention).
const (
	thumbIP   = 3
	thumbTip  = 4
	indexTip  = 8
	middleTip = 12
	ringTip   = 16
	pinkyTip  = 20
)

// ErrInvalidLandmarkSet is returned when a landmark set is not exactly 21
// finite points.
var ErrInvalidLandmarkSet = errors.New("invalid landmark set")

// Point is a single 2D landmark in the pose estimator's coordinate frame.
// Image-space "up" is numerically smaller Y.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finger positions in a FingerState.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// FingerState holds one value per digit (thumb, index, middle, ring, pinky):
// 1 when the digit is extended, 0 when folded.
type FingerState [NumFingers]int

// String renders the state as "1,0,0,0,0".
func (f FingerState) String() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d", f[Thumb], f[Index], f[Middle], f[Ring], f[Pinky])
}

// ParseFingerState accepts "1,0,0,0,0" or "10000".
func ParseFingerState(s string) (FingerState, error) {
	var f FingerState
	digits := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if len(digits) != NumFingers {
		return f, fmt.Errorf("finger state %q: want %d values", s, NumFingers)
	}
	for i, c := range digits {
		switch c {
		case '0':
		case '1':
			f[i] = 1
		default:
			return FingerState{}, fmt.Errorf("finger state %q: values must be 0 or 1", s)
		}
	}
	return f, nil
}

// DistanceKey names a landmark pair whose distance is part of the feature vector.
type DistanceKey int

// The closed set of distance keys.
const (
	ThumbIndex DistanceKey = iota
	IndexMiddle
	MiddleRing
	RingPinky
	RingThumb
	MiddleThumb
	NumDistances
)

var distanceNames = [NumDistances]string{
	ThumbIndex:  "thumb_index",
	IndexMiddle: "index_middle",
	MiddleRing:  "middle_ring",
	RingPinky:   "ring_pinky",
	RingThumb:   "ring_thumb",
	MiddleThumb: "middle_thumb",
}

// distancePairs maps each key to the landmark indices it measures.
var distancePairs = [NumDistances][2]int{
	ThumbIndex:  {thumbTip, indexTip},
	IndexMiddle: {indexTip, middleTip},
	MiddleRing:  {middleTip, ringTip},
	RingPinky:   {ringTip, pinkyTip},
	RingThumb:   {thumbTip, ringTip},
	MiddleThumb: {thumbTip, middleTip},
}

// String returns the key's wire name, e.g. "thumb_index".
func (k DistanceKey) String() string {
	if k < 0 || k >= NumDistances {
		return fmt.Sprintf("DistanceKey(%d)", int(k))
	}
	return distanceNames[k]
}

// DistanceKeys returns all keys in their fixed order.
func DistanceKeys() []DistanceKey {
	keys := make([]DistanceKey, NumDistances)
	for i := range keys {
		keys[i] = DistanceKey(i)
	}
	return keys
}

// ParseDistanceKey resolves a wire name such as "ring_thumb" to its key.
func ParseDistanceKey(name string) (DistanceKey, error) {
	for i, n := range distanceNames {
		if n == name {
			return DistanceKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown distance key %q", name)
}

// Distances holds the Euclidean distance for every DistanceKey, in the same
// units as the landmarks they were computed from.
type Distances [NumDistances]float64

// Get returns the distance for key.
func (d Distances) Get(key DistanceKey) float64 {
	return d[key]
}

// MarshalJSON encodes the distances as an object keyed by wire name.
func (d Distances) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumDistances)
	for i, v := range d {
		m[distanceNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by wire name. Unknown keys are rejected;
// missing keys are left at zero.
func (d *Distances) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Distances
	for name, v := range m {
		key, err := ParseDistanceKey(name)
		if err != nil {
			return err
		}
		out[key] = v
	}
	*d = out
	return nil
}

// Features is the feature vector derived from one hand.
type Features struct {
	Fingers   FingerState `json:"fingers"`
	Distances Distances   `json:"distances"`
}

// ThumbSide fixes which horizontal direction counts as "outward" for the thumb.
type ThumbSide int

const (
	// ThumbRight treats the thumb as extended when its tip lies to the right
	// of its IP joint (larger X).
	ThumbRight ThumbSide = iota
	// ThumbLeft is the mirror of ThumbRight.
	ThumbLeft
)

// ExtractFeatures converts exactly 21 landmarks into a finger state and the
// six named distances. Any other count, or a non-finite coordinate, fails with
// ErrInvalidLandmarkSet.
func ExtractFeatures(points []Point, side ThumbSide) (Features, error) {
	if err := validate(points); err != nil {
		return Features{}, err
	}

	var f Features

	if side == ThumbLeft {
		f.Fingers[Thumb] = boolToInt(points[thumbTip].X < points[thumbIP].X)
	} else {
		f.Fingers[Thumb] = boolToInt(points[thumbTip].X > points[thumbIP].X)
	}

	// Tip above the PIP joint means extended.
	for i, tip := range []int{indexTip, middleTip, ringTip, pinkyTip} {
		f.Fingers[Index+i] = boolToInt(points[tip].Y < points[tip-2].Y)
	}

	for key, pair := range distancePairs {
		a, b := points[pair[0]], points[pair[1]]
		f.Distances[key] = floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
	}

	return f, nil
}

func validate(points []Point) error {
	if len(points) != NumLandmarks {
		return fmt.Errorf("%w: got %d points, want %d", ErrInvalidLandmarkSet, len(points), NumLandmarks)
	}
	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			return fmt.Errorf("%w: point %d has non-finite coordinates (%v, %v)", ErrInvalidLandmarkSet, i, p.X, p.Y)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
