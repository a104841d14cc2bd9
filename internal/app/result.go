package app

import (
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// HandResult is the recognition outcome for one hand. When the landmark set
// is invalid, Error is set and Label is empty.
type HandResult struct {
	Handedness  string              `json:"handedness,omitempty"`
	Label       gesture.Label       `json:"label,omitempty"`
	Description string              `json:"description,omitempty"`
	Fingers     gesture.FingerState `json:"fingers"`
	Distances   gesture.Distances   `json:"distances"`
	Error       string              `json:"error,omitempty"`
}

// Valid reports whether the hand was classified.
func (h HandResult) Valid() bool {
	return h.Error == ""
}

// Result is the recognition outcome for one frame. A frame without hands has
// an empty Hands list.
type Result struct {
	ID        string       `json:"id"`
	Timestamp int64        `json:"timestamp"`
	Hands     []HandResult `json:"hands"`
}

// Mudra returns the last classified hand in the frame. With several hands the
// last one wins, matching the order the estimator reports them in.
func (r Result) Mudra() (HandResult, bool) {
	for i := len(r.Hands) - 1; i >= 0; i-- {
		if r.Hands[i].Valid() {
			return r.Hands[i], true
		}
	}
	return HandResult{}, false
}

// Slot holds the most recent result that contained at least one hand. The
// pipeline writes it; HTTP handlers read it.
type Slot struct {
	mu     sync.RWMutex
	result Result
	set    bool
}

// Store replaces the held result. Results without hands are ignored so that
// the last detection stays visible between frames.
func (s *Slot) Store(r Result) {
	if len(r.Hands) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
	s.set = true
}

// Get returns the held result and whether anything has been stored.
func (s *Slot) Get() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.set
}

// Reset clears the slot.
func (s *Slot) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = Result{}
	s.set = false
}
