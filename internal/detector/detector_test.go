package detector

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestHand_Pixels(t *testing.T) {
	t.Run("scales and truncates normalized coordinates", func(t *testing.T) {
		h := Hand{Points: []Point3D{
			{X: 0.5, Y: 0.5},
			{X: 0.999, Y: 0.001},
			{X: 0.51, Y: 0.72},
		}}

		got := h.Pixels(640, 480)

		want := []gesture.Point{{X: 320, Y: 240}, {X: 639, Y: 0}, {X: 326, Y: 345}}
		if len(got) != len(want) {
			t.Fatalf("got %d points, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("passes pixel coordinates through without a frame size", func(t *testing.T) {
		h := Hand{Points: []Point3D{{X: 120.5, Y: 33.25, Z: 9}}}

		got := h.Pixels(0, 0)

		if got[0] != (gesture.Point{X: 120.5, Y: 33.25}) {
			t.Errorf("got %+v", got[0])
		}
	})

	t.Run("keeps non-finite coordinates non-finite", func(t *testing.T) {
		tests := []struct {
			name string
			x    float64
		}{
			{"nan", math.NaN()},
			{"positive infinity", math.Inf(1)},
			{"negative infinity", math.Inf(-1)},
			{"overflowing product", 1e308},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := Hand{Points: []Point3D{{X: tt.x, Y: 0.5}}}

				got := h.Pixels(640, 480)

				if !math.IsNaN(got[0].X) && !math.IsInf(got[0].X, 0) {
					t.Errorf("X = %v, want a non-finite value", got[0].X)
				}
				if got[0].Y != 240 {
					t.Errorf("Y = %v, want 240", got[0].Y)
				}
			})
		}
	})

	t.Run("keeps malformed point counts", func(t *testing.T) {
		h := Hand{Points: make([]Point3D, 7)}
		if got := h.Pixels(640, 480); len(got) != 7 {
			t.Errorf("got %d points, want 7", len(got))
		}
	})
}

func TestMockSource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns EOF when empty", func(t *testing.T) {
		src := NewMockSource(nil, false)

		_, err := src.Next(ctx)

		if !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})

	t.Run("plays frames in order", func(t *testing.T) {
		src := NewMockSource([]Frame{
			{Timestamp: 1, Hands: []Hand{ShikaramLandmarks()}},
			{Timestamp: 2},
		}, false)

		for _, want := range []int64{1, 2} {
			f, err := src.Next(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Timestamp != want {
				t.Errorf("timestamp = %d, want %d", f.Timestamp, want)
			}
		}
		if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF after last frame, got %v", err)
		}
	})

	t.Run("loops when configured", func(t *testing.T) {
		src := NewMockSource([]Frame{{Timestamp: 7}}, true)

		for i := 0; i < 3; i++ {
			f, err := src.Next(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Timestamp != 7 {
				t.Errorf("timestamp = %d, want 7", f.Timestamp)
			}
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		src := NewMockSource([]Frame{{}}, false)
		expectedErr := errors.New("estimator crashed")
		src.SetError(expectedErr)

		_, err := src.Next(ctx)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
	})

	t.Run("honors cancelled context", func(t *testing.T) {
		src := NewMockSource([]Frame{{}}, true)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := src.Next(cctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Close ends the stream", func(t *testing.T) {
		src := NewMockSource([]Frame{{}}, true)
		if err := src.Close(); err != nil {
			t.Fatalf("Close returned %v", err)
		}
		if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF after Close, got %v", err)
		}
	})

	t.Run("implements Source interface", func(t *testing.T) {
		var _ Source = (*MockSource)(nil)
		var _ Source = (*ProcessSource)(nil)
	})
}

func TestFixtures_Classify(t *testing.T) {
	engine := gesture.NewEngine(gesture.ThumbConventionRight)

	tests := []struct {
		name string
		hand Hand
		want gesture.Label
	}{
		{"shikaram", ShikaramLandmarks(), gesture.Shikaram},
		{"fist", FistLandmarks(), gesture.Mushti},
		{"soochi", SoochiLandmarks(), gesture.Soochi},
		{"open palm", OpenPalmLandmarks(), gesture.Ardhachandra},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.hand.Points) != NumLandmarks {
				t.Fatalf("fixture has %d points", len(tt.hand.Points))
			}
			r, err := engine.Recognize(tt.hand.Pixels(640, 480), tt.hand.Handedness)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Label != tt.want {
				t.Errorf("label = %q (fingers %v), want %q", r.Label, r.Features.Fingers, tt.want)
			}
		})
	}
}

func TestFixtures_NonFiniteCoordinatesRejected(t *testing.T) {
	engine := gesture.NewEngine(gesture.ThumbConventionRight)

	tests := []struct {
		name          string
		x             float64
		width, height int
	}{
		{"nan scaled", math.NaN(), 640, 480},
		{"inf scaled", math.Inf(1), 640, 480},
		{"overflow scaled", 1e308, 640, 480},
		{"nan unscaled", math.NaN(), 0, 0},
		{"inf unscaled", math.Inf(-1), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := FistLandmarks()
			hand.Points[IndexTip].X = tt.x

			_, err := engine.Recognize(hand.Pixels(tt.width, tt.height), hand.Handedness)

			if !errors.Is(err, gesture.ErrInvalidLandmarkSet) {
				t.Errorf("err = %v, want ErrInvalidLandmarkSet", err)
			}
		})
	}
}

func TestOpenPalmLandmarks(t *testing.T) {
	landmarks := OpenPalmLandmarks()

	t.Run("fingers are properly ordered left to right", func(t *testing.T) {
		// For a right hand palm facing forward, fingers should be ordered
		// from left to right: pinky, ring, middle, index, thumb
		if landmarks.Points[PinkyMCP].X >= landmarks.Points[RingMCP].X {
			t.Error("pinky should be to the left of ring finger")
		}
		if landmarks.Points[RingMCP].X >= landmarks.Points[MiddleMCP].X {
			t.Error("ring should be to the left of middle finger")
		}
		if landmarks.Points[MiddleMCP].X >= landmarks.Points[IndexMCP].X {
			t.Error("middle should be to the left of index finger")
		}
	})
}

func TestNewProcessSource(t *testing.T) {
	t.Run("requires a command", func(t *testing.T) {
		if _, err := NewProcessSource(Config{}, nil); err == nil {
			t.Error("expected error for empty command")
		}
	})

	t.Run("rejects a missing executable", func(t *testing.T) {
		_, err := NewProcessSource(Config{Command: "/nonexistent/estimator"}, nil)
		if err == nil {
			t.Error("expected error for missing executable")
		}
	})
}

func TestProcessSource_ReadsFrames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if testing.Short() {
		t.Skip("skipping subprocess test")
	}

	script := filepath.Join(t.TempDir(), "estimator.sh")
	body := "#!/bin/sh\n" +
		"echo '{\"width\":640,\"height\":480,\"timestamp\":1,\"hands\":[]}'\n" +
		"echo ''\n" +
		"echo 'not json'\n" +
		"echo '{\"timestamp\":2,\"hands\":[{\"handedness\":\"Left\"},{},{}]}'\n" +
		"echo 'warming up' >&2\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	src, err := NewProcessSource(Config{Command: script}, nil)
	if err != nil {
		t.Fatalf("NewProcessSource: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if f.Width != 640 || f.Timestamp != 1 || len(f.Hands) != 0 {
		t.Errorf("first frame = %+v", f)
	}

	if _, err := src.Next(ctx); err == nil {
		t.Error("expected parse error for malformed line")
	}

	f, err = src.Next(ctx)
	if err != nil {
		t.Fatalf("third frame: %v", err)
	}
	if len(f.Hands) != 2 {
		t.Errorf("hands = %d, want capped at 2", len(f.Hands))
	}
	if f.Hands[0].Handedness != "Left" {
		t.Errorf("handedness = %q, want Left", f.Hands[0].Handedness)
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end of output, got %v", err)
	}
}
