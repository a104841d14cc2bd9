package gesture

import (
	"errors"
	"sync"
	"testing"
)

func TestParseThumbConvention(t *testing.T) {
	tests := []struct {
		in      string
		want    ThumbConvention
		wantErr bool
	}{
		{"", ThumbConventionRight, false},
		{"right", ThumbConventionRight, false},
		{"LEFT", ThumbConventionLeft, false},
		{" auto ", ThumbConventionAuto, false},
		{"mirrored", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseThumbConvention(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThumbConvention_Side(t *testing.T) {
	tests := []struct {
		conv       ThumbConvention
		handedness string
		want       ThumbSide
	}{
		{ThumbConventionRight, "Left", ThumbRight},
		{ThumbConventionLeft, "Right", ThumbLeft},
		{ThumbConventionAuto, "Left", ThumbLeft},
		{ThumbConventionAuto, "Right", ThumbRight},
		{ThumbConventionAuto, "", ThumbRight},
	}

	for _, tt := range tests {
		if got := tt.conv.Side(tt.handedness); got != tt.want {
			t.Errorf("%s.Side(%q) = %d, want %d", tt.conv, tt.handedness, got, tt.want)
		}
	}
}

func TestEngine_Recognize(t *testing.T) {
	t.Run("classifies a pose", func(t *testing.T) {
		e := NewEngine("")
		if e.Thumb() != ThumbConventionRight {
			t.Errorf("default thumb = %q, want right", e.Thumb())
		}

		got, err := e.Recognize(handPose(FingerState{1, 1, 1, 1, 1}), "Right")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Label != Ardhachandra {
			t.Errorf("label = %q, want %q", got.Label, Ardhachandra)
		}
	})

	t.Run("auto convention flips thumb for left hands", func(t *testing.T) {
		e := NewEngine(ThumbConventionAuto)
		pose := handPose(FingerState{1, 0, 0, 0, 0})

		right, err := e.Recognize(pose, "Right")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		left, err := e.Recognize(pose, "Left")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if right.Label != Shikaram {
			t.Errorf("right hand label = %q, want %q", right.Label, Shikaram)
		}
		if left.Features.Fingers[Thumb] != 0 {
			t.Errorf("left hand thumb = %d, want 0", left.Features.Fingers[Thumb])
		}
	})

	t.Run("surfaces invalid landmark sets", func(t *testing.T) {
		e := NewEngine(ThumbConventionRight)
		_, err := e.Recognize(make([]Point, 5), "Right")
		if !errors.Is(err, ErrInvalidLandmarkSet) {
			t.Errorf("error = %v, want ErrInvalidLandmarkSet", err)
		}
	})

	t.Run("concurrent use", func(t *testing.T) {
		e := NewEngine(ThumbConventionRight)
		patterns := allPatterns()

		var wg sync.WaitGroup
		errs := make(chan error, len(patterns))
		for _, f := range patterns {
			wg.Add(1)
			go func(f FingerState) {
				defer wg.Done()
				r, err := e.Recognize(handPose(f), "Right")
				if err != nil {
					errs <- err
					return
				}
				if r.Features.Fingers != f {
					errs <- errors.New("fingers mismatch for " + f.String())
				}
			}(f)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Error(err)
		}
	})
}
