package detector

import "context"

// Source defines the interface for landmark producers.
type Source interface {
	// Next blocks until the estimator reports the next frame. A frame with no
	// hands is a normal result. io.EOF signals the end of the stream.
	Next(ctx context.Context) (Frame, error)

	// Close releases any resources held by the source.
	Close() error
}

// Config holds configuration options for the pose estimator process.
type Config struct {
	// Command is the estimator executable. It must write one JSON Frame per
	// line to stdout.
	Command string

	// Args are passed to Command.
	Args []string

	// MaxHands caps the number of hands kept per frame (default: 2).
	MaxHands int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands: 2,
	}
}
