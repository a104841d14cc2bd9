package detector

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// maxLineSize bounds a single JSON frame from the estimator.
const maxLineSize = 1 << 20

// ProcessSource reads frames from an external pose estimator process. The
// process is started lazily on the first call to Next.
type ProcessSource struct {
	config  Config
	logger  *zap.Logger
	mu      sync.Mutex
	cmd     *exec.Cmd
	lines   chan []byte
	done    chan struct{}
	started bool

	errMu   sync.Mutex
	readErr error
}

// NewProcessSource creates a source for the configured estimator command.
func NewProcessSource(config Config, logger *zap.Logger) (*ProcessSource, error) {
	if config.Command == "" {
		return nil, errors.New("estimator command is not configured")
	}
	if _, err := exec.LookPath(config.Command); err != nil {
		return nil, fmt.Errorf("estimator command %q: %w", config.Command, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxHands <= 0 {
		config.MaxHands = DefaultConfig().MaxHands
	}

	return &ProcessSource{
		config: config,
		logger: logger,
	}, nil
}

// Next returns the next frame written by the estimator.
func (s *ProcessSource) Next(ctx context.Context) (Frame, error) {
	lines, done, err := s.ensureStarted()
	if err != nil {
		return Frame{}, err
	}

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case line, ok := <-lines:
		if !ok {
			<-done
			s.errMu.Lock()
			err := s.readErr
			s.errMu.Unlock()
			if err != nil {
				return Frame{}, err
			}
			return Frame{}, io.EOF
		}
		return s.decode(line)
	}
}

func (s *ProcessSource) decode(line []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return Frame{}, fmt.Errorf("parse frame: %w", err)
	}
	if len(f.Hands) > s.config.MaxHands {
		f.Hands = f.Hands[:s.config.MaxHands]
	}
	return f, nil
}

// Close stops the estimator process.
func (s *ProcessSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *ProcessSource) ensureStarted() (chan []byte, chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return s.lines, s.done, nil
	}

	cmd := exec.Command(s.config.Command, s.config.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start estimator: %w", err)
	}

	s.cmd = cmd
	s.lines = make(chan []byte)
	s.done = make(chan struct{})
	s.started = true

	s.errMu.Lock()
	s.readErr = nil
	s.errMu.Unlock()

	s.logger.Info("Estimator started",
		zap.String("command", s.config.Command),
		zap.Int("pid", cmd.Process.Pid),
	)

	go s.forwardStderr(stderr)
	go s.readLines(stdout, s.lines, s.done)

	return s.lines, s.done, nil
}

func (s *ProcessSource) readLines(r io.Reader, lines chan<- []byte, done chan<- struct{}) {
	defer close(done)
	defer close(lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		if len(line) == 0 {
			continue
		}
		lines <- line
	}
	if err := scanner.Err(); err != nil {
		s.errMu.Lock()
		s.readErr = fmt.Errorf("read estimator output: %w", err)
		s.errMu.Unlock()
	}
}

func (s *ProcessSource) forwardStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.logger.Warn("Estimator stderr", zap.String("line", scanner.Text()))
	}
}

func (s *ProcessSource) shutdown() error {
	if !s.started {
		return nil
	}

	var err error
	if s.cmd.Process != nil {
		if killErr := s.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = killErr
		}
	}

	// Drain so the reader goroutine can observe EOF and exit.
	go func(lines chan []byte) {
		for range lines {
		}
	}(s.lines)

	waitErr := s.cmd.Wait()
	if err == nil && waitErr != nil && !isKilled(waitErr) {
		err = waitErr
	}

	s.logger.Info("Estimator stopped", zap.String("command", s.config.Command))

	s.started = false
	s.cmd = nil
	return err
}

// isKilled reports whether err is the exit status of a process terminated by
// a signal, which is how Close stops the estimator.
func isKilled(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return !exitErr.Exited()
	}
	return false
}
