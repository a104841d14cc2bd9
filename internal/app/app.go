// Package app provides the recognition pipeline for the mudra service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// maxSourceErrors is the number of consecutive source errors Run tolerates
// before giving up.
const maxSourceErrors = 10

// Describer maps a label to its human-readable description.
type Describer interface {
	Description(label gesture.Label) string
}

// Config holds configuration options for the application.
type Config struct {
	// Store persists settings and the catalog. Optional.
	Store *store.Store

	// Source feeds Run. Optional when frames arrive through Ingest only.
	Source detector.Source

	// Catalog overrides the description lookup. When nil the store's catalog
	// is used, or the built-in one without a store.
	Catalog Describer

	// Thumb is the initial thumb convention (default: right).
	Thumb gesture.ThumbConvention

	// Enabled is the initial detection state.
	Enabled bool

	Logger *zap.Logger
}

// Subscriber receives every result produced by Ingest.
type Subscriber func(Result)

// App is the main application that turns landmark frames into mudra results.
type App struct {
	config Config
	logger *zap.Logger
	slot   Slot

	mu      sync.RWMutex
	engine  *gesture.Engine
	catalog Describer
	enabled bool

	subMu   sync.RWMutex
	subs    map[int]Subscriber
	nextSub int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	a := &App{
		config:  config,
		logger:  logger.OrNop(config.Logger),
		engine:  gesture.NewEngine(config.Thumb),
		enabled: config.Enabled,
		subs:    make(map[int]Subscriber),
	}

	switch {
	case config.Catalog != nil:
		a.catalog = config.Catalog
	case config.Store != nil:
		if err := a.ReloadCatalog(); err != nil {
			a.logger.Warn("Falling back to built-in catalog", zap.Error(err))
			a.catalog = gesture.DefaultCatalog()
		}
	default:
		a.catalog = gesture.DefaultCatalog()
	}

	return a
}

// SetEnabled enables or disables detection. Disabling clears the latest
// result, so readers go back to the waiting state.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.slot.Reset()
	}
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetThumbConvention switches the thumb convention for subsequent frames.
func (a *App) SetThumbConvention(c gesture.ThumbConvention) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine = gesture.NewEngine(c)
}

// ThumbConvention returns the active thumb convention.
func (a *App) ThumbConvention() gesture.ThumbConvention {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine.Thumb()
}

// ReloadCatalog replaces the description lookup with the store's catalog.
func (a *App) ReloadCatalog() error {
	if a.config.Store == nil {
		return nil
	}
	c, err := a.config.Store.Catalog()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.catalog = c
	a.mu.Unlock()
	return nil
}

// LoadSettings applies persisted settings from the store. Missing keys keep
// their current values.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}

	settings, err := a.config.Store.Settings().All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if v, ok := settings[store.SettingEnabled]; ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("setting %s: %w", store.SettingEnabled, err)
		}
		a.SetEnabled(enabled)
	}
	if v, ok := settings[store.SettingThumb]; ok {
		thumb, err := gesture.ParseThumbConvention(v)
		if err != nil {
			return fmt.Errorf("setting %s: %w", store.SettingThumb, err)
		}
		a.SetThumbConvention(thumb)
	}

	a.logger.Info("Loaded settings",
		zap.Bool("enabled", a.IsEnabled()),
		zap.String("thumb", string(a.ThumbConvention())),
	)
	return nil
}

// SaveSettings persists the current settings to the store.
func (a *App) SaveSettings() error {
	if a.config.Store == nil {
		return nil
	}
	repo := a.config.Store.Settings()
	if err := repo.Set(store.SettingEnabled, strconv.FormatBool(a.IsEnabled())); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := repo.Set(store.SettingThumb, string(a.ThumbConvention())); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Subscribe registers fn for every published result and returns a function
// that removes it. fn is called synchronously from the publishing goroutine.
func (a *App) Subscribe(fn Subscriber) func() {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn

	return func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		delete(a.subs, id)
	}
}

// Latest returns the most recent result that contained a hand.
func (a *App) Latest() (Result, bool) {
	return a.slot.Get()
}

// Recognize classifies a single hand without publishing anything.
func (a *App) Recognize(hand detector.Hand, width, height int) HandResult {
	a.mu.RLock()
	engine, catalog := a.engine, a.catalog
	a.mu.RUnlock()

	hr := HandResult{Handedness: hand.Handedness}

	r, err := engine.Recognize(hand.Pixels(width, height), hand.Handedness)
	if err != nil {
		InvalidLandmarksTotal.Inc()
		hr.Error = err.Error()
		return hr
	}

	HandsClassifiedTotal.WithLabelValues(string(r.Label)).Inc()
	hr.Label = r.Label
	hr.Description = catalog.Description(r.Label)
	hr.Fingers = r.Features.Fingers
	hr.Distances = r.Features.Distances
	return hr
}

// Process classifies every hand in frame. It does not publish.
func (a *App) Process(frame detector.Frame) Result {
	start := time.Now()
	defer func() {
		FramesProcessedTotal.Inc()
		FrameProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	ts := frame.Timestamp
	if ts == 0 {
		ts = start.UnixMilli()
	}

	result := Result{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Hands:     make([]HandResult, 0, len(frame.Hands)),
	}
	for _, hand := range frame.Hands {
		hr := a.Recognize(hand, frame.Width, frame.Height)
		if !hr.Valid() {
			a.logger.Debug("Rejected hand", zap.String("error", hr.Error))
		}
		result.Hands = append(result.Hands, hr)
	}
	return result
}

// Ingest processes frame and publishes the result to the latest-result slot
// and all subscribers. It returns false without doing anything while
// detection is disabled.
func (a *App) Ingest(frame detector.Frame) (Result, bool) {
	if !a.IsEnabled() {
		return Result{}, false
	}

	result := a.Process(frame)
	a.publish(result)

	if m, ok := result.Mudra(); ok {
		a.logger.Debug("Mudra detected",
			zap.String("label", string(m.Label)),
			zap.Stringer("fingers", m.Fingers),
		)
	}
	return result, true
}

func (a *App) publish(r Result) {
	a.slot.Store(r)

	a.subMu.RLock()
	subs := make([]Subscriber, 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.subMu.RUnlock()

	for _, fn := range subs {
		fn(r)
	}
}

// Run pulls frames from the configured source until it is exhausted or ctx
// is cancelled. Frames read while detection is disabled are dropped.
func (a *App) Run(ctx context.Context) error {
	src := a.config.Source
	if src == nil {
		return errors.New("no landmark source configured")
	}

	a.logger.Info("Detection pipeline started")
	defer a.logger.Info("Detection pipeline stopped")

	failures := 0
	for {
		frame, err := src.Next(ctx)
		switch {
		case err == nil:
			failures = 0
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			failures++
			a.logger.Warn("Error reading frame", zap.Error(err), zap.Int("consecutive", failures))
			if failures >= maxSourceErrors {
				return fmt.Errorf("landmark source: %w", err)
			}
			continue
		}

		a.Ingest(frame)
	}
}
