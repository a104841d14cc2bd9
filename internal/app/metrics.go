package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recognition Prometheus metrics.
var (
	FramesProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mudra",
			Name:      "frames_processed_total",
			Help:      "Total number of frames run through the classifier",
		},
	)

	HandsClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mudra",
			Name:      "hands_classified_total",
			Help:      "Total hands classified, by resulting label",
		},
		[]string{"label"},
	)

	InvalidLandmarksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mudra",
			Name:      "invalid_landmark_sets_total",
			Help:      "Total hands rejected because of a malformed landmark set",
		},
	)

	FrameProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mudra",
			Name:      "frame_processing_duration_seconds",
			Help:      "Time spent classifying one frame",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

var registerOnce sync.Once

// RegisterMetrics registers the recognition metrics with the default
// registry. Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(FramesProcessedTotal)
		prometheus.MustRegister(HandsClassifiedTotal)
		prometheus.MustRegister(InvalidLandmarksTotal)
		prometheus.MustRegister(FrameProcessingDuration)
	})
}
