package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File outcomes
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// FilesTotal counts confound files resolved
	FilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confounds_files_total",
			Help: "Total number of confound files resolved",
		},
		[]string{"status"}, // status: success, failed
	)

	// FileDuration measures load plus resolution time per file in seconds
	FileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "confounds_file_duration_seconds",
			Help:    "Time taken to load and resolve one confound file",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"status"},
	)

	// FilesRunning tracks files currently being resolved
	FilesRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "confounds_files_running",
			Help: "Number of confound files currently being resolved",
		},
	)

	// CategoryRegressors measures the number of columns each category contributes
	CategoryRegressors = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "confounds_category_regressors",
			Help:    "Number of regressors contributed by a category",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 24, 32, 64, 128},
		},
		[]string{"category"},
	)

	// ScrubbedFrames measures the number of frames excluded per file
	ScrubbedFrames = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "confounds_scrubbed_frames",
			Help:    "Number of frames excluded by scrubbing",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// SubstitutionsTotal counts results that direct the caller to a pre-denoised image
	SubstitutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confounds_substitutions_total",
			Help: "Total number of results that substitute a pre-denoised image",
		},
		[]string{"category"},
	)

	// ErrorsTotal counts total number of errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confounds_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordFileStart records the start of a file
func RecordFileStart() {
	FilesRunning.Inc()
}

// RecordFileComplete records file completion
func RecordFileComplete(status string, duration float64) {
	FilesRunning.Dec()
	FilesTotal.WithLabelValues(status).Inc()
	FileDuration.WithLabelValues(status).Observe(duration)
}

// RecordCategory records the columns a category contributed
func RecordCategory(category string, regressors int) {
	CategoryRegressors.WithLabelValues(category).Observe(float64(regressors))
}

// RecordScrub records the frames a file excluded
func RecordScrub(excluded int) {
	ScrubbedFrames.Observe(float64(excluded))
}

// RecordSubstitution records a pre-denoised image directive
func RecordSubstitution(category string) {
	SubstitutionsTotal.WithLabelValues(category).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
