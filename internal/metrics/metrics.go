package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairdex_scan_runs_total",
			Help: "Total number of scan batches",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pairdex_scan_duration_seconds",
			Help:    "Scan batch duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	ScanRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairdex_scan_running",
			Help: "Whether a scan batch is in progress (1 = running, 0 = idle)",
		},
	)

	LastScanTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairdex_last_scan_timestamp",
			Help: "Unix timestamp of the last completed scan batch",
		},
	)
)

// Directory metrics
var (
	DirectoriesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pairdex_directories_scanned_total",
			Help: "Total number of directories whose index record was written",
		},
	)

	DirectoryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairdex_directory_errors_total",
			Help: "Total number of directories that could not be processed",
		},
		[]string{"reason"}, // "list", "write", "timeout", "permission"
	)

	PairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairdex_pairs_total",
			Help: "Total number of content files paired, by match method",
		},
		[]string{"method"},
	)
)

// Learning and watch metrics
var (
	LearnedPairs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairdex_learned_pairs",
			Help: "Number of learned pairs in the most recently loaded snapshot",
		},
	)

	RescansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairdex_rescans_total",
			Help: "Total number of single-directory rescans",
		},
		[]string{"trigger"}, // "watch", "manual", "learn"
	)
)
