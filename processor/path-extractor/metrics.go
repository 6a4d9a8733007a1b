package pathextractor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for filesTotal.
const (
	resultOK      = "ok"
	resultCached  = "cached"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

var (
	// filesTotal counts processed files by result
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "code2vec_files_total",
		Help: "Total files processed by result",
	}, []string{"result", "language"})

	// contextsTotal counts extracted path contexts
	contextsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "code2vec_path_contexts_total",
		Help: "Total path contexts extracted",
	}, []string{"language"})

	// leavesPerTree tracks tree sizes in leaves
	leavesPerTree = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "code2vec_tree_leaves",
		Help:    "Number of leaves per extracted tree",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
	})

	// extractDuration tracks per-file extraction latency
	extractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "code2vec_extract_duration_seconds",
		Help:    "Per-file parse and extraction duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"language"})
)
