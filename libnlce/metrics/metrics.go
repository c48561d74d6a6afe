package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClustersGrown counts symmetry-distinct clusters produced, by cluster size.
	ClustersGrown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlce_clusters_grown_total",
			Help: "Symmetry-distinct clusters produced by the grower",
		},
		[]string{"size"},
	)

	// TopoClasses tracks the number of topological classes of the most recent run, by cluster size.
	TopoClasses = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nlce_topo_classes",
			Help: "Topological classes found per cluster size",
		},
		[]string{"size"},
	)

	// IsoTests counts isomorphism tests, by stage.
	IsoTests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlce_isomorphism_tests_total",
			Help: "Bond graph isomorphism tests performed",
		},
		[]string{"stage"},
	)

	// StageDuration measures stage wall time, by stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlce_stage_duration_seconds",
			Help:    "Wall time of a cluster expansion stage",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		},
		[]string{"stage"},
	)
)

// Stage names
const (
	StageGrow     = "grow"
	StageClassify = "classify"
	StageSubclust = "subclusters"
)

// SizeLabel formats a cluster size as a metric label.
func SizeLabel(size int) string {
	return strconv.Itoa(size)
}

// ObserveStage records the time elapsed since start for the given stage.
func ObserveStage(stage string, start time.Time) time.Duration {
	elapsed := time.Since(start)
	StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	return elapsed
}
