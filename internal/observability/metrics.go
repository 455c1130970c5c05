package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Like toggle outcomes.
const (
	OutcomeLiked         = "liked"
	OutcomeUnliked       = "unliked"
	OutcomeRaceRecovered = "race_recovered"
)

var (
	// CommentTreeNodes records how many comments each assembled tree holds.
	CommentTreeNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "karmafeed_comment_tree_nodes",
		Help:    "Number of comments in an assembled comment tree",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// CommentTreeDepth records the deepest reply chain of each assembled tree.
	CommentTreeDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "karmafeed_comment_tree_depth",
		Help:    "Maximum reply depth of an assembled comment tree",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	// LikeToggles counts like toggles by target kind and outcome.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "karmafeed_like_toggle_total",
		Help: "Total like toggles by target and outcome",
	}, []string{"target", "outcome"})

	// LeaderboardDuration records how long a leaderboard computation takes.
	LeaderboardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "karmafeed_leaderboard_duration_seconds",
		Help:    "Time spent aggregating the karma leaderboard",
		Buckets: prometheus.DefBuckets,
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "karmafeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveCommentTree records the size and depth of an assembled tree.
func ObserveCommentTree(nodes, depth int) {
	CommentTreeNodes.Observe(float64(nodes))
	CommentTreeDepth.Observe(float64(depth))
}

// RecordLikeToggle increments the toggle counter for the given target and outcome.
func RecordLikeToggle(target, outcome string) {
	LikeToggles.WithLabelValues(target, outcome).Inc()
}
