package service

import "github.com/prometheus/client_golang/prometheus"

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "culfs_status_transitions_total", Help: "Count of applied status transitions"},
		[]string{"entity", "from", "to"},
	)
	matchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "culfs_matches_total", Help: "Count of match attempts by result"},
		[]string{"result"},
	)
)

func init() { prometheus.MustRegister(transitionsTotal, matchesTotal) }

func countLost[S ~string](from, to S) {
	transitionsTotal.WithLabelValues("lost_item", string(from), string(to)).Inc()
}

func countFound[S ~string](from, to S) {
	transitionsTotal.WithLabelValues("found_item", string(from), string(to)).Inc()
}
