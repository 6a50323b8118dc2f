package service

import "github.com/prometheus/client_golang/prometheus"

var (
	withdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_withdrawals_total",
			Help: "Manual withdrawals by resulting payout status",
		},
		[]string{"status"},
	)
	cycleCompletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_cycle_completions_total",
			Help: "Automatic 30-day cycle completions",
		},
	)
	transferFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_transfer_failures_total",
			Help: "Token transfer submissions that failed after the balance reset",
		},
	)
)

func init() {
	prometheus.MustRegister(withdrawalsTotal)
	prometheus.MustRegister(cycleCompletionsTotal)
	prometheus.MustRegister(transferFailuresTotal)
}
