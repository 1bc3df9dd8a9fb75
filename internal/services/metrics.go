package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// leadPurchases counts new (non-replayed) purchases by consumption type.
	leadPurchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_purchases_total",
			Help: "Total number of lead purchases by consumption type.",
		},
		[]string{"consumption_type"},
	)

	// quotaExhausted counts purchases refused because no bucket had room.
	quotaExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_quota_exhausted_total",
			Help: "Total number of purchase attempts refused for exhausted quota.",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(leadPurchases, quotaExhausted)
}
