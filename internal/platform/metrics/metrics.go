package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AssetsCreated     prometheus.Counter
	AssetsUpdated     prometheus.Counter
	AssetsDeleted     prometheus.Counter
	IssuancesOpened   prometheus.Counter
	IssuancesReturned prometheus.Counter
	IssueRollbacks    prometheus.Counter
	LoginAttempts     *prometheus.CounterVec
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AssetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assettrack_assets_created_total",
			Help: "Total number of assets added to the registry",
		}),
		AssetsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assettrack_assets_updated_total",
			Help: "Total number of asset record updates",
		}),
		AssetsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assettrack_assets_deleted_total",
			Help: "Total number of assets removed from the registry",
		}),
		IssuancesOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assettrack_issuances_opened_total",
			Help: "Total number of issuances opened by the coordinator",
		}),
		IssuancesReturned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assettrack_issuances_returned_total",
			Help: "Total number of issuances closed by the coordinator",
		}),
		IssueRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "assettrack_issue_rollbacks_total",
			Help: "Total number of half-applied issue operations rolled back",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "assettrack_login_attempts_total",
			Help: "Login attempts partitioned by outcome",
		}, []string{"outcome"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assettrack_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
