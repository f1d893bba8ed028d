package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TrackedCallsCount    prometheus.Gauge
	PendingContactsCount prometheus.Gauge
	ScreenPopsTotal      *prometheus.CounterVec
	CallInfoEventsTotal  *prometheus.CounterVec
	LogSavesTotal        *prometheus.CounterVec
	RepollAttemptsTotal  prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
	SearchDuration       prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TrackedCallsCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracked_calls_count",
			Help: "Current number of calls being processed",
		}),
		PendingContactsCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pending_contacts_count",
			Help: "Current number of calls awaiting new-contact resolution",
		}),
		ScreenPopsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "screen_pops_total",
			Help: "Total number of screen-pops issued to the CRM",
		}, []string{"trigger"}),
		CallInfoEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "call_info_events_total",
			Help: "Total number of call-info events fired to the widget",
		}, []string{"source"}),
		LogSavesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "log_saves_total",
			Help: "Total number of call log save attempts",
		}, []string{"status"}),
		RepollAttemptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "repoll_attempts_total",
			Help: "Total number of re-search polls for pending contacts",
		}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of user-visible notifications raised",
		}, []string{"type"}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crm_search_duration_seconds",
			Help:    "Time taken for CRM directory searches",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
