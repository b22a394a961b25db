package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActivitiesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_saved_total",
			Help: "Total number of activities persisted",
		},
		[]string{"activity_type"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notification records created",
		},
		[]string{"activity_type"},
	)

	RecipientsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_recipients_suppressed_total",
			Help: "Candidates dropped by permission, tag or preference rules",
		},
		[]string{"activity_type", "reason"},
	)

	CandidateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_candidate_failures_total",
			Help: "Per-candidate fan-out tasks that returned an error",
		},
		[]string{"activity_type"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Notification emails handed to the mail server",
		},
		[]string{"status"},
	)

	FanOutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanout_duration_seconds",
			Help:    "Duration of the activity fan-out after the save",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"activity_type"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
