package monitor

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransitionsApplied counts committed status transitions by target state.
	TransitionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_transitions_total",
			Help: "Total number of committed submission status transitions.",
		},
		[]string{"to_status"},
	)

	// ConflictsRejected counts transitions aborted by the optimistic
	// concurrency check.
	ConflictsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_transition_conflicts_total",
			Help: "Total number of transitions rejected due to concurrent status changes.",
		},
	)

	// NotificationsDispatched counts fan-out notifications by effect kind.
	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Total number of notification effects dispatched.",
		},
		[]string{"kind"},
	)

	// RemindersSent counts review reminder emails.
	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_reminders_sent_total",
			Help: "Total number of review reminder emails sent.",
		},
	)
)

func init() {
	prometheus.MustRegister(TransitionsApplied, ConflictsRejected, NotificationsDispatched, RemindersSent)
}

// RegisterMetricsRoute exposes the prometheus handler on the router.
func RegisterMetricsRoute(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
