package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// All metrics are low-cardinality: feed names and action names only, never
// alert ids or usernames.

var (
	// PollTicksTotal counts poll ticks issued per feed.
	PollTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_poll_ticks_total",
			Help: "Total poll ticks issued, by feed",
		},
		[]string{"feed"},
	)

	// PollFailuresTotal counts failed poll ticks per feed. Failures are
	// logged and retried at the next fixed interval, never backed off.
	PollFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_poll_failures_total",
			Help: "Total failed poll ticks, by feed",
		},
		[]string{"feed"},
	)

	// PollStaleDroppedTotal counts late responses discarded because the
	// poller was stopped before they resolved.
	PollStaleDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_poll_stale_dropped_total",
			Help: "Responses dropped after the owning poller stopped, by feed",
		},
		[]string{"feed"},
	)

	// ControlActionsTotal counts user-triggered actions by name and outcome.
	ControlActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_control_actions_total",
			Help: "User-triggered control actions, by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// StreamViewers tracks currently connected websocket frame viewers.
	StreamViewers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "console_stream_viewers",
			Help: "Connected websocket frame viewers, by feed",
		},
		[]string{"feed"},
	)
)

func RecordTick(feed string)      { PollTicksTotal.WithLabelValues(feed).Inc() }
func RecordFailure(feed string)   { PollFailuresTotal.WithLabelValues(feed).Inc() }
func RecordStale(feed string)     { PollStaleDroppedTotal.WithLabelValues(feed).Inc() }
func RecordAction(action string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "fail"
	}
	ControlActionsTotal.WithLabelValues(action, outcome).Inc()
}
