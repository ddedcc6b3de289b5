package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/metrics"
	"github.com/technosupport/cctv-console/internal/poller"
)

// Intervals are the per-feed poll periods for a page composition.
type Intervals struct {
	Stats  time.Duration
	Frame  time.Duration
	Alerts time.Duration
}

// DefaultIntervals mirrors the observed feed cadences: stats 1s, frames 33ms
// (~30fps), alert lists 2s.
func DefaultIntervals() Intervals {
	return Intervals{
		Stats:  time.Second,
		Frame:  33 * time.Millisecond,
		Alerts: 2 * time.Second,
	}
}

const dashboardAlertLimit = 10

// Dashboard is the single-camera page composition. It owns three independent
// pollers (stats, frame, alerts) and the state they replace; view handlers
// read snapshots and issue control actions through it.
type Dashboard struct {
	gw        *gateway.Client
	notifier  *Notifier
	intervals Intervals

	mu            sync.RWMutex
	stats         gateway.LiveStats
	frame         string
	alerts        []gateway.Alert
	toggleLoading bool

	pollers []*poller.Poller
}

// DashboardState is one coherent snapshot for rendering.
type DashboardState struct {
	Stats         gateway.LiveStats `json:"stats"`
	Frame         string            `json:"frame"`
	Alerts        []gateway.Alert   `json:"alerts"`
	ToggleLoading bool              `json:"toggle_loading"`
}

func NewDashboard(gw *gateway.Client, notifier *Notifier, intervals Intervals) *Dashboard {
	return &Dashboard{gw: gw, notifier: notifier, intervals: intervals}
}

// Start launches the three feed pollers.
func (d *Dashboard) Start() {
	d.pollers = []*poller.Poller{
		poller.New("dashboard_stats", d.intervals.Stats,
			func(ctx context.Context) (interface{}, error) { return d.gw.LiveStats(ctx) },
			func(v interface{}) { d.setStats(*v.(*gateway.LiveStats)) },
		),
		poller.New("dashboard_frame", d.intervals.Frame,
			func(ctx context.Context) (interface{}, error) { return d.gw.LiveFrame(ctx) },
			func(v interface{}) { d.setFrame(v.(string)) },
		),
		poller.New("dashboard_alerts", d.intervals.Alerts,
			func(ctx context.Context) (interface{}, error) { return d.gw.RecentAlerts(ctx, dashboardAlertLimit) },
			func(v interface{}) { d.setAlerts(v.([]gateway.Alert)) },
		),
	}
	for _, p := range d.pollers {
		p.Start()
	}
}

// Stop cancels the feed pollers; late responses are dropped by the pollers'
// generation check.
func (d *Dashboard) Stop() {
	for _, p := range d.pollers {
		p.Stop()
	}
}

func (d *Dashboard) setStats(s gateway.LiveStats) {
	d.mu.Lock()
	d.stats = s
	d.mu.Unlock()
}

func (d *Dashboard) setFrame(f string) {
	d.mu.Lock()
	d.frame = f
	d.mu.Unlock()
}

func (d *Dashboard) setAlerts(a []gateway.Alert) {
	d.mu.Lock()
	d.alerts = a
	d.mu.Unlock()
}

// Snapshot returns a copy of the current page state.
func (d *Dashboard) Snapshot() DashboardState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DashboardState{
		Stats:         d.stats,
		Frame:         d.frame,
		Alerts:        append([]gateway.Alert{}, d.alerts...),
		ToggleLoading: d.toggleLoading,
	}
}

// Frame returns only the latest frame, for the websocket stream.
func (d *Dashboard) Frame() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame
}

// Toggle starts or stops detection. The running flag flips optimistically
// before the request resolves; on failure it reverts and exactly one error
// notification is queued; on success the canonical stats snapshot is
// re-fetched to reconcile.
func (d *Dashboard) Toggle(ctx context.Context, active bool) error {
	d.mu.Lock()
	d.toggleLoading = true
	d.stats.Running = active
	d.mu.Unlock()

	err := d.gw.LiveControl(ctx, active)

	if err != nil {
		d.mu.Lock()
		d.stats.Running = !active
		d.toggleLoading = false
		d.mu.Unlock()
		d.notifier.Error("Error", failureDetail(err, "Failed to toggle detection"))
		metrics.RecordAction("live_control", false)
		return err
	}

	msg := "Detection Stopped"
	desc := "Detection is now stopped"
	if active {
		msg = "Detection Started"
		desc = "Detection is now running"
	}
	d.notifier.Success(msg, desc)
	metrics.RecordAction("live_control", true)

	// Reconcile with server truth; a failed refresh keeps the optimistic
	// value until the next stats tick.
	if stats, err := d.gw.LiveStats(ctx); err == nil {
		d.setStats(*stats)
	}

	d.mu.Lock()
	d.toggleLoading = false
	d.mu.Unlock()
	return nil
}

// failureDetail pulls a server-provided detail message out of an error, or
// falls back to the generic message.
func failureDetail(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
