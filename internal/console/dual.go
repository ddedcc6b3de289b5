package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/metrics"
	"github.com/technosupport/cctv-console/internal/poller"
)

const (
	dualAlertLimit      = 5
	dualCamera2Truncate = 3
)

// AlertSource supplies the per-camera alert feed for the dual dashboard. The
// backend has no camera-scoped alerts endpoint today, so the default
// implementation serves both cameras from the shared pool; keeping it behind
// this interface makes the swap a one-line change if that endpoint appears.
type AlertSource interface {
	CameraAlerts(ctx context.Context, camera int) ([]gateway.Alert, error)
}

// SharedPoolAlertSource reads /alerts/recent?limit=5 for both cameras and
// truncates camera 2's list to 3. The two feeds are therefore NOT independent;
// this reproduces the backend's current capability, it is not a bug here.
type SharedPoolAlertSource struct {
	GW *gateway.Client
}

func (s SharedPoolAlertSource) CameraAlerts(ctx context.Context, camera int) ([]gateway.Alert, error) {
	alerts, err := s.GW.RecentAlerts(ctx, dualAlertLimit)
	if err != nil {
		return nil, err
	}
	alerts = lo.Map(alerts, func(a gateway.Alert, _ int) gateway.Alert {
		a.CameraID = camera
		return a
	})
	if camera == 2 {
		alerts = lo.Slice(alerts, 0, dualCamera2Truncate)
	}
	return alerts, nil
}

// DualDashboard is the two-camera page composition: one shared stats poll,
// one frame poll per camera, one alert poll per camera, and per-camera
// toggles whose loading flags never cross cameras.
type DualDashboard struct {
	gw        *gateway.Client
	alerts    AlertSource
	intervals Intervals

	mu            sync.RWMutex
	stats         [2]gateway.LiveStats
	frames        [2]string
	alertLists    [2][]gateway.Alert
	toggleLoading [2]bool

	pollers []*poller.Poller
}

// CameraPane is one camera's slice of the dual page state.
type CameraPane struct {
	Stats         gateway.LiveStats `json:"stats"`
	Frame         string            `json:"frame"`
	Alerts        []gateway.Alert   `json:"alerts"`
	ToggleLoading bool              `json:"toggle_loading"`
}

// DualState is a snapshot of both panes.
type DualState struct {
	Camera1 CameraPane `json:"camera_1"`
	Camera2 CameraPane `json:"camera_2"`
}

func NewDualDashboard(gw *gateway.Client, alerts AlertSource, intervals Intervals) *DualDashboard {
	d := &DualDashboard{gw: gw, alerts: alerts, intervals: intervals}
	for i := range d.stats {
		d.stats[i].SourceType = "unknown"
	}
	return d
}

// Start launches the five feed pollers.
func (d *DualDashboard) Start() {
	d.pollers = []*poller.Poller{
		poller.New("dual_stats", d.intervals.Stats,
			func(ctx context.Context) (interface{}, error) { return d.gw.DualStats(ctx) },
			func(v interface{}) { d.setStats(*v.(*gateway.DualStats)) },
		),
	}
	for cam := 1; cam <= 2; cam++ {
		cam := cam
		d.pollers = append(d.pollers,
			poller.New(fmt.Sprintf("dual_frame_%d", cam), d.intervals.Frame,
				func(ctx context.Context) (interface{}, error) { return d.gw.DualFrame(ctx, cam) },
				func(v interface{}) { d.setFrame(cam, v.(string)) },
			),
			poller.New(fmt.Sprintf("dual_alerts_%d", cam), d.intervals.Alerts,
				func(ctx context.Context) (interface{}, error) { return d.alerts.CameraAlerts(ctx, cam) },
				func(v interface{}) { d.setAlerts(cam, v.([]gateway.Alert)) },
			),
		)
	}
	for _, p := range d.pollers {
		p.Start()
	}
}

func (d *DualDashboard) Stop() {
	for _, p := range d.pollers {
		p.Stop()
	}
}

func (d *DualDashboard) setStats(s gateway.DualStats) {
	d.mu.Lock()
	d.stats[0] = s.Camera1
	d.stats[1] = s.Camera2
	d.mu.Unlock()
}

func (d *DualDashboard) setFrame(camera int, f string) {
	d.mu.Lock()
	d.frames[camera-1] = f
	d.mu.Unlock()
}

func (d *DualDashboard) setAlerts(camera int, a []gateway.Alert) {
	d.mu.Lock()
	d.alertLists[camera-1] = a
	d.mu.Unlock()
}

// Snapshot returns a copy of both panes.
func (d *DualDashboard) Snapshot() DualState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DualState{
		Camera1: d.pane(1),
		Camera2: d.pane(2),
	}
}

// pane assumes d.mu is held.
func (d *DualDashboard) pane(camera int) CameraPane {
	i := camera - 1
	return CameraPane{
		Stats:         d.stats[i],
		Frame:         d.frames[i],
		Alerts:        append([]gateway.Alert{}, d.alertLists[i]...),
		ToggleLoading: d.toggleLoading[i],
	}
}

// Frame returns the latest frame for one camera, for the websocket stream.
func (d *DualDashboard) Frame(camera int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames[camera-1]
}

// Toggle starts or stops one camera. Only that camera's running flag flips
// optimistically and only that camera's loading flag is set; a failure
// reverts just that camera. On success both panes reconcile from the
// canonical dual stats snapshot.
func (d *DualDashboard) Toggle(ctx context.Context, camera int, active bool) error {
	if camera != 1 && camera != 2 {
		return fmt.Errorf("invalid camera %d", camera)
	}
	i := camera - 1

	d.mu.Lock()
	d.toggleLoading[i] = true
	d.stats[i].Running = active
	d.mu.Unlock()

	err := d.gw.DualControl(ctx, camera, active)

	if err != nil {
		d.mu.Lock()
		d.stats[i].Running = !active
		d.toggleLoading[i] = false
		d.mu.Unlock()
		metrics.RecordAction("dual_control", false)
		return err
	}
	metrics.RecordAction("dual_control", true)

	if stats, err := d.gw.DualStats(ctx); err == nil {
		d.setStats(*stats)
	}

	d.mu.Lock()
	d.toggleLoading[i] = false
	d.mu.Unlock()
	return nil
}
