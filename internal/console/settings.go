package console

import (
	"context"
	"sync"

	"github.com/technosupport/cctv-console/internal/config"
	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/metrics"
)

// BaselineSource supplies the fixed base every settings push merges over.
// The config watcher implements it so an edited config file takes effect on
// the next push.
type BaselineSource interface {
	Baseline() config.SettingsBaseline
}

// SettingsPanel models the sidebar settings. Threshold and sensitivity are
// sliders; the live-drag value only updates the display, a network push
// happens on the drag-end commit alone. Sensitivity is display-only and is
// never sent to the backend.
type SettingsPanel struct {
	gw       *gateway.Client
	notifier *Notifier
	baseline BaselineSource

	mu          sync.RWMutex
	threshold   float64
	sensitivity float64
	showBoxes   bool
	showWeapons bool
	submitting  bool
}

// SettingsState is the rendered panel state.
type SettingsState struct {
	Threshold   float64 `json:"threshold"`
	Sensitivity float64 `json:"sensitivity"`
	ShowBoxes   bool    `json:"show_boxes"`
	ShowWeapons bool    `json:"show_weapons"`
	Submitting  bool    `json:"submitting"`
}

func NewSettingsPanel(gw *gateway.Client, notifier *Notifier, baseline BaselineSource) *SettingsPanel {
	b := baseline.Baseline()
	return &SettingsPanel{
		gw:          gw,
		notifier:    notifier,
		baseline:    baseline,
		threshold:   b.CrimeThreshold,
		sensitivity: 0.85,
		showBoxes:   b.ShowBoxes,
		showWeapons: b.ShowWeapons,
	}
}

// State returns the current panel state.
func (p *SettingsPanel) State() SettingsState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return SettingsState{
		Threshold:   p.threshold,
		Sensitivity: p.sensitivity,
		ShowBoxes:   p.showBoxes,
		ShowWeapons: p.showWeapons,
		Submitting:  p.submitting,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetThreshold updates the displayed threshold during a slider drag. No
// network call happens here.
func (p *SettingsPanel) SetThreshold(v float64) {
	p.mu.Lock()
	p.threshold = clamp01(v)
	p.mu.Unlock()
}

// CommitThreshold is the drag-end event: it fixes the display value and
// issues exactly one settings push with the new threshold merged over the
// baseline.
func (p *SettingsPanel) CommitThreshold(ctx context.Context, v float64) error {
	p.SetThreshold(v)
	return p.push(ctx, func(s *gateway.SettingsPayload) {
		s.CrimeThreshold = clamp01(v)
	})
}

// SetSensitivity updates the display-only motion sensitivity.
func (p *SettingsPanel) SetSensitivity(v float64) {
	p.mu.Lock()
	p.sensitivity = clamp01(v)
	p.mu.Unlock()
}

// SetShowBoxes toggles the motion-box overlay option and pushes.
func (p *SettingsPanel) SetShowBoxes(ctx context.Context, on bool) error {
	p.mu.Lock()
	p.showBoxes = on
	p.mu.Unlock()
	return p.push(ctx, func(s *gateway.SettingsPayload) {
		s.ShowBoxes = on
	})
}

// SetShowWeapons toggles the weapon overlay option and pushes.
func (p *SettingsPanel) SetShowWeapons(ctx context.Context, on bool) error {
	p.mu.Lock()
	p.showWeapons = on
	p.mu.Unlock()
	return p.push(ctx, func(s *gateway.SettingsPayload) {
		s.ShowWeapons = on
	})
}

// push builds the full payload (baseline merged with the panel's current
// values and the caller's override) and posts it. The payload is
// constructed fresh per push and never persisted here; the server is the
// sole source of truth on next load.
func (p *SettingsPanel) push(ctx context.Context, override func(*gateway.SettingsPayload)) error {
	p.mu.Lock()
	p.submitting = true
	base := p.baseline.Baseline()
	payload := gateway.SettingsPayload{
		FPSTarget:      base.FPSTarget,
		CrimeThreshold: p.threshold,
		ShowBoxes:      p.showBoxes,
		ShowWeapons:    p.showWeapons,
	}
	p.mu.Unlock()

	override(&payload)
	err := p.gw.PushSettings(ctx, payload)

	p.mu.Lock()
	p.submitting = false
	p.mu.Unlock()

	if err != nil {
		p.notifier.Error("Error", failureDetail(err, "Failed to update settings"))
		metrics.RecordAction("settings_push", false)
		return err
	}
	metrics.RecordAction("settings_push", true)
	return nil
}
