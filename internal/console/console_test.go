package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technosupport/cctv-console/internal/config"
	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/session"
)

type staticTokens struct{ token string }

func (s *staticTokens) Token(ctx context.Context) string { return s.token }

type staticBaseline struct{ b config.SettingsBaseline }

func (s staticBaseline) Baseline() config.SettingsBaseline { return s.b }

func newGateway(url string) *gateway.Client {
	return gateway.NewClient(url, &staticTokens{token: "t1"})
}

func TestDashboardToggle_RevertsOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/live/control" {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"detail":"camera offline"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	notifier := NewNotifier()
	d := NewDashboard(newGateway(srv.URL), notifier, DefaultIntervals())

	err := d.Toggle(context.Background(), true)
	require.Error(t, err)

	state := d.Snapshot()
	assert.False(t, state.Stats.Running, "optimistic flip must revert on failure")
	assert.False(t, state.ToggleLoading)

	notes := notifier.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Equal(t, "camera offline", notes[0].Description)
}

func TestDashboardToggle_SuccessReconcilesFromStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/live/control":
			w.Write([]byte(`{}`))
		case "/live/stats":
			w.Write([]byte(`{"frame_count":7,"running":true,"fps":29.5}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	notifier := NewNotifier()
	d := NewDashboard(newGateway(srv.URL), notifier, DefaultIntervals())

	require.NoError(t, d.Toggle(context.Background(), true))

	state := d.Snapshot()
	assert.True(t, state.Stats.Running)
	assert.Equal(t, 7, state.Stats.FrameCount)
	assert.Equal(t, 29.5, state.Stats.FPS)

	notes := notifier.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, LevelSuccess, notes[0].Level)
	assert.Equal(t, "Detection Started", notes[0].Message)
}

func TestDualToggle_NeverTouchesOtherCamera(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/live/dual/control/1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"camera_1":{},"camera_2":{}}`))
	}))
	defer srv.Close()

	d := NewDualDashboard(newGateway(srv.URL), SharedPoolAlertSource{GW: newGateway(srv.URL)}, DefaultIntervals())

	// Seed camera 2 as running so we can see it is left alone.
	d.setStats(gateway.DualStats{Camera2: gateway.LiveStats{Running: true}})

	err := d.Toggle(context.Background(), 1, true)
	require.Error(t, err)

	state := d.Snapshot()
	assert.False(t, state.Camera1.Stats.Running, "camera 1 reverts")
	assert.False(t, state.Camera1.ToggleLoading)
	assert.True(t, state.Camera2.Stats.Running, "camera 2 untouched")
	assert.False(t, state.Camera2.ToggleLoading)
}

func TestSharedPoolAlertSource_Camera2Truncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/recent", r.URL.Path)
		assert.Equal(t, "limit=5", r.URL.RawQuery)
		w.Write([]byte(`{"alerts":[{"id":"A1"},{"id":"A2"},{"id":"A3"},{"id":"A4"},{"id":"A5"}]}`))
	}))
	defer srv.Close()

	src := SharedPoolAlertSource{GW: newGateway(srv.URL)}
	ctx := context.Background()

	cam1, err := src.CameraAlerts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cam1, 5)
	assert.Equal(t, 1, cam1[0].CameraID)

	cam2, err := src.CameraAlerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cam2, 3, "camera 2 shows a truncated view of the shared pool")
	assert.Equal(t, 2, cam2[0].CameraID)
	assert.Equal(t, "A1", cam2[0].Key())
}

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return session.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestVerify_SendsSessionUsername(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/A1/verify", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sessions := newSessionStore(t)
	require.NoError(t, sessions.SetSession(context.Background(), "t1", "admin", "admin"))

	notifier := NewNotifier()
	actions := &AlertActions{GW: newGateway(srv.URL), Sessions: sessions, Notifier: notifier}

	require.NoError(t, actions.Verify(context.Background(), "A1", 1))
	assert.Equal(t, "admin", gotBody["verified_by"])
	assert.Equal(t, float64(1), gotBody["is_valid"])

	notes := notifier.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "Alert updated", notes[0].Message)
}

func TestVerify_FailureProducesExactlyOneNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"alert not found"}`))
	}))
	defer srv.Close()

	sessions := newSessionStore(t)
	notifier := NewNotifier()
	actions := &AlertActions{GW: newGateway(srv.URL), Sessions: sessions, Notifier: notifier}

	err := actions.Verify(context.Background(), "missing", 0)
	require.Error(t, err)

	notes := notifier.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, LevelError, notes[0].Level)
	assert.Equal(t, "alert not found", notes[0].Description)

	// No session ever existed, so the default identity was sent; that is the
	// single documented fallback.
	assert.Equal(t, session.DefaultUsername, sessions.Username(context.Background()))
}

func TestSettings_DragUpdatesDisplayOnly_CommitPushesOnce(t *testing.T) {
	var pushes atomic.Int64
	var lastPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/live/settings", r.URL.Path)
		pushes.Add(1)
		json.NewDecoder(r.Body).Decode(&lastPayload)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	baseline := staticBaseline{b: config.SettingsBaseline{
		FPSTarget:      15,
		CrimeThreshold: 0.35,
		ShowBoxes:      true,
		ShowWeapons:    true,
	}}
	panel := NewSettingsPanel(newGateway(srv.URL), NewNotifier(), baseline)

	// Live drag: display value moves, nothing is posted.
	panel.SetThreshold(0.5)
	panel.SetThreshold(0.6)
	panel.SetThreshold(0.7)
	assert.Equal(t, 0.7, panel.State().Threshold)
	assert.Equal(t, int64(0), pushes.Load())

	// Drag-end: exactly one push with the baseline merged in.
	require.NoError(t, panel.CommitThreshold(context.Background(), 0.8))
	assert.Equal(t, int64(1), pushes.Load())
	assert.Equal(t, float64(15), lastPayload["fps_target"])
	assert.Equal(t, 0.8, lastPayload["crime_threshold"])
	assert.Equal(t, true, lastPayload["show_boxes"])
	assert.Equal(t, true, lastPayload["show_weapons"])

	// Sensitivity never reaches the wire.
	panel.SetSensitivity(0.4)
	assert.Equal(t, int64(1), pushes.Load())
	_, hasSensitivity := lastPayload["sensitivity"]
	assert.False(t, hasSensitivity)
}

func TestSettings_OptionTogglePushes(t *testing.T) {
	var lastPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&lastPayload)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	baseline := staticBaseline{b: config.SettingsBaseline{FPSTarget: 15, CrimeThreshold: 0.35, ShowBoxes: true, ShowWeapons: true}}
	panel := NewSettingsPanel(newGateway(srv.URL), NewNotifier(), baseline)

	require.NoError(t, panel.SetShowWeapons(context.Background(), false))
	assert.Equal(t, false, lastPayload["show_weapons"])
	assert.Equal(t, true, lastPayload["show_boxes"])
}
