package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{ token string }

func (s *staticTokens) Token(ctx context.Context) string { return s.token }

func TestClient_AttachesBearerWhenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"frame_count":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "t1"})
	_, err := c.LiveStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestClient_OmitsHeaderWhenNoToken(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"token":"t1","role":"admin","username":"admin"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{})
	resp, err := c.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.False(t, hasAuth, "pre-login requests must not send Authorization")
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, "admin", resp.Role)
	assert.Equal(t, "admin", resp.Username)
}

func TestClient_ExtractsDetailFromErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{})
	_, err := c.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
}

func TestRecentAlerts_EnvelopeShapes(t *testing.T) {
	cases := map[string]string{
		"bare array": `[{"id":"A1","threat_score":0.8}]`,
		"alerts key": `{"alerts":[{"id":"A1","threat_score":0.8}]}`,
		"data key":   `{"data":[{"id":"A1","threat_score":0.8}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "limit=10", r.URL.RawQuery)
				w.Write([]byte(body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, &staticTokens{token: "t1"})
			alerts, err := c.RecentAlerts(context.Background(), 10)
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, "A1", alerts[0].Key())
			assert.Equal(t, 0.8, alerts[0].ThreatScore)
		})
	}
}

func TestRecentAlerts_NoLimitOmitsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"alerts":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "t1"})
	alerts, err := c.RecentAlerts(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestRecentAlerts_WeaponsCountFallbacks(t *testing.T) {
	body := `{"alerts":[
		{"id":"A1","detection_details":{"weapons_detected":2}},
		{"id":"A2","weapons":[{},{},{}]},
		{"id":"A3","weapons_count":4},
		{"id":"A4"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "t1"})
	alerts, err := c.RecentAlerts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, alerts, 4)
	assert.Equal(t, 2, alerts[0].WeaponsCount)
	assert.Equal(t, 3, alerts[1].WeaponsCount)
	assert.Equal(t, 4, alerts[2].WeaponsCount)
	assert.Equal(t, 0, alerts[3].WeaponsCount)

	// Missing timestamp is filled at transform time, never left blank.
	assert.NotEmpty(t, alerts[3].Timestamp)
}

func TestVerifyAlert_PostsIdentityAndFlag(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "t1"})
	require.NoError(t, c.VerifyAlert(context.Background(), "A1", "admin", 1))
	assert.Equal(t, "/alerts/A1/verify", gotPath)
	assert.JSONEq(t, `{"verified_by":"admin","is_valid":1}`, gotBody)
}

func TestDualEndpoints_Paths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"camera_1":{"running":true},"camera_2":{},"frame":"data:image/jpeg;base64,x"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "t1"})
	ctx := context.Background()

	stats, err := c.DualStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Camera1.Running)
	assert.False(t, stats.Camera2.Running)

	frame, err := c.DualFrame(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,x", frame)

	require.NoError(t, c.DualControl(ctx, 1, true))

	assert.Equal(t, []string{
		"/live/dual/stats",
		"/live/dual/frame/2",
		"/live/dual/control/1",
	}, paths)
}
