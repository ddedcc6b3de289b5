package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/technosupport/cctv-console/internal/console"
	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/metrics"
	"github.com/technosupport/cctv-console/internal/session"
)

// Server holds every dependency the HTTP layer needs. Wiring happens in
// cmd/console; handlers only compose calls.
type Server struct {
	Sessions      *session.Store
	GW            *gateway.Client
	Dash          *console.Dashboard
	Dual          *console.DualDashboard
	Alerts        *console.AlertActions
	Settings      *console.SettingsPanel
	Notifier      *console.Notifier
	FrameInterval time.Duration
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] Encode response: %v", err)
	}
}

// upstreamError maps a backend failure onto our own response. Gateway
// errors carry the backend's status and detail; anything else is a 502.
func upstreamError(w http.ResponseWriter, err error) {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		http.Error(w, apiErr.Detail, apiErr.Status)
		return
	}
	http.Error(w, "Backend unavailable", http.StatusBadGateway)
}

// --- Auth ---

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	if s.Sessions.Authenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	renderPage(w, "login.html", pageData{Title: "Login"})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	resp, err := s.GW.Login(r.Context(), username, password)
	if err != nil {
		metrics.RecordAction("login", false)
		msg := "Login failed"
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			msg = apiErr.Detail
		}
		// Failed login leaves the store untouched and stays on the page.
		renderPage(w, "login.html", pageData{Title: "Login", Error: msg})
		return
	}

	if err := s.Sessions.SetSession(r.Context(), resp.Token, resp.Role, resp.Username); err != nil {
		log.Printf("[ERROR] Persist session: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	metrics.RecordAction("login", true)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.ClearSession(r.Context()); err != nil {
		log.Printf("[ERROR] Clear session: %v", err)
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// --- Pages ---

func (s *Server) page(name, title, active string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		renderPage(w, name, pageData{
			Title:    title,
			Active:   active,
			Username: s.Sessions.Username(ctx),
			Role:     s.Sessions.Role(ctx),
		})
	}
}

// NotFound sends strays to the dashboard or the login page depending on
// whether a session exists.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	if s.Sessions.Authenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// --- State ---

func (s *Server) DashboardState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dash.Snapshot())
}

func (s *Server) DualState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dual.Snapshot())
}

// AlertsState is the Alerts page's one-shot fetch: the unbounded recent
// list, fresh from the backend per page load. It deliberately does not read
// the dashboard's polled limit=10 pool.
func (s *Server) AlertsState(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.GW.RecentAlerts(r.Context(), 0)
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// VerifiedState proxies the verified list straight through; it is not
// polled by a background feed, only fetched when the page asks.
func (s *Server) VerifiedState(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.GW.VerifiedAlerts(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (s *Server) SettingsState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Settings.State())
}

func (s *Server) Notifications(w http.ResponseWriter, r *http.Request) {
	notes := s.Notifier.Drain()
	if notes == nil {
		notes = []console.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// --- Actions ---

func (s *Server) Control(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := s.Dash.Toggle(r.Context(), req.Active); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Dash.Snapshot())
}

func (s *Server) DualControl(w http.ResponseWriter, r *http.Request) {
	camera, err := strconv.Atoi(chi.URLParam(r, "camera"))
	if err != nil || (camera != 1 && camera != 2) {
		http.Error(w, "Camera must be 1 or 2", http.StatusBadRequest)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := s.Dual.Toggle(r.Context(), camera, req.Active); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Dual.Snapshot())
}

func (s *Server) VerifyAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "id")
	if alertID == "" {
		http.Error(w, "Alert ID required", http.StatusBadRequest)
		return
	}
	var req struct {
		IsValid int `json:"is_valid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := s.Alerts.Verify(r.Context(), alertID, req.IsValid); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdateSettings handles the non-threshold knobs. Fields are pointers so
// a partial body only touches what it names.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShowBoxes   *bool    `json:"show_boxes"`
		ShowWeapons *bool    `json:"show_weapons"`
		Sensitivity *float64 `json:"sensitivity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if req.Sensitivity != nil {
		s.Settings.SetSensitivity(*req.Sensitivity)
	}
	if req.ShowBoxes != nil {
		if err := s.Settings.SetShowBoxes(ctx, *req.ShowBoxes); err != nil {
			upstreamError(w, err)
			return
		}
	}
	if req.ShowWeapons != nil {
		if err := s.Settings.SetShowWeapons(ctx, *req.ShowWeapons); err != nil {
			upstreamError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Settings.State())
}

// UpdateThreshold distinguishes the live drag from the drag end: only a
// commit reaches the backend.
func (s *Server) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value  float64 `json:"value"`
		Commit bool    `json:"commit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !req.Commit {
		s.Settings.SetThreshold(req.Value)
		writeJSON(w, http.StatusOK, s.Settings.State())
		return
	}
	if err := s.Settings.CommitThreshold(r.Context(), req.Value); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Settings.State())
}

// --- Streams ---

func (s *Server) StreamFrame(w http.ResponseWriter, r *http.Request) {
	serveFrames(w, r, "dashboard", s.FrameInterval, s.Dash.Frame)
}

func (s *Server) StreamDualFrame(w http.ResponseWriter, r *http.Request) {
	camera, err := strconv.Atoi(chi.URLParam(r, "camera"))
	if err != nil || (camera != 1 && camera != 2) {
		http.Error(w, "Camera must be 1 or 2", http.StatusBadRequest)
		return
	}
	feed := "dual_" + strconv.Itoa(camera)
	serveFrames(w, r, feed, s.FrameInterval, func() string { return s.Dual.Frame(camera) })
}
