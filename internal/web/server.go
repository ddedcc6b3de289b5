package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFS embed.FS

// Router builds the full route table. Pages redirect to /login without a
// session; API routes answer 401 instead.
func (s *Server) Router() http.Handler {
	guard := &Guard{Sessions: s.Sessions}

	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(Recoverer)

	// Public
	r.Get("/login", s.LoginPage)
	r.Post("/login", s.Login)
	r.Post("/logout", s.Logout)
	r.Handle("/metrics", promhttp.Handler())

	staticRoot, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))))

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(guard.Page)
		r.Get("/", s.page("dashboard.html", "Dashboard", "dashboard"))
		r.Get("/dual", s.page("dual.html", "Dual Camera", "dual"))
		r.Get("/alerts", s.page("alerts.html", "Alerts", "alerts"))
		r.Get("/verified", s.page("verified.html", "Verified Alerts", "verified"))
	})

	// API
	r.Route("/api", func(r chi.Router) {
		r.Use(guard.API)
		r.Get("/state/dashboard", s.DashboardState)
		r.Get("/state/dual", s.DualState)
		r.Get("/state/alerts", s.AlertsState)
		r.Get("/state/verified", s.VerifiedState)
		r.Get("/state/settings", s.SettingsState)
		r.Get("/notifications", s.Notifications)

		r.Post("/control", s.Control)
		r.Post("/dual/control/{camera}", s.DualControl)
		r.Post("/alerts/{id}/verify", s.VerifyAlert)
		r.Post("/settings", s.UpdateSettings)
		r.Post("/settings/threshold", s.UpdateThreshold)

		r.Get("/stream/frame", s.StreamFrame)
		r.Get("/stream/dual/{camera}", s.StreamDualFrame)
	})

	// Unknown paths route by auth state, never 404.
	r.NotFound(s.NotFound)

	return r
}
