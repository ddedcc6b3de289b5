package web

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/cctv-console/internal/session"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger generates a req_id and logs trace info
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New().String()
		start := time.Now()

		w.Header().Set("X-Request-ID", reqID)
		log.Printf("[REQ:%s] %s %s from %s", reqID, r.Method, r.URL.Path, r.RemoteAddr)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.Printf("[REQ:%s] Completed %d in %v", reqID, rw.status, time.Since(start))
	})
}

const crashPage = `<!DOCTYPE html><html><head><title>Something went wrong</title></head>
<body><h1>Something went wrong</h1>
<p>The console hit an unexpected error.</p>
<p><a href="javascript:location.reload()">Reload</a></p></body></html>`

// Recoverer is the single top-level crash boundary: a panic replaces the
// whole response with a generic reload screen (pages) or a bare 500 (API).
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[ERROR] Panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				if strings.HasPrefix(r.URL.Path, "/api/") {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(crashPage))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Guard gates routes on session presence. The check is presence-only:
// a token in the store is trusted as-is, the backend rejects stale ones
// with a 401 on the next proxied call.
type Guard struct {
	Sessions *session.Store
}

// Page redirects unauthenticated browsers to the login page.
func (g *Guard) Page(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Sessions.Authenticated(r.Context()) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// API rejects unauthenticated JSON calls with a bare 401.
func (g *Guard) API(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Sessions.Authenticated(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
