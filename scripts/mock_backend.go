//go:build ignore

// Mock detection backend for local console development. Serves every
// endpoint the console calls, with a synthetic moving detection.
//
//	go run scripts/mock_backend.go
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

type state struct {
	mu       sync.Mutex
	running  [2]bool
	frames   int
	settings map[string]interface{}
	verified []map[string]interface{}
}

func main() {
	s := &state{settings: map[string]interface{}{
		"fps_target": 15, "crime_threshold": 0.35, "show_boxes": true, "show_weapons": true,
	}}

	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "admin" || req["password"] != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "mock-token", "role": "admin", "username": "admin"})
	})

	mux.HandleFunc("/live/stats", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.running[0] {
			s.frames++
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"running":     s.running[0],
			"fps":         28.0 + rand.Float64()*4,
			"frame_count": s.frames,
			"latest_results": map[string]interface{}{
				"threat_type": "weapon",
				"confidence":  0.5 + rand.Float64()*0.4,
			},
		})
	})

	mux.HandleFunc("/live/frame", func(w http.ResponseWriter, r *http.Request) {
		// 1x1 grey pixel, enough for the <img> to render.
		frame := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("jpeg-%d", time.Now().UnixMilli())))
		json.NewEncoder(w).Encode(map[string]string{"frame": frame})
	})

	mux.HandleFunc("/live/control", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]bool
		json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.running[0] = req["active"]
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/live/settings", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		json.NewDecoder(r.Body).Decode(&s.settings)
		log.Printf("Settings: %v", s.settings)
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/live/dual/stats", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		pane := func(i int) map[string]interface{} {
			return map[string]interface{}{"running": s.running[i], "fps": 25.0, "source_type": "webcam"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"camera_1": pane(0), "camera_2": pane(1)})
	})

	mux.HandleFunc("/live/dual/frame/", func(w http.ResponseWriter, r *http.Request) {
		frame := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("jpeg-%s-%d", r.URL.Path, time.Now().UnixMilli())))
		json.NewEncoder(w).Encode(map[string]string{"frame": frame})
	})

	mux.HandleFunc("/live/dual/control/", func(w http.ResponseWriter, r *http.Request) {
		cam := strings.TrimPrefix(r.URL.Path, "/live/dual/control/")
		var req map[string]bool
		json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		if cam == "1" {
			s.running[0] = req["active"]
		} else {
			s.running[1] = req["active"]
		}
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/alerts/recent", func(w http.ResponseWriter, r *http.Request) {
		alerts := []map[string]interface{}{}
		for i := 0; i < 5; i++ {
			alerts = append(alerts, map[string]interface{}{
				"id":         fmt.Sprintf("A%d", i+1),
				"alert_type": "weapon_detected",
				"confidence": 0.6 + rand.Float64()*0.3,
				"timestamp":  time.Now().Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
				"detection_details": map[string]interface{}{
					"weapons_detected": rand.Intn(3),
				},
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"alerts": alerts})
	})

	mux.HandleFunc("/alerts/verified", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{"data": s.verified})
	})

	mux.HandleFunc("/alerts/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/verify") {
			http.NotFound(w, r)
			return
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/alerts/"), "/verify")
		s.mu.Lock()
		s.verified = append(s.verified, map[string]interface{}{
			"id": id, "verified_by": req["verified_by"], "is_valid": req["is_valid"],
			"verified_at": time.Now().Format(time.RFC3339),
		})
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	log.Println("Mock backend listening on :8000")
	log.Fatal(http.ListenAndServe(":8000", mux))
}
