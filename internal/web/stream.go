package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/technosupport/cctv-console/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for dev; restrict in prod
	},
}

type frameMessage struct {
	Frame string `json:"frame"`
}

// serveFrames upgrades to a websocket and pushes the feed's latest frame
// at the given cadence. Frames are already base64 jpeg strings; identical
// consecutive frames are skipped to save bandwidth. An empty frame still
// goes through once so the viewer's image clears when the feed goes dark.
func serveFrames(w http.ResponseWriter, r *http.Request, feed string, interval time.Duration, frame func() string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS Upgrade Failed: %v", err)
		return
	}
	defer conn.Close()

	metrics.StreamViewers.WithLabelValues(feed).Inc()
	defer metrics.StreamViewers.WithLabelValues(feed).Dec()

	// Read loop only exists to detect the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			f := frame()
			if f == last {
				continue
			}
			last = f
			if err := conn.WriteJSON(frameMessage{Frame: f}); err != nil {
				log.Printf("WS Write Error (%s): %v", feed, err)
				return
			}
		}
	}
}
