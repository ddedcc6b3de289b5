package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/technosupport/cctv-console/internal/config"
	"github.com/technosupport/cctv-console/internal/console"
	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/session"
	"github.com/technosupport/cctv-console/internal/web"
)

func main() {
	// 1. Env + Config
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONSOLE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/default.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	log.Printf("Backend: %s", cfg.Backend.BaseURL)
	log.Printf("Listen: %s", cfg.HTTP.ListenAddr)

	// 2. Redis + Session Store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("Redis ping error: %v", err)
	}
	cancel()
	sessions := session.NewStore(rdb)

	// 3. Gateway + Components
	gw := gateway.NewClient(cfg.Backend.BaseURL, sessions)
	notifier := console.NewNotifier()

	intervals := console.Intervals{
		Stats:  cfg.StatsInterval(),
		Frame:  cfg.FrameInterval(),
		Alerts: cfg.AlertsInterval(),
	}

	dash := console.NewDashboard(gw, notifier, intervals)
	dual := console.NewDualDashboard(gw, console.SharedPoolAlertSource{GW: gw}, intervals)
	alerts := &console.AlertActions{GW: gw, Sessions: sessions, Notifier: notifier}

	// Settings baseline hot-reloads from the config file.
	watcher := config.NewWatcher(cfgPath, cfg.Settings)
	watcherCtx, stopWatcher := context.WithCancel(context.Background())
	watcher.Start(watcherCtx)
	settings := console.NewSettingsPanel(gw, notifier, watcher)

	// 4. Pollers
	dash.Start()
	dual.Start()

	// 5. HTTP Server
	srv := &web.Server{
		Sessions:      sessions,
		GW:            gw,
		Dash:          dash,
		Dual:          dual,
		Alerts:        alerts,
		Settings:      settings,
		Notifier:      notifier,
		FrameInterval: cfg.FrameInterval(),
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket streams stay open
	}

	go func() {
		log.Printf("Console listening on %s", cfg.HTTP.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// 6. Shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done
	log.Println("Shutting down...")

	dash.Stop()
	dual.Stop()
	stopWatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Stopped")
}
