package config

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the settings baseline when the config file changes, so an
// operator edit on disk takes effect on the next settings push without a
// restart. Only the baseline is hot-swapped; addresses and intervals stay
// fixed for the process lifetime.
type Watcher struct {
	path string

	mu       sync.RWMutex
	baseline SettingsBaseline
}

func NewWatcher(path string, initial SettingsBaseline) *Watcher {
	return &Watcher{path: path, baseline: initial}
}

// Baseline returns the current settings baseline.
func (w *Watcher) Baseline() SettingsBaseline {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.baseline
}

// Start watches the config file until ctx is cancelled. A failed watcher
// setup is logged and the initial baseline stays in effect.
func (w *Watcher) Start(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[ERROR] Config Watcher: fsnotify init failed: %v", err)
		return
	}
	if err := watcher.Add(w.path); err != nil {
		log.Printf("[ERROR] Config Watcher: cannot watch %s: %v", w.path, err)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					// Editors often write in two events; let the file settle.
					time.Sleep(100 * time.Millisecond)
					w.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[ERROR] Config Watcher: %v", err)
			}
		}
	}()
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.Printf("[ERROR] Config Watcher: reload failed, keeping previous baseline: %v", err)
		return
	}
	w.mu.Lock()
	w.baseline = cfg.Settings
	w.mu.Unlock()
	log.Printf("Config Watcher: settings baseline reloaded from %s", w.path)
}
