package config

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigChange carries a freshly reloaded DeviceConfig plus the checksum
// of the version it replaced, so callers can log what actually moved.
type ConfigChange struct {
	Config       DeviceConfig
	PreviousHash string
	Hash         string
}

// HotReloader watches a device config file and reloads it on write,
// skipping no-op reloads (e.g. a touch with unchanged content).
type HotReloader struct {
	path    string
	watcher *fsnotify.Watcher

	mu         sync.Mutex
	isWatching bool
}

// NewHotReloader creates the fsnotify watcher for path. Watch subscribes
// to path's containing directory, so the path itself may not exist yet.
func NewHotReloader(path string) (*HotReloader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	return &HotReloader{path: path, watcher: w}, nil
}

// Watch starts watching in the background and returns channels of
// successfully reloaded configs and of errors encountered along the way.
// Both channels close when ctx is canceled or Stop is called.
func (h *HotReloader) Watch(ctx context.Context) (<-chan ConfigChange, <-chan error) {
	changes := make(chan ConfigChange, 8)
	errs := make(chan error, 8)

	h.mu.Lock()
	if h.isWatching {
		h.mu.Unlock()
		close(changes)
		close(errs)
		return changes, errs
	}
	dir := filepath.Dir(h.path)
	if err := h.watcher.Add(dir); err != nil {
		h.mu.Unlock()
		errs <- fmt.Errorf("watch config dir %s: %w", dir, err)
		close(changes)
		close(errs)
		return changes, errs
	}
	h.isWatching = true
	h.mu.Unlock()

	// Seed with the content on disk now, so the first event is compared
	// against the version it replaces.
	_, lastHash, _ := h.loadAndHash()

	go func() {
		defer close(changes)
		defer close(errs)
		for {
			select {
			case e, ok := <-h.watcher.Events:
				if !ok {
					return
				}
				if e.Name != h.path || e.Op&fsnotify.Write != fsnotify.Write {
					continue
				}
				cfg, hash, err := h.loadAndHash()
				if err != nil {
					errs <- err
					continue
				}
				if hash == lastHash {
					continue
				}
				changes <- ConfigChange{Config: cfg, PreviousHash: lastHash, Hash: hash}
				lastHash = hash
			case err, ok := <-h.watcher.Errors:
				if !ok {
					return
				}
				errs <- err
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes, errs
}

// Stop closes the underlying fsnotify watcher.
func (h *HotReloader) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.isWatching {
		return nil
	}
	h.isWatching = false
	return h.watcher.Close()
}

func (h *HotReloader) loadAndHash() (DeviceConfig, string, error) {
	cfg, err := LoadDeviceConfigFile(h.path)
	if err != nil {
		return DeviceConfig{}, "", err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return DeviceConfig{}, "", fmt.Errorf("hash config: %w", err)
	}
	sum := sha256.Sum256(data)
	return cfg, fmt.Sprintf("%x", sum), nil
}
