// Package watcher polls the on-device notebook directory for modified
// scene files and hands idle ones to the file processor, and optionally
// to the cloud handoff queue.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inksight/internal/fileproc"
	"inksight/internal/telemetry/logging"
)

// fileState is one path's idle-detection bookkeeping: Dormant (never
// seen) implicitly has no entry; Changing means its mtime moved more
// recently than idleThreshold ago; Idle means it's ready for processing;
// Dispatched means it has already been queued for cloud handoff this
// idle period.
type fileState struct {
	mtime       time.Time
	lastChange  time.Time
	cloudQueued bool
}

// Watcher polls XochitlDir every PollInterval, processing any .rm file
// that has gone idle for at least IdleThreshold.
type Watcher struct {
	XochitlDir    string
	PollInterval  time.Duration
	IdleThreshold time.Duration

	Processor  *fileproc.Processor
	CloudQueue *HandoffQueue  // nil disables cloud handoff entirely
	Log        logging.Logger // nil silences per-file error reporting

	files map[string]*fileState
}

// NewWatcher builds a Watcher. CloudQueue may be nil to disable cloud
// handoff.
func NewWatcher(xochitlDir string, pollInterval, idleThreshold time.Duration, processor *fileproc.Processor, cloudQueue *HandoffQueue) *Watcher {
	return &Watcher{
		XochitlDir:    xochitlDir,
		PollInterval:  pollInterval,
		IdleThreshold: idleThreshold,
		Processor:     processor,
		CloudQueue:    cloudQueue,
		files:         make(map[string]*fileState),
	}
}

// AdoptState carries prev's per-file idle bookkeeping into this
// watcher, so a config reload doesn't reset every file's last-change
// clock and re-trigger cloud handoff. Call before the first ScanOnce,
// from the same goroutine that drives the scans.
func (w *Watcher) AdoptState(prev *Watcher) {
	if prev == nil {
		return
	}
	w.files = prev.files
}

// ScanOnce walks every notebook subdirectory once, processing any .rm
// file that has been idle for at least IdleThreshold, and returns how
// many files were rewritten this pass (processed files in which at least
// one stroke changed).
func (w *Watcher) ScanOnce(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.XochitlDir)
	if err != nil {
		return 0, fmt.Errorf("read xochitl dir %s: %w", w.XochitlDir, err)
	}

	processed := 0
	now := time.Now()

	for _, notebookDir := range entries {
		if !notebookDir.IsDir() {
			continue
		}
		notebookPath := filepath.Join(w.XochitlDir, notebookDir.Name())
		rmFiles, err := filepath.Glob(filepath.Join(notebookPath, "*.rm"))
		if err != nil {
			continue
		}

		for _, rmPath := range rmFiles {
			info, err := os.Stat(rmPath)
			if err != nil {
				continue
			}
			mtime := info.ModTime()

			state, seen := w.files[rmPath]
			if !seen {
				state = &fileState{}
				w.files[rmPath] = state
			}

			if !state.mtime.Equal(mtime) {
				state.mtime = mtime
				state.lastChange = now
				state.cloudQueued = false
				continue
			}

			if state.lastChange.IsZero() {
				state.lastChange = now
				continue
			}

			idleFor := now.Sub(state.lastChange)
			if idleFor < w.IdleThreshold {
				continue
			}

			if w.Processor.ShouldProcess(rmPath) {
				result, err := w.Processor.ProcessFile(ctx, rmPath)
				switch {
				case err != nil:
					// a single broken file must not abort the cycle.
					if w.Log != nil {
						w.Log.ErrorCtx(ctx, "processing failed", "path", rmPath, "error", err)
					}
				case result.Changed:
					processed++
				}
			}

			if w.CloudQueue != nil && !state.cloudQueued {
				state.cloudQueued = true
				notebookUUID := notebookDir.Name()
				pageUUID := strings.TrimSuffix(filepath.Base(rmPath), ".rm")
				_ = w.CloudQueue.Enqueue(notebookUUID, pageUUID, rmPath, now)
			}
		}
	}

	return processed, nil
}

// Run polls ScanOnce forever until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ScanOnce(ctx); err != nil && w.Log != nil {
				w.Log.ErrorCtx(ctx, "scan cycle failed", "error", err)
			}
		}
	}
}
