// Package fileproc reads a scene file, runs its strokes through the
// processing pipeline, and rewrites the file in place when anything
// actually changed.
package fileproc

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"inksight/internal/pipeline"
	"inksight/internal/sceneio"
	"inksight/pkg/models"
)

// MarkerSuffix is appended to a processed file's path to hold the mtime
// it was last processed at, so a restart of the daemon doesn't reprocess
// every file on disk.
const MarkerSuffix = ".inksight"

const tmpSuffix = ".inksight_tmp"
const bakSuffix = ".inksight_bak"

// Result reports what ProcessFile did to one file.
type Result struct {
	Changed bool
	Stats   models.ProcessingStats
}

// Processor applies a Composer to every eligible line-item block in a
// scene file, tracking per-path mtimes so unchanged files are skipped on
// a later call without re-reading them.
type Processor struct {
	Composer    *pipeline.Composer
	KeepBackups bool

	mu              sync.Mutex
	processedMtimes map[string]time.Time
}

// NewProcessor builds a Processor around the given composer.
func NewProcessor(composer *pipeline.Composer, keepBackups bool) *Processor {
	return &Processor{
		Composer:        composer,
		KeepBackups:     keepBackups,
		processedMtimes: make(map[string]time.Time),
	}
}

// ShouldProcess reports whether path needs processing: it must end in
// the scene extension, have a readable mtime, and that mtime must differ
// from both the in-memory last-processed mtime and the mtime recorded in
// the on-disk marker sidecar.
func (p *Processor) ShouldProcess(path string) bool {
	if !strings.HasSuffix(path, ".rm") {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	mtime := info.ModTime()

	p.mu.Lock()
	last, seen := p.processedMtimes[path]
	p.mu.Unlock()
	if seen && mtime.Equal(last) {
		return false
	}

	marker := path + MarkerSuffix
	if data, err := os.ReadFile(marker); err == nil {
		if markerMtime, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
			if time.Unix(0, markerMtime).Equal(mtime) {
				p.mu.Lock()
				p.processedMtimes[path] = mtime
				p.mu.Unlock()
				return false
			}
		}
	}

	return true
}

// ProcessFile reads path, runs every eligible line-item stroke through
// the composer, and rewrites the file atomically if anything changed.
// It always marks the path as processed on success, whether or not any
// bytes actually moved.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	blocks, err := sceneio.DecodeBlocks(f)
	f.Close()
	if err != nil {
		return Result{}, fmt.Errorf("read blocks from %s: %w", path, err)
	}

	changed, stats := Transform(ctx, p.Composer, blocks)

	if changed {
		if err := p.writeSafely(path, blocks); err != nil {
			return Result{}, fmt.Errorf("write %s: %w", path, err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat %s after processing: %w", path, err)
	}
	p.markProcessed(path, info.ModTime())

	return Result{Changed: changed, Stats: stats}, nil
}

// Transform runs every eligible line-item stroke in blocks through the
// composer, replacing changed strokes in place. It reports whether any
// block actually changed plus the per-stage stroke counts.
func Transform(ctx context.Context, composer *pipeline.Composer, blocks []sceneio.Block) (bool, models.ProcessingStats) {
	var stats models.ProcessingStats
	changed := false

	for i, b := range blocks {
		if !b.IsLineItem() {
			continue
		}
		stroke := b.Stroke
		if stroke.Degenerate() {
			stats.StrokesSkipped++
			continue
		}

		result := composer.RunStroke(ctx, stroke.ToolID, stroke.Points)
		if result.Skipped {
			stats.StrokesSkipped++
			continue
		}

		stats.StrokesProcessed++
		if result.Smoothed {
			stats.StrokesSmoothed++
		}
		if result.Simplified {
			stats.StrokesSimplified++
		}
		if result.Straightened {
			stats.StrokesStraightened++
		}
		if result.Normalized {
			stats.StrokesNormalized++
		}

		if !pointsEqual(stroke.Points, result.Points) {
			blocks[i].Stroke = &models.Stroke{ToolID: stroke.ToolID, Color: stroke.Color, Points: result.Points}
			changed = true
		} else {
			stats.StrokesSkipped++
		}
	}

	return changed, stats
}

func (p *Processor) writeSafely(path string, blocks []sceneio.Block) error {
	tmpPath := path + tmpSuffix
	bakPath := path + bakSuffix

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := sceneio.EncodeBlocks(tmp, blocks); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode blocks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := copyFile(path, bakPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("backup original: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp over original: %w", err)
	}

	if !p.KeepBackups {
		os.Remove(bakPath)
	}
	return nil
}

func (p *Processor) markProcessed(path string, mtime time.Time) {
	p.mu.Lock()
	p.processedMtimes[path] = mtime
	p.mu.Unlock()

	marker := path + MarkerSuffix
	content := strconv.FormatInt(mtime.UnixNano(), 10)
	_ = os.WriteFile(marker, []byte(content), 0o644)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func pointsEqual(a, b []models.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
