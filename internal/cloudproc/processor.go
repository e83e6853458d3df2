// Package cloudproc runs one uploaded transform job end to end: read
// the stored input, run every stroke through the preset's pipeline, and
// persist the result as the job's output artifact.
package cloudproc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"inksight/internal/fileproc"
	"inksight/internal/pipeline"
	"inksight/internal/sceneio"
	"inksight/internal/storage"
	"inksight/internal/telemetry/metrics"
	"inksight/internal/telemetry/tracing"
	"inksight/pkg/models"
)

// SkipTools are the tool ids excluded from cloud processing
// (highlighter, eraser).
var SkipTools = []uint32{6, 8}

// Processor is the job queue's worker: it owns no job state, it just
// turns an input artifact into an output artifact and fills in the
// job's stats.
type Processor struct {
	Store   *storage.Store
	Tracer  tracing.Tracer
	Metrics *metrics.AppMetrics
}

// NewProcessor builds a Processor. A nil tracer falls back to noop.
func NewProcessor(store *storage.Store, tracer tracing.Tracer, m *metrics.AppMetrics) *Processor {
	if tracer == nil {
		tracer = tracing.NewTracer(false)
	}
	return &Processor{Store: store, Tracer: tracer, Metrics: m}
}

// Process transforms job's input file and saves the output under the
// job's tenant. On success it sets OutputPath and Stats on job; on
// failure the returned error becomes the job's failure reason.
func (p *Processor) Process(ctx context.Context, job *models.JobRecord) error {
	start := time.Now()

	data, err := os.ReadFile(job.InputPath)
	if err != nil {
		p.countFile("error")
		return models.NewError(models.KindIORead, fmt.Sprintf("read input for job %s", job.JobID), err)
	}

	blocks, err := sceneio.DecodeBlocks(bytes.NewReader(data))
	if err != nil {
		p.countFile("error")
		return models.NewError(models.KindCodecRead, "decode scene file", err)
	}

	composer := pipeline.NewComposer(
		models.PresetByName(job.Preset),
		pipeline.ToolFilter{Skip: SkipTools},
		p.Tracer,
	)
	changed, stats := fileproc.Transform(ctx, composer, blocks)

	var out bytes.Buffer
	if err := sceneio.EncodeBlocks(&out, blocks); err != nil {
		p.countFile("error")
		return models.NewError(models.KindCodecWrite, "encode scene file", err)
	}

	outputPath, err := p.Store.SaveOutput(job.TenantID, job.JobID, job.InputFilename, &out)
	if err != nil {
		p.countFile("error")
		return models.NewError(models.KindIOWrite, "save output artifact", err)
	}

	elapsed := time.Since(start).Milliseconds()
	stats.ProcessingTimeMS = &elapsed
	job.OutputPath = outputPath
	job.Stats = &stats

	if changed {
		p.countFile("changed")
	} else {
		p.countFile("unchanged")
	}
	if p.Metrics != nil {
		p.Metrics.RecordStats(stats.StrokesProcessed, stats.StrokesSmoothed, stats.StrokesSimplified,
			stats.StrokesStraightened, stats.StrokesNormalized, stats.StrokesSkipped)
	}
	return nil
}

func (p *Processor) countFile(result string) {
	if p.Metrics != nil {
		p.Metrics.FilesProcessed.Inc(1, result)
	}
}
