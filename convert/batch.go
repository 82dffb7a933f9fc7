package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h1n054ur/pdf-docx-convertor/observability"
	"github.com/h1n054ur/pdf-docx-convertor/ocr"
	"github.com/h1n054ur/pdf-docx-convertor/raster"
)

// Batch fans a directory of PDFs across a bounded worker pool. Each worker
// gets its own pipeline and its own OCR engine from the factory, so no
// engine ever sees concurrent use. Results are collected in completion
// order; only in-document page order is guaranteed.
type Batch struct {
	cfg     *Config
	logger  *slog.Logger
	factory ocr.Factory
	render  raster.Renderer
	events  *observability.Store
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchEvents attaches a conversion event store to every worker pipeline.
func WithBatchEvents(store *observability.Store) BatchOption {
	return func(b *Batch) { b.events = store }
}

// NewBatch creates a batch coordinator.
func NewBatch(cfg *Config, factory ocr.Factory, render raster.Renderer, opts ...BatchOption) *Batch {
	cfg.defaults()
	b := &Batch{
		cfg:     cfg,
		logger:  cfg.Logger,
		factory: factory,
		render:  render,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// OutputPath maps a source filename to its artifact path in outDir.
func OutputPath(outDir, srcName string) string {
	base := strings.TrimSuffix(srcName, filepath.Ext(srcName))
	return filepath.Join(outDir, base+".docx")
}

// Run converts every .pdf in srcDir, writing artifacts to outDir, with at
// most MaxWorkers documents in flight. The output directory is created if it
// does not exist. A fault in one document never aborts
// its siblings: workers that could not produce even a degraded artifact are
// logged and excluded from the returned results.
func (b *Batch) Run(ctx context.Context, srcDir, outDir string) ([]Result, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	sem := make(chan struct{}, b.cfg.MaxWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []Result

	submitted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		submitted++
		src := filepath.Join(srcDir, entry.Name())
		dst := OutputPath(outDir, entry.Name())

		wg.Add(1)
		sem <- struct{}{}
		go func(src, dst string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := b.convertOne(ctx, src, dst)
			if err != nil {
				b.logger.Error("document dropped from batch", "source", src, "error", err)
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(src, dst)
	}
	wg.Wait()

	b.logger.Info("batch complete", "submitted", submitted, "completed", len(results))
	return results, nil
}

// convertOne runs a single document through its own pipeline. Panics are
// contained here and resolved the same way as pipeline faults: a degraded
// artifact is written so the document still yields an output.
func (b *Batch) convertOne(ctx context.Context, src, dst string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic during conversion", "source", src, "panic", r)
			res = Result{Source: src, Artifact: dst}
			err = writeErrorArtifact(dst, src, fmt.Errorf("internal fault: %v", r))
		}
	}()

	engine, engErr := b.factory()
	if engErr != nil {
		// Direct extraction can still succeed; OCR escalation will degrade.
		b.logger.Warn("ocr engine unavailable for worker", "source", src, "error", engErr)
		engine = nil
	}
	if engine != nil {
		defer engine.Close()
	}

	pipe := NewPipeline(b.cfg, engine, b.render, WithEvents(b.events))
	return pipe.Convert(ctx, src, dst)
}

// ConvertFile converts a single named source to an explicit destination,
// outside any batch.
func (b *Batch) ConvertFile(ctx context.Context, src, dst string) (Result, error) {
	return b.convertOne(ctx, src, dst)
}

// Audit runs the quality gate over batch results, creating a fresh engine
// for the sequential corrective pass.
func (b *Batch) Audit(ctx context.Context, results []Result) {
	engine, err := b.factory()
	if err != nil {
		b.logger.Warn("ocr engine unavailable for quality gate", "error", err)
		engine = nil
	} else {
		defer engine.Close()
	}
	gate := NewQualityGate(b.cfg, engine, b.render, WithEvents(b.events))
	gate.Audit(ctx, results)
}
