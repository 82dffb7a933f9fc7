package convert

import (
	"context"
	"log/slog"
	"os"

	"github.com/h1n054ur/pdf-docx-convertor/docxio"
	"github.com/h1n054ur/pdf-docx-convertor/observability"
	"github.com/h1n054ur/pdf-docx-convertor/ocr"
	"github.com/h1n054ur/pdf-docx-convertor/raster"
)

// QualityGate audits finished artifacts after the whole batch completes. It
// is a second, coarser safety net: the pipeline's own strict check inspects
// the pre-overwrite state, so an under-performing OCR pass or a degenerate
// tiny artifact only shows up here. Flagged documents get exactly one
// corrective OCR pass against the original source; a single-pass audit,
// never a convergence loop.
type QualityGate struct {
	pipe   *Pipeline
	cfg    *Config
	logger *slog.Logger
}

// NewQualityGate builds a gate with its own pipeline for reprocessing. The
// gate runs sequentially, so one engine suffices.
func NewQualityGate(cfg *Config, engine ocr.Engine, renderer raster.Renderer, opts ...PipelineOption) *QualityGate {
	pipe := NewPipeline(cfg, engine, renderer, opts...)
	return &QualityGate{pipe: pipe, cfg: pipe.cfg, logger: pipe.logger}
}

// Audit re-scores each artifact by byte size and content, and overwrites the
// ones that fail with a fresh OCR pass. Artifacts that pass are left
// byte-for-byte untouched.
func (g *QualityGate) Audit(ctx context.Context, results []Result) {
	for _, res := range results {
		if err := ctx.Err(); err != nil {
			g.logger.Warn("quality gate interrupted", "error", err)
			return
		}
		if !g.flag(res) {
			continue
		}

		g.logger.Info("reprocessing with OCR", "source", res.Source, "artifact", res.Artifact)
		if err := g.pipe.ConvertOCR(ctx, res.Source, res.Artifact); err != nil {
			// The prior artifact stays in place; it was at least produced.
			g.logger.Error("quality gate reprocessing failed", "source", res.Source, "error", err)
			g.pipe.logEvent(ctx, res, observability.OutcomeFailed, "quality gate: "+err.Error())
			continue
		}
		g.logger.Info("reprocessed and saved", "artifact", res.Artifact)
		g.pipe.logEvent(ctx, res, observability.OutcomeReprocessed, "")
	}
}

// flag decides whether an artifact needs reprocessing: first by byte size (a
// proxy for suspiciously little written content), then by re-reading the
// text and scoring it at the loose ratio.
func (g *QualityGate) flag(res Result) bool {
	info, err := os.Stat(res.Artifact)
	if err != nil {
		g.logger.Warn("artifact unreadable", "artifact", res.Artifact, "error", err)
		return true
	}
	if info.Size() < g.cfg.SizeThresholdBytes() {
		g.logger.Warn("artifact below size threshold",
			"artifact", res.Artifact, "size", info.Size(), "threshold", g.cfg.SizeThresholdBytes())
		return true
	}

	text, err := docxio.ReadText(res.Artifact)
	if err != nil {
		g.logger.Warn("artifact unparseable", "artifact", res.Artifact, "error", err)
		return true
	}
	if !IsValidContent(text, g.cfg.PageValidRatio) {
		g.logger.Warn("artifact contains mainly blank content", "artifact", res.Artifact)
		return true
	}
	return false
}
