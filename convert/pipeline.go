package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/h1n054ur/pdf-docx-convertor/docxio"
	"github.com/h1n054ur/pdf-docx-convertor/observability"
	"github.com/h1n054ur/pdf-docx-convertor/ocr"
	"github.com/h1n054ur/pdf-docx-convertor/raster"
)

// Result pairs a converted source with its output artifact. Quality state is
// never materialized here; the quality gate re-derives it from the artifact.
type Result struct {
	Source   string `json:"source"`
	Artifact string `json:"artifact"`
}

// Pipeline converts a single document: direct extraction first, scored
// against the strict validity ratio, with OCR as the authoritative last
// resort. A Pipeline processes one document at a time; give each batch
// worker its own (the OCR engine need not be thread-safe).
type Pipeline struct {
	cfg      *Config
	logger   *slog.Logger
	engine   ocr.Engine
	renderer raster.Renderer
	events   *observability.Store
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithEvents attaches a conversion event store. Nil is permitted and
// disables event recording.
func WithEvents(store *observability.Store) PipelineOption {
	return func(p *Pipeline) { p.events = store }
}

// NewPipeline creates a pipeline around an OCR engine and a page renderer.
func NewPipeline(cfg *Config, engine ocr.Engine, renderer raster.Renderer, opts ...PipelineOption) *Pipeline {
	cfg.defaults()
	p := &Pipeline{
		cfg:      cfg,
		logger:   cfg.Logger,
		engine:   engine,
		renderer: renderer,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// directOutcome carries the direct-extraction attempt as an explicit value:
// either an assembled document or a whole-document fault. Branching on this
// instead of thrown errors keeps the two escalation triggers (corrupt
// document, low quality score) visible in one place.
type directOutcome struct {
	doc   *docxio.Document
	fault error
}

// Convert runs the full state machine for one document and writes the
// artifact at dst. Every invocation yields exactly one artifact: on an
// unrecoverable OCR fault a degraded artifact containing the error text is
// substituted. The returned error is non-nil only when even that could not
// be written, the sole case where no artifact exists.
func (p *Pipeline) Convert(ctx context.Context, src, dst string) (Result, error) {
	if timeout := p.cfg.DocTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res := Result{Source: src, Artifact: dst}

	outcome := p.extractDirect(ctx, src)
	if outcome.fault == nil {
		if err := docxio.Write(dst, outcome.doc); err != nil {
			return res, p.degrade(ctx, res, fmt.Errorf("persist artifact: %w", err))
		}
		// Re-open the artifact and score what was actually written, not
		// the in-memory text.
		text, err := docxio.ReadText(dst)
		if err == nil && IsValidContent(text, p.cfg.DocValidRatio) {
			p.logger.Info("direct extraction accepted", "source", src, "artifact", dst)
			p.logEvent(ctx, res, observability.OutcomeDirect, "")
			return res, nil
		}
		p.logger.Warn("direct extraction below document threshold, escalating to OCR",
			"source", src, "min_ratio", p.cfg.DocValidRatio)
	} else {
		p.logger.Warn("rendering fault, escalating to OCR", "source", src, "error", outcome.fault)
	}

	if err := p.ConvertOCR(ctx, src, dst); err != nil {
		return res, p.degrade(ctx, res, err)
	}
	p.logger.Info("ocr conversion complete", "source", src, "artifact", dst)
	p.logEvent(ctx, res, observability.OutcomeOCR, "")
	return res, nil
}

// extractDirect runs the three-strategy text extractor across all pages and
// assembles one paragraph per page.
func (p *Pipeline) extractDirect(ctx context.Context, src string) directOutcome {
	pdf, err := openPDF(src)
	if err != nil {
		return directOutcome{fault: err}
	}

	total := pdf.PageCount()
	doc := &docxio.Document{}
	for pageNr := 1; pageNr <= total; pageNr++ {
		if err := ctx.Err(); err != nil {
			return directOutcome{fault: err}
		}
		p.logger.Info("extracting page", "source", src, "page", pageNr, "of", total)
		text := pdf.PageText(pageNr, p.cfg.MinChars)
		if !IsValidContent(text, p.cfg.PageValidRatio) {
			p.logger.Warn("weak extraction for page", "source", src, "page", pageNr)
		}
		doc.AddPage(text)
	}
	return directOutcome{doc: doc}
}

// ConvertOCR runs the OCR branch for a whole document and overwrites dst in
// place. Also invoked directly by the quality gate for reprocessing. OCR
// output is authoritative: no further scoring happens after it.
func (p *Pipeline) ConvertOCR(ctx context.Context, src, dst string) error {
	p.logger.Info("processing with OCR", "source", src, "dpi", p.cfg.OCRDPI)
	if p.engine == nil {
		return fmt.Errorf("ocr engine unavailable")
	}

	images, err := p.renderer.RenderPages(ctx, src, p.cfg.OCRDPI)
	if err != nil {
		return fmt.Errorf("rasterize %s: %w", src, err)
	}

	doc := &docxio.Document{}
	for i, img := range images {
		dets, err := p.engine.Recognize(ctx, img, p.cfg.OCRDPI)
		if err != nil {
			return fmt.Errorf("ocr page %d of %s: %w", i+1, src, err)
		}
		paragraphs := ReconstructParagraphs(dets, i+1, p.cfg.ConfidenceFloor, p.cfg.ParagraphGap)
		doc.AddPage(paragraphs...)
		p.logger.Info("ocr page done", "source", src, "page", i+1, "of", len(images),
			"detections", len(dets), "paragraphs", len(paragraphs))
	}

	if err := docxio.Write(dst, doc); err != nil {
		return fmt.Errorf("persist ocr artifact: %w", err)
	}
	return nil
}

// degrade substitutes an artifact whose sole content is a human-readable
// error paragraph, keeping the one-input-one-artifact contract intact.
func (p *Pipeline) degrade(ctx context.Context, res Result, cause error) error {
	p.logger.Error("conversion degraded", "source", res.Source, "error", cause)
	if err := writeErrorArtifact(res.Artifact, res.Source, cause); err != nil {
		p.logEvent(ctx, res, observability.OutcomeFailed, cause.Error())
		return fmt.Errorf("write degraded artifact for %s: %w", res.Source, err)
	}
	p.logEvent(ctx, res, observability.OutcomeDegraded, cause.Error())
	return nil
}

// writeErrorArtifact persists a single-paragraph document describing the
// failure.
func writeErrorArtifact(dst, src string, cause error) error {
	doc := &docxio.Document{}
	doc.AddPage(fmt.Sprintf("Conversion of %s failed: %v", src, cause))
	return docxio.Write(dst, doc)
}

func (p *Pipeline) logEvent(ctx context.Context, res Result, outcome observability.Outcome, detail string) {
	if p.events == nil {
		return
	}
	// A document timeout must not suppress its own event record.
	p.events.LogConversion(context.WithoutCancel(ctx), observability.Event{
		Source:   res.Source,
		Artifact: res.Artifact,
		Outcome:  outcome,
		Detail:   detail,
	})
}
