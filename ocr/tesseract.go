//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is an Engine backed by the Tesseract library via gosseract.
// Requires Tesseract to be installed (apt-get install tesseract-ocr) and the
// "ocr" build tag. A Tesseract instance is not safe for concurrent use; create
// one per worker via NewTesseractFactory.
type Tesseract struct {
	client    *gosseract.Client
	languages []string
}

// NewTesseract creates a Tesseract engine recognizing the given languages
// (e.g. "eng", "deu"). Empty means gosseract's default ("eng").
func NewTesseract(languages ...string) (*Tesseract, error) {
	c := gosseract.NewClient()
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			c.Close()
			return nil, fmt.Errorf("set languages %v: %w", languages, err)
		}
	}
	return &Tesseract{client: c, languages: languages}, nil
}

// NewTesseractFactory returns a Factory producing per-worker Tesseract engines.
func NewTesseractFactory(languages ...string) Factory {
	return func() (Engine, error) {
		return NewTesseract(languages...)
	}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Close releases the underlying Tesseract handle.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Recognize runs Tesseract on an encoded image and returns line-level
// detections. Confidence is scaled from Tesseract's 0-100 range to [0,1].
func (t *Tesseract) Recognize(ctx context.Context, image []byte, dpi int) ([]Detection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if err := t.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if dpi > 0 {
		if err := t.client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(dpi)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}
	dets := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		dets = append(dets, Detection{
			Box: RectQuad(
				float64(b.Box.Min.X), float64(b.Box.Min.Y),
				float64(b.Box.Max.X), float64(b.Box.Max.Y),
			),
			Text:       text,
			Confidence: b.Confidence / 100.0,
		})
	}
	return dets, nil
}
