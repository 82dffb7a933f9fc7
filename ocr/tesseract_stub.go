//go:build !ocr

package ocr

import (
	"context"
	"errors"
)

// ErrNotEnabled is returned when Tesseract support was not compiled in.
// Rebuild with -tags ocr (Tesseract must be installed on the system).
var ErrNotEnabled = errors.New("tesseract support not enabled; rebuild with -tags ocr")

// Tesseract is the stub used without the "ocr" build tag. All operations
// return ErrNotEnabled.
type Tesseract struct{}

// NewTesseract returns ErrNotEnabled in stub builds.
func NewTesseract(languages ...string) (*Tesseract, error) {
	return nil, ErrNotEnabled
}

// NewTesseractFactory returns a Factory that always fails with ErrNotEnabled.
func NewTesseractFactory(languages ...string) Factory {
	return func() (Engine, error) {
		return nil, ErrNotEnabled
	}
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Close() error { return nil }

func (t *Tesseract) Recognize(ctx context.Context, image []byte, dpi int) ([]Detection, error) {
	return nil, ErrNotEnabled
}
