// Package ocr defines the boundary to the OCR engine: a rasterized page image
// goes in, a set of positioned text detections comes out. The interface is
// deliberately small so engines can be backed by a native library (Tesseract
// via gosseract), a remote service, or a fake in tests.
package ocr

import "context"

// Point is a 2-D coordinate in image pixel space, origin in the upper-left
// corner of the page image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad is the bounding quadrilateral of a detection, corners ordered
// top-left, top-right, bottom-right, bottom-left. Reading-order
// reconstruction uses only its vertical extent.
type Quad [4]Point

// Top returns the smallest Y coordinate of the quadrilateral.
func (q Quad) Top() float64 {
	top := q[0].Y
	for _, p := range q[1:] {
		if p.Y < top {
			top = p.Y
		}
	}
	return top
}

// Bottom returns the largest Y coordinate of the quadrilateral.
func (q Quad) Bottom() float64 {
	bottom := q[0].Y
	for _, p := range q[1:] {
		if p.Y > bottom {
			bottom = p.Y
		}
	}
	return bottom
}

// RectQuad builds an axis-aligned Quad from pixel bounds.
func RectQuad(x0, y0, x1, y1 float64) Quad {
	return Quad{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// Detection is one engine output unit: a located quadrilateral, the
// recognized text, and a confidence score in [0,1]. Detections carry no
// horizontal ordering information; callers must not assume any order.
type Detection struct {
	Box        Quad    `json:"box"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Engine recognizes text in an encoded page image (PNG, JPEG, TIFF).
// The dpi hint carries the rasterization resolution; zero means unknown.
// Implementations are not required to be safe for concurrent use; give
// each worker its own Engine.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, dpi int) ([]Detection, error)
	Close() error
}

// Factory creates a fresh Engine. The batch coordinator calls it once per
// worker so a stateful engine never needs internal locking.
type Factory func() (Engine, error)
