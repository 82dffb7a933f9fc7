// Package raster defines the boundary to the page rasterizer: a source PDF
// and a resolution go in, one encoded image per page comes out, in page order.
package raster

import "context"

// Renderer rasterizes a source document into per-page PNG images.
type Renderer interface {
	RenderPages(ctx context.Context, src string, dpi int) ([][]byte, error)
}
