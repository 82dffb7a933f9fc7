package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/h1n054ur/pdf-docx-convertor/ocr"
)

// ReconstructParagraphs turns a page's unordered OCR detections into
// reading-order paragraph texts. Detections below confidenceFloor are
// dropped; the survivors are sorted by the top edge of their bounding
// quadrilateral and grouped into paragraphs wherever the vertical gap to
// the previous detection's bottom edge exceeds gapThreshold.
//
// Vertical position is the only ordering signal available, so the result
// assumes a single-column layout; multi-column pages come out interleaved.
// This is a documented heuristic limitation, not a defect to paper over.
//
// pageNum is 1-based and only used for the sentinel paragraph emitted when
// no detection survives the confidence filter: a page never disappears
// silently from the output.
func ReconstructParagraphs(dets []ocr.Detection, pageNum int, confidenceFloor, gapThreshold float64) []string {
	kept := make([]ocr.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Confidence >= confidenceFloor {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return []string{fmt.Sprintf("[OCR could not extract text from page %d]", pageNum)}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Box.Top() < kept[j].Box.Top()
	})

	var paragraphs []string
	var current []string
	var lastBottom float64
	haveLast := false

	for _, d := range kept {
		if haveLast && d.Box.Top()-lastBottom > gapThreshold {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
		current = append(current, d.Text)
		lastBottom = d.Box.Bottom()
		haveLast = true
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return paragraphs
}
