package convert

import (
	"reflect"
	"strings"
	"testing"

	"github.com/h1n054ur/pdf-docx-convertor/ocr"
)

func TestReconstructGapSegmentation(t *testing.T) {
	// WHAT: Detections at y-tops 10,15,60,65 with gap 20 form two paragraphs.
	// WHY: The vertical-gap rule is the only paragraph boundary signal.
	dets := []ocr.Detection{
		det("d0", 10, 20, 0.9),
		det("d1", 15, 25, 0.9),
		det("d2", 60, 70, 0.9),
		det("d3", 65, 75, 0.9),
	}
	got := ReconstructParagraphs(dets, 1, 0.6, 20)
	want := []string{"d0 d1", "d2 d3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconstructSortsByTopY(t *testing.T) {
	// Arrival order carries no meaning; only geometry does.
	dets := []ocr.Detection{
		det("third", 80, 90, 0.9),
		det("first", 10, 20, 0.9),
		det("second", 12, 22, 0.9),
	}
	got := ReconstructParagraphs(dets, 1, 0.6, 20)
	if len(got) != 1 || got[0] != "first second third" {
		t.Errorf("got %v", got)
	}
}

func TestReconstructDeterminism(t *testing.T) {
	dets := []ocr.Detection{
		det("b", 30, 40, 0.8),
		det("a", 5, 15, 0.7),
		det("c", 90, 100, 0.95),
	}
	first := ReconstructParagraphs(dets, 2, 0.6, 20)
	for i := 0; i < 10; i++ {
		if got := ReconstructParagraphs(dets, 2, 0.6, 20); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: got %v, want %v", i, got, first)
		}
	}
}

func TestReconstructLowConfidenceExcluded(t *testing.T) {
	dets := []ocr.Detection{
		det("keep", 10, 20, 0.6),
		det("noise", 12, 22, 0.59),
		det("keep2", 14, 24, 0.95),
	}
	got := ReconstructParagraphs(dets, 1, 0.6, 20)
	joined := strings.Join(got, " ")
	if strings.Contains(joined, "noise") {
		t.Errorf("low-confidence detection leaked into output: %v", got)
	}
	if !strings.Contains(joined, "keep") || !strings.Contains(joined, "keep2") {
		t.Errorf("surviving detections missing: %v", got)
	}
}

func TestReconstructSentinelOnEmptyPage(t *testing.T) {
	// WHAT: A page with no surviving detections yields exactly one sentinel
	// paragraph naming the 1-based page number.
	// WHY: Pages must never vanish silently from the output.
	got := ReconstructParagraphs(nil, 7, 0.6, 20)
	if len(got) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(got))
	}
	if !strings.Contains(got[0], "page 7") {
		t.Errorf("sentinel does not reference the page: %q", got[0])
	}

	// All detections filtered out behaves the same as none at all.
	noisy := []ocr.Detection{det("x", 10, 20, 0.1)}
	got = ReconstructParagraphs(noisy, 3, 0.6, 20)
	if len(got) != 1 || !strings.Contains(got[0], "page 3") {
		t.Errorf("got %v", got)
	}
}

func TestReconstructBoundaryGap(t *testing.T) {
	// A gap exactly equal to the threshold does not split; it must exceed it.
	dets := []ocr.Detection{
		det("a", 10, 20, 0.9),
		det("b", 40, 50, 0.9), // top 40 - bottom 20 = 20, not > 20
		det("c", 71, 80, 0.9), // top 71 - bottom 50 = 21 > 20
	}
	got := ReconstructParagraphs(dets, 1, 0.6, 20)
	want := []string{"a b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
