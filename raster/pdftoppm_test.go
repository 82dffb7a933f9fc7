package raster

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderPagesMissingBinary(t *testing.T) {
	// WHAT: A missing rasterizer binary surfaces as an error, not a panic.
	// WHY: OCR escalation must degrade cleanly on hosts without poppler-utils.
	r := &Pdftoppm{Binary: "pdftoppm-does-not-exist"}
	_, err := r.RenderPages(context.Background(), "nope.pdf", 150)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRenderPagesOrdering(t *testing.T) {
	// Uses a fake binary (shell script) that emits pages out of order with
	// mixed padding, to check numeric sorting of the output files.
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-pdftoppm")
	// Last argument is the output prefix.
	content := `#!/bin/sh
prefix=$(eval echo \$$#)
printf 'two' > "$prefix-2.png"
printf 'ten' > "$prefix-10.png"
printf 'one' > "$prefix-1.png"
`
	if err := os.WriteFile(script, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}

	r := &Pdftoppm{Binary: script}
	images, err := r.RenderPages(context.Background(), "ignored.pdf", 150)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 3 {
		t.Fatalf("got %d pages, want 3", len(images))
	}
	want := []string{"one", "two", "ten"}
	for i, w := range want {
		if string(images[i]) != w {
			t.Errorf("page %d = %q, want %q", i+1, images[i], w)
		}
	}
}
