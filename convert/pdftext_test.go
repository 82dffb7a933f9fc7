package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractLinear(t *testing.T) {
	data := []byte("BT\n/F1 12 Tf\n72 720 Td\n(Hello) Tj\n(world) Tj\nET\n")
	got := extractLinear(data)
	if got != "Hello world" {
		t.Errorf("got %q, want %q", got, "Hello world")
	}
}

func TestExtractLinearEscapes(t *testing.T) {
	data := []byte(`(paren \( inside \)) Tj` + "\n" + `(octal\040space) Tj` + "\n")
	got := extractLinear(data)
	if !strings.Contains(got, "paren ( inside )") {
		t.Errorf("escape decoding failed: %q", got)
	}
	if !strings.Contains(got, "octal space") {
		t.Errorf("octal decoding failed: %q", got)
	}
}

func TestExtractBlocks(t *testing.T) {
	data := []byte("BT\n(first block) Tj\nET\nq Q\nBT\n(second block) Tj\nET\n")
	got := extractBlocks(data)
	want := "first block\n\nsecond block"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractStructured(t *testing.T) {
	// Two lines in one text object, separated by a positioning op.
	data := []byte("BT\n72 720 Td\n(line one) Tj\n0 -14 Td\n(line two) Tj\nET\n")
	got := extractStructured(data)
	if !strings.Contains(got, "line one\nline two") {
		t.Errorf("got %q", got)
	}
}

func TestExtractStructuredTJArray(t *testing.T) {
	data := []byte("BT\n[(spa) -20 (ns)] TJ\nET\n")
	got := extractStructured(data)
	if !strings.Contains(got, "spa") || !strings.Contains(got, "ns") {
		t.Errorf("TJ array content missing: %q", got)
	}
}

func TestNonTrivial(t *testing.T) {
	if nonTrivial("   ", 10) {
		t.Error("whitespace must be trivial")
	}
	if nonTrivial("short", 50) {
		t.Error("below the char floor must be trivial")
	}
	if !nonTrivial(strings.Repeat("x", 50), 50) {
		t.Error("at the char floor must be non-trivial")
	}
}

func TestOpenPDFCorrupt(t *testing.T) {
	// WHAT: Garbage bytes surface as ErrCorruptDocument.
	// WHY: The pipeline branches on this sentinel to escalate to OCR.
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.pdf")
	writeFile(t, path, "this is not a pdf at all")

	_, err := openPDF(path)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("got %v, want ErrCorruptDocument", err)
	}
}

func TestPageTextFromGeneratedPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	writeTestPDF(t, path, []string{
		"The quick brown fox jumps over the lazy dog near the river bank.",
		"A second page with a different but equally plain sentence on it.",
	})

	pdf, err := openPDF(path)
	if err != nil {
		t.Fatal(err)
	}
	if pdf.PageCount() != 2 {
		t.Fatalf("page count = %d, want 2", pdf.PageCount())
	}
	text := pdf.PageText(1, 50)
	if !strings.Contains(text, "quick brown fox") {
		t.Errorf("page 1 text = %q", text)
	}
	text = pdf.PageText(2, 50)
	if !strings.Contains(text, "second page") {
		t.Errorf("page 2 text = %q", text)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
