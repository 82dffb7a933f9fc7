package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/h1n054ur/pdf-docx-convertor/ocr"
)

// fakeEngine returns canned detections keyed by the image payload.
type fakeEngine struct {
	pages  map[string][]ocr.Detection
	err    error
	closed bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEngine) Recognize(_ context.Context, image []byte, _ int) ([]ocr.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[string(image)], nil
}

// fakeRenderer returns canned page images and counts invocations.
type fakeRenderer struct {
	images [][]byte
	err    error
	calls  int
}

func (f *fakeRenderer) RenderPages(_ context.Context, _ string, _ int) ([][]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

func det(text string, top, bottom, confidence float64) ocr.Detection {
	return ocr.Detection{
		Box:        ocr.RectQuad(0, top, 100, bottom),
		Text:       text,
		Confidence: confidence,
	}
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.SizeThresholdKB = 0
	cfg.DocTimeoutSec = 0
	return cfg
}

func escapePDFText(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(text)
}

// writeTestPDF generates a small uncompressed PDF with one text-bearing
// content stream per page, valid enough for pdfcpu to read and optimize.
func writeTestPDF(t *testing.T, path string, pageTexts []string) {
	t.Helper()

	n := len(pageTexts)
	fontObj := 3 + 2*n

	var objs []string
	objs = append(objs, "1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs, fmt.Sprintf(
		"2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>\nendobj\n",
		strings.Join(kids, " "), n))

	for i, text := range pageTexts {
		pageObj := 3 + 2*i
		contObj := 4 + 2*i
		objs = append(objs, fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageObj, fontObj, contObj))
		stream := fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(%s) Tj\nET\n", escapePDFText(text))
		objs = append(objs, fmt.Sprintf(
			"%d 0 obj\n<< /Length %d >>\nstream\n%sendstream\nendobj\n",
			contObj, len(stream), stream))
	}
	objs = append(objs, fmt.Sprintf(
		"%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		buf.WriteString(obj)
	}
	xrefOffset := buf.Len()
	size := len(objs) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xrefOffset)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}
