package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrCorruptDocument marks a whole-document fault at the rendering layer.
// It is a quality-escalation trigger, not a batch-fatal error: the pipeline
// responds by switching the entire document to the OCR path.
var ErrCorruptDocument = errors.New("corrupt document")

// pdfDocument wraps an opened pdfcpu context for per-page text extraction.
type pdfDocument struct {
	ctx *model.Context
}

// openPDF reads and validates a PDF. Any failure to parse the document is
// reported as ErrCorruptDocument so the caller can escalate to OCR rather
// than abort.
func openPDF(path string) (*pdfDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, path, err)
	}
	return &pdfDocument{ctx: ctx}, nil
}

func (d *pdfDocument) PageCount() int { return d.ctx.PageCount }

// PageText extracts the text of one page, escalating through three
// strategies until one yields a non-trivial result: a linear scrape, text
// objects joined block-wise, and a structured block/line/span walk. If all
// three come back trivial the structured result is returned as-is; scoring
// the outcome is the caller's job, not an error.
func (d *pdfDocument) PageText(pageNr, minChars int) string {
	data := d.pageContent(pageNr)
	if len(data) == 0 {
		return ""
	}

	if text := extractLinear(data); nonTrivial(text, minChars) {
		return text
	}
	if text := extractBlocks(data); nonTrivial(text, minChars) {
		return text
	}
	return extractStructured(data)
}

func (d *pdfDocument) pageContent(pageNr int) []byte {
	r, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
	if err != nil || r == nil {
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	return data
}

func nonTrivial(text string, minChars int) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && len([]rune(trimmed)) >= minChars
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// extractLinear scrapes every text-showing operator (Tj, TJ, ') in stream
// order. Fastest strategy; loses all layout.
func extractLinear(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !isTextShowingOp(line) {
			continue
		}
		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			if text := decodePDFString(m[1]); text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		}
	}
	return normalizeSpace(sb.String())
}

// extractBlocks scrapes each BT…ET text object separately and joins the
// results with blank lines, preserving the engine's block emission order.
func extractBlocks(data []byte) string {
	var blocks []string
	var current bytes.Buffer
	inObject := false

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		trimmed := bytes.TrimSpace(line)
		switch {
		case bytes.Equal(trimmed, []byte("BT")):
			inObject = true
			current.Reset()
		case bytes.Equal(trimmed, []byte("ET")):
			if inObject {
				if text := extractLinear(current.Bytes()); text != "" {
					blocks = append(blocks, text)
				}
			}
			inObject = false
		case inObject:
			current.Write(line)
			current.WriteByte('\n')
		}
	}
	return strings.Join(blocks, "\n\n")
}

// extractStructured walks the content stream tracking text objects, line
// positioning, and individual show operations, building a block → line →
// span structure. Spans within a line are joined with single spaces, lines
// with newlines, blocks with blank lines. Recovers text the simpler passes
// miss, e.g. heavily positioned or rotated runs.
func extractStructured(data []byte) string {
	var blocks [][]string // each block is a list of lines
	var lines []string
	var spans []string

	flushLine := func() {
		if len(spans) > 0 {
			lines = append(lines, strings.Join(spans, " "))
			spans = nil
		}
	}
	flushBlock := func() {
		flushLine()
		if len(lines) > 0 {
			blocks = append(blocks, lines)
			lines = nil
		}
	}

	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.Equal(line, []byte("BT")):
			flushBlock()
		case bytes.Equal(line, []byte("ET")):
			flushBlock()
		case bytes.Equal(line, []byte("T*")),
			bytes.HasSuffix(line, []byte("Td")),
			bytes.HasSuffix(line, []byte("TD")),
			bytes.HasSuffix(line, []byte("Tm")):
			flushLine()
			// A positioning op may carry a show op on the same line.
			fallthrough
		default:
			if !isTextShowingOp(line) {
				continue
			}
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := strings.TrimSpace(decodePDFString(m[1])); text != "" {
					spans = append(spans, text)
				}
			}
		}
	}
	flushBlock()

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, strings.Join(block, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func isTextShowingOp(line []byte) bool {
	return bytes.HasSuffix(line, []byte("Tj")) ||
		bytes.HasSuffix(line, []byte("TJ")) ||
		(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
}

// decodePDFString handles basic PDF escape sequences, including octal.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for d := 0; d < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; d++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// normalizeSpace collapses whitespace runs and drops non-printable runes.
func normalizeSpace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
