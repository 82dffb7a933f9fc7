// Package docxio reads and writes the minimal subset of the OOXML word
// processing format this converter needs: plain paragraphs and explicit page
// breaks. A .docx file is a ZIP archive whose text lives in
// word/document.xml; both directions go through archive/zip and encoding/xml
// directly, no styling, tables, or images.
package docxio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is an ordered sequence of pages, each an ordered sequence of
// paragraph texts. On disk, consecutive pages are separated by a dedicated
// page-break paragraph, so an N-page document carries N-1 breaks.
type Document struct {
	Pages [][]string
}

// AddPage appends a page with the given paragraphs.
func (d *Document) AddPage(paragraphs ...string) {
	d.Pages = append(d.Pages, paragraphs)
}

// Paragraphs returns every paragraph text in reading order, across pages.
func (d *Document) Paragraphs() []string {
	var out []string
	for _, page := range d.Pages {
		out = append(out, page...)
	}
	return out
}

// Text returns all paragraph texts joined with single spaces, the form the
// quality checks score.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs(), " ")
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Write persists the document as a .docx archive at path, replacing any
// existing file.
func Write(path string, doc *Document) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(doc)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func documentXML(doc *Document) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for i, page := range doc.Pages {
		if i > 0 {
			sb.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
		for _, text := range page {
			sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
			xml.EscapeText(&sb, []byte(text))
			sb.WriteString(`</w:t></w:r></w:p>`)
		}
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

// Read parses a .docx archive back into pages of paragraph texts. Page
// boundaries are recovered from page-break runs, so the page count is always
// one more than the break count.
func Read(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	doc := &Document{}
	var page []string
	var currentText strings.Builder
	var inParagraph bool
	var pageBreak bool

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				pageBreak = false
				currentText.Reset()
			case "br":
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && attr.Value == "page" {
						pageBreak = true
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				if pageBreak {
					doc.Pages = append(doc.Pages, page)
					page = nil
					continue
				}
				if text := currentText.String(); strings.TrimSpace(text) != "" {
					page = append(page, text)
				}
			}
		}
	}

	doc.Pages = append(doc.Pages, page)
	return doc, nil
}

// ReadText returns all paragraph texts of the archive joined with single
// spaces. Used by the quality checks to re-score an already-written artifact.
func ReadText(path string) (string, error) {
	doc, err := Read(path)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}
