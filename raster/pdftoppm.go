package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Pdftoppm renders PDF pages to PNG by shelling out to the poppler-utils
// pdftoppm binary. Each call uses its own temp directory, so a single
// Pdftoppm value is safe for concurrent use.
type Pdftoppm struct {
	// Binary overrides the executable name. Default: "pdftoppm".
	Binary string
}

func (p *Pdftoppm) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "pdftoppm"
}

// RenderPages rasterizes every page of src at the given DPI and returns the
// encoded PNGs in page order.
func (p *Pdftoppm) RenderPages(ctx context.Context, src string, dpi int) ([][]byte, error) {
	workDir, err := os.MkdirTemp("", "pdf2docx-raster-")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	prefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx, p.binary(),
		"-png",
		"-r", strconv.Itoa(dpi),
		src,
		prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", p.binary(), src, err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("list raster dir: %w", err)
	}

	// pdftoppm names files page-<nr>.png with nr zero-padded to the page
	// count width. Sort numerically to be safe.
	type pageFile struct {
		nr   int
		name string
	}
	var files []pageFile
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".png") {
			continue
		}
		nrStr := strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png")
		nr, err := strconv.Atoi(nrStr)
		if err != nil {
			continue
		}
		files = append(files, pageFile{nr: nr, name: name})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s produced no pages for %s", p.binary(), src)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].nr < files[j].nr })

	images := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(workDir, f.name))
		if err != nil {
			return nil, fmt.Errorf("read page image %s: %w", f.name, err)
		}
		images = append(images, data)
	}
	return images, nil
}
