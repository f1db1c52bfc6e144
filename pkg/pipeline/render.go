package pipeline

import (
	"bytes"
	"fmt"

	"github.com/gogpu/gg/text"

	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/card"
	"github.com/matzehuels/polaroid/pkg/fonts"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/render"
	"github.com/matzehuels/polaroid/pkg/render/pdf"
	"github.com/matzehuels/polaroid/pkg/render/sheet"
)

// =============================================================================
// Fonts
// =============================================================================

// loadFont returns the caption font and an identifier for cache keys.
// The default font has an empty identifier.
func loadFont(path string) (*text.FontSource, string, error) {
	src, err := fonts.Load(path)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return src, "", nil
	}
	id, err := cache.HashFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("hash font %s: %w", path, err)
	}
	return src, id, nil
}

// =============================================================================
// Documents
// =============================================================================

// documents holds one open document per requested format.
type documents struct {
	pdf   *pdf.Document
	sheet *sheet.Document
}

func newDocuments(cfg layout.Config, title string, opts Options) *documents {
	d := &documents{}
	if opts.HasFormat(FormatPDF) {
		pdfOpts := []pdf.Option{
			pdf.WithTitle(title),
			pdf.WithAuthor(opts.Author),
			pdf.WithJPEGQuality(opts.JPEGQuality),
		}
		if opts.CropMarks {
			pdfOpts = append(pdfOpts, pdf.WithCropMarks())
		}
		d.pdf = pdf.New(cfg, pdfOpts...)
	}
	if opts.HasFormat(FormatPNG) {
		sheetOpts := []sheet.Option{sheet.WithDPI(opts.DPI)}
		if opts.PageNumbers {
			sheetOpts = append(sheetOpts, sheet.WithPageNumbers())
		}
		d.sheet = sheet.New(cfg, sheetOpts...)
	}
	return d
}

// writer returns a PageWriter feeding every open document.
func (d *documents) writer() render.PageWriter {
	var ws []render.PageWriter
	if d.pdf != nil {
		ws = append(ws, d.pdf)
	}
	if d.sheet != nil {
		ws = append(ws, d.sheet)
	}
	if len(ws) == 1 {
		return ws[0]
	}
	return render.Tee(ws...)
}

// close finishes one document and returns its files.
func (d *documents) close(format string) ([][]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPDF:
		if err := d.pdf.Close(&buf); err != nil {
			return nil, err
		}
		return [][]byte{buf.Bytes()}, nil
	case FormatPNG:
		if err := d.sheet.Close(&buf); err != nil {
			return nil, err
		}
		return d.sheet.Pages(), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// newRasterizer builds the card rasterizer for cfg's card size.
func (r *Runner) newRasterizer(cfg layout.Config, font *text.FontSource, fontID string, opts Options) (*card.Rasterizer, error) {
	spec := card.SpecFor(cfg.ItemWidth, cfg.ItemHeight, opts.DPI)
	return card.NewRasterizer(spec,
		card.WithFont(font, fontID),
		card.WithCache(r.Cache, r.Keyer),
		card.WithLogger(opts.Logger),
	)
}
