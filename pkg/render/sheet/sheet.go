// Package sheet renders laid-out cards as PNG page images, one per page.
package sheet

import (
	"bytes"
	"image"
	"io"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/fonts"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/render"
)

var _ render.Document = (*Document)(nil)

// DefaultDPI is the sheet resolution when none is given.
const DefaultDPI = 300

const (
	paperColor  = "#ffffff"
	numberColor = "#a8a29e"
)

// Option configures a Document.
type Option func(*Document)

// WithDPI sets the sheet resolution.
func WithDPI(dpi int) Option {
	return func(d *Document) {
		if dpi > 0 {
			d.dpi = dpi
		}
	}
}

// WithPageNumbers prints the page number in the bottom margin.
func WithPageNumbers() Option {
	return func(d *Document) { d.numbers = true }
}

// Document is a [render.Document] producing PNG sheets.
// Pages are encoded as soon as the next page starts, so at most one page
// canvas is held in memory. It is not safe for concurrent use.
type Document struct {
	cfg     layout.Config
	dpi     int
	numbers bool

	current *gg.Context
	index   int
	pages   [][]byte
	closed  bool
}

// New creates an empty sheet set for pages of cfg's size.
func New(cfg layout.Config, opts ...Option) *Document {
	d := &Document{cfg: cfg, dpi: DefaultDPI, index: -1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// px converts centimetres to pixels.
func (d *Document) px(cm float64) int {
	return int(math.Round(cm / 2.54 * float64(d.dpi)))
}

// PageSize returns the page size in pixels.
func (d *Document) PageSize() (w, h int) {
	return d.px(d.cfg.PageWidth), d.px(d.cfg.PageHeight)
}

// WritePage draws img with its top-left corner at (x, y) cm on page
// pageIndex, scaled to the layout's item size if needed.
func (d *Document) WritePage(img image.Image, x, y float64, pageIndex int) error {
	if d.closed {
		return errors.New(errors.ErrCodeInternal, "sheet document already closed")
	}
	if pageIndex < d.index {
		return errors.New(errors.ErrCodeInvalidInput, "page %d already written, got card for page %d", d.index, pageIndex)
	}
	for d.index < pageIndex {
		if err := d.nextPage(); err != nil {
			return err
		}
	}

	w, h := d.px(d.cfg.ItemWidth), d.px(d.cfg.ItemHeight)
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	d.current.DrawImage(gg.ImageBufFromImage(img), float64(d.px(x)), float64(d.px(y)))
	return nil
}

func (d *Document) nextPage() error {
	if err := d.flush(); err != nil {
		return err
	}
	w, h := d.PageSize()
	d.current = gg.NewContext(w, h)
	d.current.ClearWithColor(gg.Hex(paperColor))
	d.index++
	return nil
}

// flush encodes the current page, if any, and releases its canvas.
func (d *Document) flush() error {
	if d.current == nil {
		return nil
	}
	defer func() {
		_ = d.current.Close()
		d.current = nil
	}()

	if d.numbers {
		if err := d.drawNumber(d.index + 1); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := d.current.EncodePNG(&buf); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "encode page %d", d.index)
	}
	d.pages = append(d.pages, buf.Bytes())
	return nil
}

func (d *Document) drawNumber(n int) error {
	src, err := fonts.Regular()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load annotation font")
	}
	w, h := d.PageSize()
	bottom := d.px(d.cfg.Margin)
	if bottom == 0 {
		return nil
	}
	d.current.SetFont(src.Face(float64(bottom) / 3))
	d.current.SetHexColor(numberColor)
	d.current.DrawStringAnchored(strconv.Itoa(n), float64(w)/2, float64(h-bottom/2), 0.5, 0.5)
	return nil
}

// Close finishes the last page and writes the first page to w. Use [Pages]
// afterwards to get every page. A document without cards has one blank page.
func (d *Document) Close(w io.Writer) error {
	if d.closed {
		return errors.New(errors.ErrCodeInternal, "sheet document already closed")
	}
	d.closed = true
	if d.index < 0 {
		if err := d.nextPage(); err != nil {
			return err
		}
	}
	if err := d.flush(); err != nil {
		return err
	}
	if _, err := w.Write(d.pages[0]); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "write page")
	}
	return nil
}

// Pages returns the encoded PNG pages. It is complete only after Close.
func (d *Document) Pages() [][]byte {
	return d.pages
}
