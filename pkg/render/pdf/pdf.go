// Package pdf writes laid-out cards into a single print-ready PDF.
//
// Pages use the layout's page size in centimetres with no margins and no
// automatic page breaks, so every card lands exactly at its placement. Cards
// are embedded as JPEG images; optional crop marks are drawn around each card
// as cutting guides.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/render"
)

var _ render.Document = (*Document)(nil)

// DefaultJPEGQuality is used when no quality option is given.
const DefaultJPEGQuality = 92

// Crop mark geometry in centimetres.
const (
	markOffset = 0.1
	markLength = 0.3
	markWidth  = 0.01
)

// Option configures a Document.
type Option func(*Document)

// WithTitle sets the document title metadata.
func WithTitle(title string) Option {
	return func(d *Document) { d.title = title }
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(d *Document) { d.author = author }
}

// WithJPEGQuality sets the quality (1-100) of embedded card images.
func WithJPEGQuality(q int) Option {
	return func(d *Document) {
		if q >= 1 && q <= 100 {
			d.quality = q
		}
	}
}

// WithCropMarks draws cutting guides at the corners of every card.
func WithCropMarks() Option {
	return func(d *Document) { d.cropMarks = true }
}

// WithCreationDate fixes the creation timestamp, making output reproducible.
func WithCreationDate(t time.Time) Option {
	return func(d *Document) { d.created = t }
}

// Document is a [render.Document] producing a PDF.
// It is not safe for concurrent use.
type Document struct {
	pdf       *fpdf.Fpdf
	cfg       layout.Config
	title     string
	author    string
	quality   int
	cropMarks bool
	created   time.Time

	pages  int
	images int
	closed bool
}

// New creates an empty PDF for pages of cfg's size.
func New(cfg layout.Config, opts ...Option) *Document {
	d := &Document{cfg: cfg, quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(d)
	}

	d.pdf = fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "cm",
		Size:           fpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	d.pdf.SetMargins(0, 0, 0)
	d.pdf.SetAutoPageBreak(false, 0)
	d.pdf.SetCreator("polaroid", true)
	if d.title != "" {
		d.pdf.SetTitle(d.title, true)
	}
	if d.author != "" {
		d.pdf.SetAuthor(d.author, true)
	}
	if !d.created.IsZero() {
		d.pdf.SetCreationDate(d.created)
	}
	return d
}

// Pages returns the number of pages created so far.
func (d *Document) Pages() int { return d.pages }

// WritePage places img with its top-left corner at (x, y) cm on page
// pageIndex, sized to the layout's item dimensions.
func (d *Document) WritePage(img image.Image, x, y float64, pageIndex int) error {
	if d.closed {
		return errors.New(errors.ErrCodeInternal, "pdf document already closed")
	}
	if pageIndex < d.pages-1 {
		return errors.New(errors.ErrCodeInvalidInput, "page %d already written, got card for page %d", d.pages-1, pageIndex)
	}
	for d.pages <= pageIndex {
		d.pdf.AddPage()
		d.pages++
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(d.quality)); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "encode card")
	}

	name := fmt.Sprintf("card-%d", d.images)
	d.images++
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)
	d.pdf.ImageOptions(name, x, y, d.cfg.ItemWidth, d.cfg.ItemHeight, false, opts, 0, "")

	if d.cropMarks {
		d.drawCropMarks(x, y)
	}
	if err := d.pdf.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "place card on page %d", pageIndex)
	}
	return nil
}

func (d *Document) drawCropMarks(x, y float64) {
	w, h := d.cfg.ItemWidth, d.cfg.ItemHeight
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetLineWidth(markWidth)
	for _, cx := range []float64{x, x + w} {
		for _, cy := range []float64{y, y + h} {
			sx, sy := -1.0, -1.0
			if cx > x {
				sx = 1
			}
			if cy > y {
				sy = 1
			}
			// Horizontal guide on the card's top/bottom edge line, vertical
			// guide on its left/right edge line, both outside the card.
			d.pdf.Line(cx+sx*markOffset, cy, cx+sx*(markOffset+markLength), cy)
			d.pdf.Line(cx, cy+sy*markOffset, cx, cy+sy*(markOffset+markLength))
		}
	}
}

// Close writes the PDF to w. A document without cards has one blank page.
func (d *Document) Close(w io.Writer) error {
	if d.closed {
		return errors.New(errors.ErrCodeInternal, "pdf document already closed")
	}
	d.closed = true
	if d.pages == 0 {
		d.pdf.AddPage()
		d.pages++
	}
	if err := d.pdf.Output(w); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "write pdf")
	}
	return nil
}
