package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// Rasterizer renders a single photo as a card image.
// Implementations must be safe for concurrent use.
type Rasterizer interface {
	Rasterize(ctx context.Context, p photo.Photo) (image.Image, error)
}

// PageWriter receives placed card images.
//
// WritePage is called in album order, so pageIndex never decreases; a page
// is created the first time its index is seen. x and y are the card's
// top-left corner in centimetres.
type PageWriter interface {
	WritePage(img image.Image, x, y float64, pageIndex int) error
}

// Document is a PageWriter that serializes its pages on Close.
type Document interface {
	PageWriter
	Close(w io.Writer) error
}

// Tee returns a PageWriter that forwards every card to each of ws in turn,
// stopping at the first error.
func Tee(ws ...PageWriter) PageWriter {
	return tee(ws)
}

type tee []PageWriter

func (t tee) WritePage(img image.Image, x, y float64, pageIndex int) error {
	for _, w := range t {
		if err := w.WritePage(img, x, y, pageIndex); err != nil {
			return err
		}
	}
	return nil
}

// ExportOptions tunes [Export].
type ExportOptions struct {
	// Workers bounds concurrent rasterization. Zero means runtime.NumCPU().
	Workers int

	// Progress, if set, is called after each card is rasterized with the
	// number of finished cards. It may be called from several goroutines.
	Progress func(done, total int)
}

// Summary describes a finished export.
type Summary struct {
	Pages      int
	Items      int
	Placements []layout.Placement
}

// Export lays out photos with cfg, rasterizes them with ras and writes every
// card to doc in album order. doc is usually a [Document]; use [Tee] to fill
// several documents from one rasterization pass.
//
// A configuration error aborts before any rasterization. Any failure aborts
// the whole export; the caller should discard doc in that case.
func Export(ctx context.Context, photos []photo.Photo, cfg layout.Config, ras Rasterizer, doc PageWriter, opts ExportOptions) (Summary, error) {
	placements, err := layout.Layout(len(photos), cfg)
	if err != nil {
		return Summary{}, err
	}

	cards, err := rasterizeAll(ctx, photos, ras, opts)
	if err != nil {
		return Summary{}, err
	}

	for _, pl := range placements {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		if err := doc.WritePage(cards[pl.SourceIndex], pl.X, pl.Y, pl.PageIndex); err != nil {
			return Summary{}, fmt.Errorf("write card %d: %w", pl.SourceIndex, err)
		}
	}

	return Summary{
		Pages:      layout.PageCount(placements),
		Items:      len(placements),
		Placements: placements,
	}, nil
}

func rasterizeAll(ctx context.Context, photos []photo.Photo, ras Rasterizer, opts ExportOptions) ([]image.Image, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cards := make([]image.Image, len(photos))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range photos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := ras.Rasterize(gctx, p)
			if err != nil {
				return fmt.Errorf("rasterize %s: %w", p.Source, err)
			}
			cards[i] = img
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(photos))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancellation seen only by the loop leaves gaps in cards.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}
