package card

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/photo"
)

const ellipsis = "…"

// Renderer draws decoded photos as cards. It is safe for concurrent use.
type Renderer struct {
	spec Spec
	font *text.FontSource
}

// NewRenderer creates a renderer for spec using font for captions.
func NewRenderer(spec Spec, font *text.FontSource) (*Renderer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if font == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "caption font is required")
	}
	return &Renderer{spec: spec, font: font}, nil
}

// Spec returns the card geometry.
func (r *Renderer) Spec() Spec { return r.spec }

// Render produces the card image for src framed and filtered as p says.
func (r *Renderer) Render(src image.Image, p photo.Photo) (image.Image, error) {
	p = p.Normalized()
	f, err := photo.ParseFilter(p.Filter)
	if err != nil {
		return nil, err
	}
	win := r.Window(src, p, f)
	return r.compose(win, p.Caption)
}

// Window renders the photo window: the framed, filtered source over the
// window background.
func (r *Renderer) Window(src image.Image, p photo.Photo, f photo.Filter) *image.NRGBA {
	ww, wh := r.spec.Window()
	bg := imaging.New(ww, wh, gg.Hex(windowColor).Color())

	b := src.Bounds()
	fr := ComputeFrame(b.Dx(), b.Dy(), float64(ww), float64(wh), p.Scale, p.PosX, p.PosY)
	if fr.Empty() {
		return bg
	}
	dst := fr.DstRect()
	if dst.Dx() <= 0 || dst.Dy() <= 0 {
		return bg
	}

	crop := imaging.Crop(src, fr.SrcRect(b.Dx(), b.Dy()).Add(b.Min))
	fitted := imaging.Resize(crop, dst.Dx(), dst.Dy(), imaging.Lanczos)
	if !f.IsIdentity() {
		fitted = f.Scaled(r.spec.CSSScale()).Apply(fitted)
	}
	return imaging.Overlay(bg, fitted, dst.Min, 1.0)
}

func (r *Renderer) compose(win image.Image, caption string) (image.Image, error) {
	cw, ch := r.spec.Size()
	pad := float64(r.spec.Px(r.spec.PaddingCM))
	_, wh := r.spec.Window()

	dc := gg.NewContext(cw, ch)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(cardColor))
	dc.DrawImage(gg.ImageBufFromImage(win), pad, pad)

	lw := math.Max(1, float64(r.spec.Px(0.02)))
	dc.SetHexColor(borderColor)
	dc.SetLineWidth(lw)
	dc.DrawRectangle(lw/2, lw/2, float64(cw)-lw, float64(ch)-lw)
	if err := dc.Stroke(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "draw card border")
	}

	if caption != "" {
		dc.SetFont(r.font.Face(float64(r.spec.Px(r.spec.CaptionCM))))
		dc.SetHexColor(captionColor)
		measure := func(s string) float64 {
			w, _ := dc.MeasureString(s)
			return w
		}
		line := Truncate(caption, float64(cw)-2*pad, measure)
		top := pad + float64(wh)
		bottom := float64(ch) - pad
		dc.DrawStringAnchored(line, float64(cw)/2, (top+bottom)/2, 0.5, 0.5)
	}
	return dc.Image(), nil
}

// Truncate shortens s with a trailing ellipsis until measure reports it fits
// in maxWidth. Strings that already fit are returned unchanged.
func Truncate(s string, maxWidth float64, measure func(string) float64) string {
	if measure(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if measure(string(runes[:mid])+ellipsis) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == 0 {
		return ellipsis
	}
	return string(runes[:lo]) + ellipsis
}
