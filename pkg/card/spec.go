package card

import (
	"math"

	"github.com/matzehuels/polaroid/pkg/errors"
)

// Reference card geometry in centimetres.
const (
	DefaultWidthCM       = 6.0
	DefaultHeightCM      = 8.0
	DefaultPaddingCM     = 0.4
	DefaultPhotoHeightCM = 5.2
	DefaultCaptionCM     = 0.55
	DefaultDPI           = 300

	// cssDPI is the resolution CSS pixel lengths (e.g. blur radii) refer to.
	cssDPI = 96.0
)

// Colours.
const (
	cardColor    = "#ffffff"
	windowColor  = "#f5f5f4" // shown where a zoomed-out photo leaves gaps
	borderColor  = "#e7e5e4"
	captionColor = "#44403c"
)

// Spec is the physical geometry of a card.
type Spec struct {
	WidthCM       float64
	HeightCM      float64
	PaddingCM     float64 // white border on the top and sides
	PhotoHeightCM float64 // photo window height; the window spans the inner width
	CaptionCM     float64 // caption font size
	DPI           int
}

// DefaultSpec returns the 6x8cm reference card at 300 DPI.
func DefaultSpec() Spec {
	return Spec{
		WidthCM:       DefaultWidthCM,
		HeightCM:      DefaultHeightCM,
		PaddingCM:     DefaultPaddingCM,
		PhotoHeightCM: DefaultPhotoHeightCM,
		CaptionCM:     DefaultCaptionCM,
		DPI:           DefaultDPI,
	}
}

// SpecFor scales the reference card to the given item size. Horizontal
// measures follow the width ratio and vertical ones the height ratio.
func SpecFor(widthCM, heightCM float64, dpi int) Spec {
	kx := widthCM / DefaultWidthCM
	ky := heightCM / DefaultHeightCM
	return Spec{
		WidthCM:       widthCM,
		HeightCM:      heightCM,
		PaddingCM:     DefaultPaddingCM * kx,
		PhotoHeightCM: DefaultPhotoHeightCM * ky,
		CaptionCM:     DefaultCaptionCM * math.Min(kx, ky),
		DPI:           dpi,
	}
}

// Validate checks that the geometry leaves room for the photo window.
func (s Spec) Validate() error {
	switch {
	case s.DPI <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be positive, got %d", s.DPI)
	case s.WidthCM <= 0 || s.HeightCM <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "card size must be positive, got %gx%gcm", s.WidthCM, s.HeightCM)
	case s.PaddingCM < 0 || 2*s.PaddingCM >= s.WidthCM:
		return errors.New(errors.ErrCodeInvalidInput, "padding %gcm does not fit a %gcm card", s.PaddingCM, s.WidthCM)
	case s.PhotoHeightCM <= 0 || s.PaddingCM+s.PhotoHeightCM > s.HeightCM:
		return errors.New(errors.ErrCodeInvalidInput, "photo height %gcm does not fit a %gcm card", s.PhotoHeightCM, s.HeightCM)
	}
	return nil
}

// Px converts centimetres to device pixels at the spec's DPI.
func (s Spec) Px(cm float64) int {
	return int(math.Round(cm / 2.54 * float64(s.DPI)))
}

// Size returns the card size in pixels.
func (s Spec) Size() (w, h int) {
	return s.Px(s.WidthCM), s.Px(s.HeightCM)
}

// Window returns the photo window size in pixels.
func (s Spec) Window() (w, h int) {
	return s.Px(s.WidthCM - 2*s.PaddingCM), s.Px(s.PhotoHeightCM)
}

// CSSScale is the number of device pixels per CSS pixel.
func (s Spec) CSSScale() float64 {
	return float64(s.DPI) / cssDPI
}
