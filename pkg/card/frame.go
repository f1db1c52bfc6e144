package card

import (
	"image"
	"math"
)

// Frame maps a region of the source image onto the photo window.
// Coordinates are in pixels; Src is relative to the source bounds origin
// and Dst to the window's top-left corner.
type Frame struct {
	SrcX0, SrcY0, SrcX1, SrcY1 float64
	DstX0, DstY0, DstX1, DstY1 float64
}

// Empty reports whether no part of the source is visible.
func (f Frame) Empty() bool {
	return f.DstX1-f.DstX0 < 0.5 || f.DstY1-f.DstY0 < 0.5 ||
		f.SrcX1-f.SrcX0 <= 0 || f.SrcY1-f.SrcY0 <= 0
}

// SrcRect returns the source region rounded outward to whole pixels and
// clipped to a srcW x srcH image.
func (f Frame) SrcRect(srcW, srcH int) image.Rectangle {
	r := image.Rect(
		int(math.Floor(f.SrcX0)), int(math.Floor(f.SrcY0)),
		int(math.Ceil(f.SrcX1)), int(math.Ceil(f.SrcY1)),
	)
	return r.Intersect(image.Rect(0, 0, srcW, srcH))
}

// DstRect returns the destination rectangle rounded to whole pixels.
func (f Frame) DstRect() image.Rectangle {
	return image.Rect(
		int(math.Round(f.DstX0)), int(math.Round(f.DstY0)),
		int(math.Round(f.DstX1)), int(math.Round(f.DstY1)),
	)
}

// ComputeFrame reproduces the browser framing of a photo inside its window:
//
//  1. object-fit: cover scales the source so it covers the window,
//  2. object-position: posX% posY% aligns it,
//  3. transform: scale(s) zooms it about the window centre.
//
// The result is the visible part of the source and where it lands.
func ComputeFrame(srcW, srcH int, winW, winH, scale, posX, posY float64) Frame {
	if srcW <= 0 || srcH <= 0 || winW <= 0 || winH <= 0 || scale <= 0 {
		return Frame{}
	}
	sw, sh := float64(srcW), float64(srcH)

	cover := math.Max(winW/sw, winH/sh)
	rw, rh := sw*cover, sh*cover

	ox := (winW - rw) * posX / 100
	oy := (winH - rh) * posY / 100

	cx, cy := winW/2, winH/2
	dx := cx + scale*(ox-cx)
	dy := cy + scale*(oy-cy)
	dw, dh := scale*rw, scale*rh

	// Clip to the window.
	x0, y0 := math.Max(dx, 0), math.Max(dy, 0)
	x1, y1 := math.Min(dx+dw, winW), math.Min(dy+dh, winH)
	if x1 <= x0 || y1 <= y0 {
		return Frame{}
	}

	k := scale * cover // window pixels per source pixel
	return Frame{
		SrcX0: (x0 - dx) / k, SrcY0: (y0 - dy) / k,
		SrcX1: (x1 - dx) / k, SrcY1: (y1 - dy) / k,
		DstX0: x0, DstY0: y0,
		DstX1: x1, DstY1: y1,
	}
}
