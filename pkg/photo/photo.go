// Package photo models album photos, their framing and colour filters.
//
// A [Photo] is a source image plus the adjustments a user made to it:
// caption, CSS filter string, zoom and object-position. An [Album] is the
// ordered list of photos that gets laid out and exported; the order of
// photos in the album is the order of cards on the page.
//
// Filters use CSS filter function syntax (see [ParseFilter]) so the same
// strings can be shared with browser previews. The built-in [Presets]
// cover the usual looks.
package photo

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Framing limits.
const (
	DefaultScale = 1.0
	MinScale     = 0.1
	MaxScale     = 4.0
	DefaultPos   = 50.0
	MinPos       = 0.0
	MaxPos       = 100.0

	// dragSensitivity is the position change in percent per pixel of drag at
	// zoom 1. It shrinks as the photo is zoomed in.
	dragSensitivity = 0.4
)

// Photo is a single album entry.
type Photo struct {
	ID        string
	Source    string // path to the image file
	Caption   string
	Filter    string // CSS filter list, "none" or ""
	Scale     float64
	PosX      float64 // object-position x in percent
	PosY      float64 // object-position y in percent
	CreatedAt time.Time
}

// New creates a photo for source with default framing and the given filter.
func New(source, filter string) Photo {
	return Photo{
		ID:        uuid.NewString(),
		Source:    source,
		Filter:    NormalizeFilter(filter),
		Scale:     DefaultScale,
		PosX:      DefaultPos,
		PosY:      DefaultPos,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Normalized returns a copy with defaults filled in and framing clamped to
// the valid ranges. A zero Scale is treated as unset.
func (p Photo) Normalized() Photo {
	if p.Scale == 0 || math.IsNaN(p.Scale) {
		p.Scale = DefaultScale
	}
	p.Scale = ClampScale(p.Scale)
	p.PosX = ClampPos(p.PosX)
	p.PosY = ClampPos(p.PosY)
	p.Filter = NormalizeFilter(p.Filter)
	p.Caption = NormalizeCaption(p.Caption)
	return p
}

// Adjustment is a partial framing update. Nil fields are left unchanged.
type Adjustment struct {
	Scale *float64
	PosX  *float64
	PosY  *float64
}

// Apply returns p with the adjustment applied and clamped.
func (a Adjustment) Apply(p Photo) Photo {
	if a.Scale != nil {
		p.Scale = ClampScale(*a.Scale)
	}
	if a.PosX != nil {
		p.PosX = ClampPos(*a.PosX)
	}
	if a.PosY != nil {
		p.PosY = ClampPos(*a.PosY)
	}
	return p
}

// Nudge moves the framing as if the photo had been dragged by (dx, dy)
// screen pixels. Dragging right reveals more of the left side, so positions
// move against the drag. Zoomed-in photos move more slowly.
func (p Photo) Nudge(dx, dy float64) Photo {
	s := dragSensitivity / math.Max(p.Scale, MinScale)
	p.PosX = ClampPos(p.PosX - dx*s)
	p.PosY = ClampPos(p.PosY - dy*s)
	return p
}

// ClampScale limits a zoom factor to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// ClampPos limits an object-position percentage to [MinPos, MaxPos].
func ClampPos(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultPos
	}
	return math.Max(MinPos, math.Min(MaxPos, v))
}

// NormalizeCaption trims surrounding space and converts the caption to
// Unicode NFC so that visually equal captions compare and cache equally.
func NormalizeCaption(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
