package layout

import (
	"math"

	"github.com/matzehuels/polaroid/pkg/errors"
)

// eps absorbs floating-point noise in fit comparisons (centimetres).
const eps = 1e-9

// Mode selects the pagination policy.
type Mode int

const (
	// ModeFlow wraps rows and pages by measured fit.
	ModeFlow Mode = iota
	// ModeGrid places a fixed number of columns and items per page.
	ModeGrid
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeGrid:
		return "grid"
	case ModeFlow:
		return "flow"
	default:
		return "unknown"
	}
}

// Point is a position on a page in centimetres.
type Point struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Config describes page and item geometry in centimetres.
//
// Columns and ItemsPerPage are optional. Zero means "not set". Setting either
// one selects [ModeGrid].
type Config struct {
	PageWidth  float64 `json:"page_width" yaml:"page_width" toml:"page_width"`
	PageHeight float64 `json:"page_height" yaml:"page_height" toml:"page_height"`
	ItemWidth  float64 `json:"item_width" yaml:"item_width" toml:"item_width"`
	ItemHeight float64 `json:"item_height" yaml:"item_height" toml:"item_height"`
	GapX       float64 `json:"gap_x" yaml:"gap_x" toml:"gap_x"`
	GapY       float64 `json:"gap_y" yaml:"gap_y" toml:"gap_y"`
	Margin     float64 `json:"margin" yaml:"margin" toml:"margin"`

	Columns      int `json:"columns,omitempty" yaml:"columns,omitempty" toml:"columns,omitempty"`
	ItemsPerPage int `json:"items_per_page,omitempty" yaml:"items_per_page,omitempty" toml:"items_per_page,omitempty"`

	// Origin overrides the computed start position of the first item on
	// every page.
	Origin *Point `json:"origin,omitempty" yaml:"origin,omitempty" toml:"origin,omitempty"`
}

// Geometry is a Config with all derived values filled in.
type Geometry struct {
	Mode         Mode
	Columns      int // 0 in flow mode
	ItemsPerPage int // 0 in flow mode
	StartX       float64
	StartY       float64
}

// Mode reports which pagination policy the config selects.
func (c Config) Mode() Mode {
	if c.Columns != 0 || c.ItemsPerPage != 0 {
		return ModeGrid
	}
	return ModeFlow
}

// UsableWidth returns the page width inside both side margins.
func (c Config) UsableWidth() float64 { return c.PageWidth - 2*c.Margin }

// UsableHeight returns the page height inside top and bottom margins.
func (c Config) UsableHeight() float64 { return c.PageHeight - 2*c.Margin }

// Validate checks the config without deriving anything.
func (c Config) Validate() error {
	dims := []struct {
		name string
		v    float64
	}{
		{"page width", c.PageWidth},
		{"page height", c.PageHeight},
		{"item width", c.ItemWidth},
		{"item height", c.ItemHeight},
		{"horizontal gap", c.GapX},
		{"vertical gap", c.GapY},
	}
	for _, d := range dims {
		if !finite(d.v) || d.v <= 0 {
			return errors.New(errors.ErrCodeConfiguration, "%s must be positive, got %g", d.name, d.v)
		}
	}

	if !finite(c.Margin) || c.Margin < 0 {
		return errors.New(errors.ErrCodeConfiguration, "margin must not be negative, got %g", c.Margin)
	}

	if c.Columns < 0 {
		return errors.New(errors.ErrCodeConfiguration, "columns must be at least 1, got %d", c.Columns)
	}
	if c.ItemsPerPage < 0 {
		return errors.New(errors.ErrCodeConfiguration, "items per page must be at least 1, got %d", c.ItemsPerPage)
	}

	if c.ItemWidth > c.UsableWidth()+eps {
		return errors.New(errors.ErrCodeConfiguration,
			"item width %gcm exceeds usable page width %gcm", c.ItemWidth, c.UsableWidth())
	}
	if c.ItemHeight > c.UsableHeight()+eps {
		return errors.New(errors.ErrCodeConfiguration,
			"item height %gcm exceeds usable page height %gcm", c.ItemHeight, c.UsableHeight())
	}

	if c.Origin != nil && (!finite(c.Origin.X) || !finite(c.Origin.Y) || c.Origin.X < 0 || c.Origin.Y < 0) {
		return errors.New(errors.ErrCodeConfiguration, "origin must be inside the page, got (%g, %g)", c.Origin.X, c.Origin.Y)
	}
	return nil
}

// Resolve validates the config and derives columns, capacity and origin.
func (c Config) Resolve() (Geometry, error) {
	if err := c.Validate(); err != nil {
		return Geometry{}, err
	}
	if c.Mode() == ModeFlow {
		return c.resolveFlow()
	}
	return c.resolveGrid()
}

func (c Config) resolveFlow() (Geometry, error) {
	g := Geometry{Mode: ModeFlow, StartX: c.Margin, StartY: c.Margin}
	if c.Origin != nil {
		g.StartX, g.StartY = c.Origin.X, c.Origin.Y
	}
	if g.StartX+c.ItemWidth > c.PageWidth-c.Margin+eps {
		return Geometry{}, errors.New(errors.ErrCodeConfiguration,
			"origin x %gcm leaves no room for an item inside the margin", g.StartX)
	}
	if g.StartY+c.ItemHeight > c.PageHeight-c.Margin+eps {
		return Geometry{}, errors.New(errors.ErrCodeConfiguration,
			"origin y %gcm leaves no room for an item inside the margin", g.StartY)
	}
	return g, nil
}

func (c Config) resolveGrid() (Geometry, error) {
	g := Geometry{Mode: ModeGrid, Columns: c.Columns, ItemsPerPage: c.ItemsPerPage}
	if g.Columns == 0 {
		g.Columns = max(1, int(math.Floor(c.UsableWidth()/(c.ItemWidth+c.GapX)+eps)))
	}
	if g.ItemsPerPage == 0 {
		rows := max(1, int(math.Floor((c.UsableHeight()+c.GapY)/(c.ItemHeight+c.GapY)+eps)))
		g.ItemsPerPage = g.Columns * rows
	}

	// A page never holds more than ItemsPerPage cards, so narrower
	// capacities leave trailing columns empty.
	cols := min(g.Columns, g.ItemsPerPage)
	rows := (g.ItemsPerPage + g.Columns - 1) / g.Columns
	gridW := float64(cols)*c.ItemWidth + float64(cols-1)*c.GapX
	gridH := float64(rows)*c.ItemHeight + float64(rows-1)*c.GapY

	if c.Origin != nil {
		g.StartX, g.StartY = c.Origin.X, c.Origin.Y
	} else {
		g.StartX = (c.PageWidth - gridW) / 2
		g.StartY = c.Margin
	}

	if g.StartX < -eps || g.StartX+gridW > c.PageWidth+eps {
		return Geometry{}, errors.New(errors.ErrCodeConfiguration,
			"%d columns of %gcm do not fit a %gcm page", cols, c.ItemWidth, c.PageWidth)
	}
	if g.StartY+gridH > c.PageHeight+eps {
		return Geometry{}, errors.New(errors.ErrCodeConfiguration,
			"%d rows of %gcm do not fit a %gcm page", rows, c.ItemHeight, c.PageHeight)
	}
	return g, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
