package layout

import (
	"github.com/matzehuels/polaroid/pkg/errors"
)

// Placement is the position of one item on one page.
type Placement struct {
	SourceIndex int     `json:"source_index"`
	PageIndex   int     `json:"page_index"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Overlaps reports whether two rectangles share interior area.
// Touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right-eps && o.Left < r.Right-eps &&
		r.Top < o.Bottom-eps && o.Top < r.Bottom-eps
}

// Rect returns the rectangle the placed item covers under cfg.
func (p Placement) Rect(cfg Config) Rect {
	return Rect{Left: p.X, Top: p.Y, Right: p.X + cfg.ItemWidth, Bottom: p.Y + cfg.ItemHeight}
}

// Layout computes the placement of itemCount items under cfg.
//
// Items are placed in input order, row-major, starting a new page when the
// grid capacity is reached (grid mode) or when the next item no longer fits
// inside the margins (flow mode). The result has exactly itemCount entries
// and is identical for identical inputs.
func Layout(itemCount int, cfg Config) ([]Placement, error) {
	if itemCount < 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "item count must not be negative, got %d", itemCount)
	}
	g, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	out := make([]Placement, 0, itemCount)
	c := cursor{cfg: cfg, geo: g, x: g.StartX, y: g.StartY}
	for i := range itemCount {
		if g.Mode == ModeGrid {
			c.breakGrid()
		} else {
			c.breakFlow()
		}
		out = append(out, Placement{SourceIndex: i, PageIndex: c.page, X: c.x, Y: c.y})
		c.advance()
	}
	return out, nil
}

// cursor tracks the next free slot while placing items.
type cursor struct {
	cfg  Config
	geo  Geometry
	x, y float64
	page int
	n    int // items on the current page
}

func (c *cursor) newPage() {
	c.page++
	c.x, c.y = c.geo.StartX, c.geo.StartY
	c.n = 0
}

func (c *cursor) wrapRow() {
	c.x = c.geo.StartX
	c.y += c.cfg.ItemHeight + c.cfg.GapY
}

func (c *cursor) breakGrid() {
	if c.n > 0 && c.n%c.geo.ItemsPerPage == 0 {
		c.newPage()
	}
}

func (c *cursor) breakFlow() {
	if c.x+c.cfg.ItemWidth > c.cfg.PageWidth-c.cfg.Margin+eps {
		c.wrapRow()
	}
	if c.y+c.cfg.ItemHeight > c.cfg.PageHeight-c.cfg.Margin+eps {
		c.newPage()
	}
}

func (c *cursor) advance() {
	if c.geo.Mode == ModeGrid && (c.n+1)%c.geo.Columns == 0 {
		c.wrapRow()
	} else {
		c.x += c.cfg.ItemWidth + c.cfg.GapX
	}
	c.n++
}

// PageCount returns the number of pages the placements span.
func PageCount(placements []Placement) int {
	if len(placements) == 0 {
		return 0
	}
	return placements[len(placements)-1].PageIndex + 1
}

// Paginate groups placements by page. Placements must be in the order
// returned by [Layout].
func Paginate(placements []Placement) [][]Placement {
	pages := make([][]Placement, PageCount(placements))
	for _, p := range placements {
		pages[p.PageIndex] = append(pages[p.PageIndex], p)
	}
	return pages
}
