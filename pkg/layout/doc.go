// Package layout places fixed-size cards onto fixed-size pages.
//
// # Overview
//
// The engine is a pure function of an item count and a [Config]. It returns
// one [Placement] per item with the zero-based page index and the top-left
// corner of the item on that page. All values are in centimetres.
//
//	placements, err := layout.Layout(20, layout.Grid9.Config)
//
// # Modes
//
// Two policies are supported and selected by the config:
//
//   - Grid ([ModeGrid]): used when Columns or ItemsPerPage is set. Items fill
//     a fixed number of columns row by row, and a new page starts every
//     ItemsPerPage items. The grid is centred horizontally unless an explicit
//     Origin is given.
//
//   - Flow ([ModeFlow]): used when neither is set. Before each item the
//     engine checks whether it still fits inside the page margins, wrapping
//     to the next row or page when it does not.
//
// The two modes intentionally produce different layouts for the same item
// size. Flow packs against the left margin while grid centres its columns.
//
// # Derived Values
//
// When only one of Columns and ItemsPerPage is set, the other is derived:
//
//	columns      = floor((PageWidth - 2*Margin) / (ItemWidth + GapX))
//	rowsThatFit  = floor((PageHeight - 2*Margin + GapY) / (ItemHeight + GapY))
//	itemsPerPage = columns * rowsThatFit
//
// Both are clamped to at least 1. [Config.Resolve] exposes the resolved
// [Geometry].
//
// # Errors
//
// Invalid input fails with a CONFIGURATION_ERROR from pkg/errors before any
// placement is computed, so callers never see partial output.
//
// # Presets
//
// [Grid9], [Grid6] and [Flow] describe the A4 layouts offered by the CLI.
// Use [LookupPreset] to resolve one by name.
package layout
