// Package render assembles card images into printable documents.
//
// # Overview
//
// Rendering is split into two roles:
//
//   - a [Rasterizer] turns one photo into a card image
//   - a [Document] places card images on pages at centimetre positions
//
// [Export] ties them together with the page layout engine. It computes every
// placement first, rasterizes cards concurrently with a bounded worker pool,
// and then writes them to the document strictly in album order, so the
// document sees non-decreasing page indices and can create pages lazily.
//
//	placements, _ := layout.Layout(len(photos), cfg)   // validated up front
//	summary, err := render.Export(ctx, photos, cfg, ras, doc, render.ExportOptions{Workers: 4})
//	err = doc.Close(w)
//
// # Implementations
//
//   - [pdf]: a single PDF with one page per layout page
//   - [sheet]: one PNG image per page
//
// The card rasterizer lives in [card].
//
// [pdf]: github.com/matzehuels/polaroid/pkg/render/pdf
// [sheet]: github.com/matzehuels/polaroid/pkg/render/sheet
// [card]: github.com/matzehuels/polaroid/pkg/card
package render
