// Package pipeline provides the album export pipeline for polaroid.
//
// This package implements the complete load → layout → rasterize → compose
// pipeline used by the CLI commands. By centralizing this logic, every
// command resolves presets, fonts and caches the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read the album manifest and hash its photos
//  2. Layout: resolve the preset and compute card placements
//  3. Rasterize: render every photo as a card (concurrently, cached)
//  4. Compose: assemble the cards into PDF and/or PNG documents
//
// Stages 3 and 4 run together through [render.Export]. Finished documents are
// cached by album content and export settings, so re-exporting an unchanged
// album returns immediately.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Album:   "summer.toml",
//	    Formats: []string{"pdf"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts["pdf"][0]
//
// [render.Export]: github.com/matzehuels/polaroid/pkg/render.Export
package pipeline

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/photo"
	"github.com/matzehuels/polaroid/pkg/render/pdf"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDPI is the card and sheet resolution.
	DefaultDPI = 300

	// DefaultJPEGQuality is the quality of cards embedded in PDFs.
	DefaultJPEGQuality = pdf.DefaultJPEGQuality
)

// Format constants for output formats.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF: true,
	FormatPNG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for an export.
type Options struct {
	// Album is the path of the album manifest.
	Album string `json:"album"`

	// Layout options
	Preset        string `json:"preset,omitempty"`         // empty: the album's preset, then DefaultPreset
	DefaultPreset string `json:"default_preset,omitempty"` // used when neither names one

	// Render options
	Formats     []string `json:"formats,omitempty"`
	DPI         int      `json:"dpi,omitempty"`
	Workers     int      `json:"workers,omitempty"`
	JPEGQuality int      `json:"jpeg_quality,omitempty"`
	CropMarks   bool     `json:"crop_marks,omitempty"`
	PageNumbers bool     `json:"page_numbers,omitempty"`
	Title       string   `json:"title,omitempty"` // overrides the album title
	Author      string   `json:"author,omitempty"`
	FontPath    string   `json:"font,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"` // ignore cached documents

	// Runtime options (not serialized)
	Logger   *log.Logger           `json:"-"`
	Progress func(done, total int) `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Album is the loaded album.
	Album *photo.Album

	// AlbumHash is the content hash of the album and its photo files.
	AlbumHash string

	// Preset is the resolved layout preset.
	Preset layout.Preset

	// Placements is the computed layout, in album order.
	Placements []layout.Placement

	// Artifacts contains rendered files keyed by format. PDF output is a
	// single file; PNG output has one file per page.
	Artifacts map[string][][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Photos      int
	Pages       int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
	ComposeTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ArtifactHit bool // Whether all documents came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list. Empty means pdf.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatPDF}
	}
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPDF}
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks the options.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Album == "" {
		return fmt.Errorf("album is required")
	}
	if o.DPI < 0 {
		return fmt.Errorf("dpi must be positive, got %d", o.DPI)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be positive, got %d", o.Workers)
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", o.JPEGQuality)
	}
	return ValidateFormats(o.Formats)
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ArtifactKeyOpts returns cache key options for a rendered document.
func (o *Options) ArtifactKeyOpts(format, preset, title, font string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Preset: preset,
		DPI:    o.DPI,
		Title:  title,
		Font:   font,
	}
	switch format {
	case FormatPDF:
		k.JPEGQuality = o.JPEGQuality
		k.CropMarks = o.CropMarks
		k.Author = o.Author
	case FormatPNG:
		k.PageNumbers = o.PageNumbers
	}
	return k
}
