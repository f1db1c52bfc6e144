// Package cache stores rendered cards and export artifacts between runs.
//
// Rasterizing a card means decoding a full-resolution photo, filtering and
// resampling it, so results are cached by the content hash of the source
// image plus every adjustment that affects the pixels. Re-exporting an album
// only re-renders the photos that changed.
//
// Three backends implement [Cache]:
//   - [FileCache]: sharded files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for print stations that export
//     the same albums from several machines
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are built by a [Keyer] so the backends never see domain types.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	CardTTL     = 30 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// =============================================================================
// Keys
// =============================================================================

// Keyer builds cache keys.
type Keyer interface {
	// CardKey identifies one rendered card.
	CardKey(sourceHash string, opts CardKeyOpts) string

	// ArtifactKey identifies one exported document.
	ArtifactKey(albumHash string, opts ArtifactKeyOpts) string
}

// CardKeyOpts are the inputs besides the source pixels that change a card.
type CardKeyOpts struct {
	Filter   string  `json:"filter"`
	Caption  string  `json:"caption"`
	Scale    float64 `json:"scale"`
	PosX     float64 `json:"pos_x"`
	PosY     float64 `json:"pos_y"`
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
	DPI      int     `json:"dpi"`
	Font     string  `json:"font,omitempty"`
}

// ArtifactKeyOpts are the export settings that change a document.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Preset      string `json:"preset"`
	DPI         int    `json:"dpi"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
	CropMarks   bool   `json:"crop_marks,omitempty"`
	PageNumbers bool   `json:"page_numbers,omitempty"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Font        string `json:"font,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CardKey returns "card:<sha256>".
func (DefaultKeyer) CardKey(sourceHash string, opts CardKeyOpts) string {
	return hashKey("card", sourceHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(albumHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", albumHash, opts)
}

// =============================================================================
// NullCache
// =============================================================================

// NullCache is a no-op cache that never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return NullCache{}
}

// Get always reports a miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (NullCache) Delete(context.Context, string) error { return nil }

// Clear does nothing.
func (NullCache) Clear(context.Context) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
