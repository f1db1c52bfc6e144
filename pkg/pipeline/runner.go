package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/layout"
	"github.com/matzehuels/polaroid/pkg/observability"
	"github.com/matzehuels/polaroid/pkg/photo"
	"github.com/matzehuels/polaroid/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → rasterize → compose pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()

	// Stage 1: Load
	loadStart := time.Now()
	hooks.OnLoadStart(ctx, opts.Album)
	album, meta, err := Load(opts.Album)
	var albumHash string
	if err == nil {
		albumHash, err = HashAlbum(album)
	}
	hooks.OnLoadComplete(ctx, opts.Album, albumLen(album), time.Since(loadStart), err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	result := &Result{
		Album:     album,
		AlbumHash: albumHash,
		Artifacts: make(map[string][][]byte),
	}
	result.Stats.Photos = album.Len()
	result.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Debug("loaded album", "path", opts.Album, "photos", album.Len(), "duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	preset, err := ResolvePreset(opts.Preset, meta.Preset, opts.DefaultPreset)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	hooks.OnLayoutStart(ctx, preset.Name, album.Len())
	placements, err := GenerateLayout(album.Len(), preset)
	hooks.OnLayoutComplete(ctx, preset.Name, layout.PageCount(placements), time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Preset = preset
	result.Placements = placements
	result.Stats.Pages = layout.PageCount(placements)
	result.Stats.LayoutTime = time.Since(layoutStart)
	r.Logger.Debug("computed layout", "preset", preset.Name, "pages", result.Stats.Pages)

	// Stages 3 and 4: Rasterize and compose
	title := opts.Title
	if title == "" {
		title = album.Title
	}
	font, fontID, err := loadFont(opts.FontPath)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = r.Keyer.ArtifactKey(albumHash, opts.ArtifactKeyOpts(f, preset.Name, title, fontID))
	}

	if !opts.Refresh {
		if cached, ok := r.cachedArtifacts(ctx, keys); ok {
			result.Artifacts = cached
			result.CacheInfo.ArtifactHit = true
			r.Logger.Debug("documents from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	artifacts, err := r.renderAlbum(ctx, album, preset, title, font, fontID, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	for f, files := range artifacts {
		if data, err := json.Marshal(files); err == nil {
			if err := r.Cache.Set(ctx, keys[f], data, cache.ArtifactTTL); err != nil {
				r.Logger.Warn("artifact cache write failed", "format", f, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}
	return result, nil
}

// cachedArtifacts returns every requested document from cache, or false if
// any is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, keys map[string]string) (map[string][][]byte, bool) {
	hooks := observability.Cache()
	out := make(map[string][][]byte, len(keys))
	for format, key := range keys {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		var files [][]byte
		if err := json.Unmarshal(data, &files); err != nil || len(files) == 0 {
			hooks.OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		out[format] = files
	}
	for range keys {
		hooks.OnCacheHit(ctx, "artifact")
	}
	return out, true
}

// renderAlbum rasterizes every card once and composes all requested formats.
func (r *Runner) renderAlbum(ctx context.Context, album *photo.Album, preset layout.Preset, title string, font *text.FontSource, fontID string, opts Options, stats *Stats) (map[string][][]byte, error) {
	hooks := observability.Pipeline()
	cfg := preset.Config

	ras, err := r.newRasterizer(cfg, font, fontID, opts)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	docs := newDocuments(cfg, title, opts)

	renderStart := time.Now()
	hooks.OnRasterizeStart(ctx, album.Len(), opts.Workers)
	_, err = render.Export(ctx, album.Photos, cfg, ras, docs.writer(), render.ExportOptions{
		Workers:  opts.Workers,
		Progress: opts.Progress,
	})
	stats.RenderTime = time.Since(renderStart)
	hooks.OnRasterizeComplete(ctx, album.Len(), stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	r.Logger.Debug("rasterized cards", "count", album.Len(), "workers", opts.Workers, "duration", stats.RenderTime)

	composeStart := time.Now()
	artifacts := make(map[string][][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		start := time.Now()
		hooks.OnComposeStart(ctx, f, stats.Pages)
		files, err := docs.close(f)
		hooks.OnComposeComplete(ctx, f, totalSize(files), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("compose %s: %w", f, err)
		}
		artifacts[f] = files
	}
	stats.ComposeTime = time.Since(composeStart)
	return artifacts, nil
}

// Layout loads the album at path and computes its placements without
// rendering anything. Presets resolve as in [Runner.Execute].
func (r *Runner) Layout(ctx context.Context, path, presetName, defaultPreset string) (layout.Preset, []layout.Placement, error) {
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnLoadStart(ctx, path)
	album, meta, err := Load(path)
	hooks.OnLoadComplete(ctx, path, albumLen(album), time.Since(start), err)
	if err != nil {
		return layout.Preset{}, nil, fmt.Errorf("load: %w", err)
	}

	preset, err := ResolvePreset(presetName, meta.Preset, defaultPreset)
	if err != nil {
		return layout.Preset{}, nil, fmt.Errorf("layout: %w", err)
	}
	start = time.Now()
	hooks.OnLayoutStart(ctx, preset.Name, album.Len())
	placements, err := GenerateLayout(album.Len(), preset)
	hooks.OnLayoutComplete(ctx, preset.Name, layout.PageCount(placements), time.Since(start), err)
	if err != nil {
		return layout.Preset{}, nil, fmt.Errorf("layout: %w", err)
	}
	return preset, placements, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func albumLen(a *photo.Album) int {
	if a == nil {
		return 0
	}
	return a.Len()
}

func totalSize(files [][]byte) int {
	n := 0
	for _, f := range files {
		n += len(f)
	}
	return n
}
