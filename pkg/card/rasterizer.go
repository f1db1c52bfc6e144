package card

import (
	"bytes"
	"context"
	"image"
	"os"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/gogpu/gg/text"

	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/errors"
	"github.com/matzehuels/polaroid/pkg/fonts"
	"github.com/matzehuels/polaroid/pkg/observability"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// Rasterizer turns album photos into card images, reusing cached cards
// when the source file and every adjustment are unchanged.
// It is safe for concurrent use.
type Rasterizer struct {
	renderer *Renderer
	cache    cache.Cache
	keyer    cache.Keyer
	fontID   string
	logger   *log.Logger
}

// Option configures a Rasterizer.
type Option func(*rasterizerConfig)

type rasterizerConfig struct {
	font   *text.FontSource
	fontID string
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
}

// WithFont sets the caption font. id identifies the font in cache keys
// (typically its file path or content hash).
func WithFont(src *text.FontSource, id string) Option {
	return func(c *rasterizerConfig) { c.font, c.fontID = src, id }
}

// WithCache enables card caching.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(cfg *rasterizerConfig) { cfg.cache, cfg.keyer = c, k }
}

// WithLogger sets the logger for cache warnings.
func WithLogger(l *log.Logger) Option {
	return func(c *rasterizerConfig) { c.logger = l }
}

// NewRasterizer creates a rasterizer for cards of the given spec.
func NewRasterizer(spec Spec, opts ...Option) (*Rasterizer, error) {
	cfg := rasterizerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.font == nil {
		src, err := fonts.Caption()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "load caption font")
		}
		cfg.font = src
	}
	if cfg.cache == nil {
		cfg.cache = cache.NewNullCache()
	}
	if cfg.keyer == nil {
		cfg.keyer = cache.NewDefaultKeyer()
	}
	if cfg.logger == nil {
		cfg.logger = log.New(nil)
	}

	r, err := NewRenderer(spec, cfg.font)
	if err != nil {
		return nil, err
	}
	return &Rasterizer{
		renderer: r,
		cache:    cfg.cache,
		keyer:    cfg.keyer,
		fontID:   cfg.fontID,
		logger:   cfg.logger,
	}, nil
}

// Spec returns the card geometry.
func (r *Rasterizer) Spec() Spec { return r.renderer.Spec() }

// Key returns the cache key for p given the source file bytes.
func (r *Rasterizer) Key(p photo.Photo, source []byte) string {
	p = p.Normalized()
	s := r.renderer.Spec()
	return r.keyer.CardKey(cache.Hash(source), cache.CardKeyOpts{
		Filter:   p.Filter,
		Caption:  p.Caption,
		Scale:    p.Scale,
		PosX:     p.PosX,
		PosY:     p.PosY,
		WidthCM:  s.WidthCM,
		HeightCM: s.HeightCM,
		DPI:      s.DPI,
		Font:     r.fontID,
	})
}

// Rasterize renders the card for p.
func (r *Rasterizer) Rasterize(ctx context.Context, p photo.Photo) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readSource(p.Source)
	if err != nil {
		return nil, err
	}

	key := r.Key(p, data)
	hooks := observability.Cache()
	if cached, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("card cache read failed", "photo", p.ID, "error", err)
	} else if ok {
		if img, err := photo.Decode(bytes.NewReader(cached)); err == nil {
			hooks.OnCacheHit(ctx, "card")
			return img, nil
		}
		_ = r.cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, "card")

	src, err := photo.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode photo %s", p.Source)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := r.renderer.Render(src, p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render card for %s", p.Source)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		r.logger.Warn("card encode failed", "photo", p.ID, "error", err)
		return img, nil
	}
	if err := r.cache.Set(ctx, key, buf.Bytes(), cache.CardTTL); err != nil {
		r.logger.Warn("card cache write failed", "photo", p.ID, "error", err)
	} else {
		hooks.OnCacheSet(ctx, "card", buf.Len())
	}
	return img, nil
}

func readSource(path string) ([]byte, error) {
	if err := errors.ValidateImageFilename(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "photo %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read photo %s", path)
	}
	return data, nil
}
