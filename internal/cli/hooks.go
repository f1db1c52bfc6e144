package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/polaroid/pkg/observability"
)

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("pipeline")}
}

func (h *logHooks) OnLoadStart(_ context.Context, path string) {
	h.logger.Debug("load", "album", path)
}

func (h *logHooks) OnLoadComplete(_ context.Context, path string, photos int, d time.Duration, err error) {
	h.done("load", d, err, "album", path, "photos", photos)
}

func (h *logHooks) OnLayoutStart(_ context.Context, preset string, items int) {
	h.logger.Debug("layout", "preset", preset, "items", items)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, preset string, pages int, d time.Duration, err error) {
	h.done("layout", d, err, "preset", preset, "pages", pages)
}

func (h *logHooks) OnRasterizeStart(_ context.Context, cards, workers int) {
	h.logger.Debug("rasterize", "cards", cards, "workers", workers)
}

func (h *logHooks) OnRasterizeComplete(_ context.Context, cards int, d time.Duration, err error) {
	h.done("rasterize", d, err, "cards", cards)
}

func (h *logHooks) OnComposeStart(_ context.Context, format string, pages int) {
	h.logger.Debug("compose", "format", format, "pages", pages)
}

func (h *logHooks) OnComposeComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.done("compose", d, err, "format", format, "bytes", size)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) done(stage string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", d.Round(time.Millisecond))
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "error", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
)
