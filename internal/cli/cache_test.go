package cli

import (
	"context"
	"io"
	"testing"

	"github.com/matzehuels/polaroid/pkg/cache"
)

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	c := New(io.Discard, LogInfo)

	c.Config.CacheDir = t.TempDir()
	store, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache() error = %v", err)
	}
	fc, ok := store.(*cache.FileCache)
	if !ok {
		t.Fatalf("newCache() = %T, want *cache.FileCache", store)
	}
	if fc.Dir() != c.Config.CacheDir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), c.Config.CacheDir)
	}

	store, _ = c.newCache(ctx, true)
	if _, ok := store.(cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want cache.NullCache", store)
	}

	c.Config.CacheDir = ""
	store, _ = c.newCache(ctx, false)
	if _, ok := store.(cache.NullCache); !ok {
		t.Errorf("newCache(no dir) = %T, want cache.NullCache", store)
	}
}

func TestCacheLocation(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.CacheDir = "/tmp/polaroid"
	if got := c.cacheLocation(); got != "/tmp/polaroid" {
		t.Errorf("cacheLocation() = %q, want the cache dir", got)
	}
	c.Config.RedisURL = "redis://localhost:6379/0"
	if got := c.cacheLocation(); got != c.Config.RedisURL {
		t.Errorf("cacheLocation() = %q, want the redis url", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
