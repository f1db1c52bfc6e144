package cache

// ScopedKeyer prefixes every key produced by an inner Keyer.
//
// The CLI scopes keys by cache format version so that a change to how cards
// are rendered invalidates old entries without touching the backend:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// CardKey returns the prefixed card key.
func (k *ScopedKeyer) CardKey(sourceHash string, opts CardKeyOpts) string {
	return k.prefix + k.inner.CardKey(sourceHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(albumHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(albumHash, opts)
}
