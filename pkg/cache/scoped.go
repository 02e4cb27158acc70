package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// projects can share one backend without seeing each other's entries.
//
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:spring-sale:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}

// UpscaleKey returns the prefixed upscale key.
func (k *ScopedKeyer) UpscaleKey(imageHash string, factor int) string {
	return k.prefix + k.inner.UpscaleKey(imageHash, factor)
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }
