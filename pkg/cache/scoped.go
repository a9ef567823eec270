package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one backend without clashing.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "labelgraph:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ConversionKey generates a prefixed conversion key.
func (k *ScopedKeyer) ConversionKey(inputHash string, opts ConversionKeyOpts) string {
	return k.prefix + k.inner.ConversionKey(inputHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
