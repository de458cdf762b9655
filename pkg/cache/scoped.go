package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend keep separate namespaces, e.g. one per server instance:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "parallax:")
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

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(sourceHash, opts)
}

// PageRankKey generates a prefixed PageRank key.
func (k *ScopedKeyer) PageRankKey(graphHash string, opts PageRankKeyOpts) string {
	return k.prefix + k.inner.PageRankKey(graphHash, opts)
}

// BFSKey generates a prefixed BFS key.
func (k *ScopedKeyer) BFSKey(graphHash string, opts BFSKeyOpts) string {
	return k.prefix + k.inner.BFSKey(graphHash, opts)
}
