package hlsproxy

import "sort"

// StreamRegistry maps stream keys to upstream playlist URLs.
type StreamRegistry interface {
	Lookup(key StreamKey) (string, bool)
}

// StaticRegistry is a StreamRegistry fixed at construction.
// It is never written after NewStaticRegistry returns and needs no locking.
type StaticRegistry map[StreamKey]string

// NewStaticRegistry copies streams into a StaticRegistry, skipping entries
// with an empty key or URL.
func NewStaticRegistry(streams map[string]string) StaticRegistry {
	r := make(StaticRegistry, len(streams))
	for k, u := range streams {
		if k == "" || u == "" {
			continue
		}
		r[StreamKey(k)] = u
	}
	return r
}

// Lookup implements StreamRegistry.Lookup.
func (r StaticRegistry) Lookup(key StreamKey) (string, bool) {
	u, ok := r[key]
	return u, ok
}

// Keys returns the configured stream keys in sorted order.
func (r StaticRegistry) Keys() []StreamKey {
	keys := make([]StreamKey, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
