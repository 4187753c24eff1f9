package cache

import (
	"bytes"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is one rendered response body.
type Entry struct {
	Body        []byte
	ContentType string
}

// Stats reports cache effectiveness
type Stats struct {
	Size   int `json:"size"`
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// SceneCache keeps rendered scenes keyed by view state. The dataset is
// immutable once loaded, so entries never go stale; they are only evicted.
type SceneCache struct {
	entries *lru.Cache[string, Entry]
	hits    SafeCounter
	misses  SafeCounter
}

// NewSceneCache creates a cache holding up to size scenes.
func NewSceneCache(size int) (*SceneCache, error) {
	entries, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene cache: %w", err)
	}
	return &SceneCache{entries: entries}, nil
}

// Get returns a cached scene
func (c *SceneCache) Get(key string) (Entry, bool) {
	e, ok := c.entries.Get(key)
	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return e, ok
}

// Add stores a scene, evicting the least recently used one when full.
func (c *SceneCache) Add(key string, e Entry) {
	c.entries.Add(key, e)
}

// GetOrRender returns the cached scene for key or renders and stores it.
// A failed render is not cached. The bool reports a cache hit.
func (c *SceneCache) GetOrRender(key, contentType string, render func(io.Writer) error) (Entry, bool, error) {
	if e, ok := c.Get(key); ok {
		return e, true, nil
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return Entry{}, false, err
	}
	e := Entry{Body: buf.Bytes(), ContentType: contentType}
	c.Add(key, e)
	return e, false, nil
}

// Stats returns the current size and hit counters.
func (c *SceneCache) Stats() Stats {
	return Stats{Size: c.entries.Len(), Hits: c.hits.Value(), Misses: c.misses.Value()}
}
