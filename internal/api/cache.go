package api

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/banshee-data/pitch.report/internal/monitoring"
)

// viewKey identifies a derived view. Version changes whenever pitches
// are appended, so stale entries are never served and simply age out.
type viewKey struct {
	kind    string
	matchup string
	version int
	params  string // canonical query parameters, e.g. active set and cell size
}

// viewCache memoises derived views per matchup version.
type viewCache struct {
	lru *lru.Cache[viewKey, any]
}

func newViewCache(size int) (*viewCache, error) {
	if size < 1 {
		size = 1
	}
	c, err := lru.New[viewKey, any](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create view cache: %w", err)
	}
	return &viewCache{lru: c}, nil
}

// cached returns the view for key, building and storing it on a miss.
func cached[T any](c *viewCache, key viewKey, build func() (T, error)) (T, error) {
	if v, ok := c.lru.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	defer monitoring.Timed("[api] build %s %s v%d %s", key.kind, key.matchup, key.version, key.params)()
	t, err := build()
	if err != nil {
		return t, err
	}
	c.lru.Add(key, t)
	return t, nil
}

func (c *viewCache) Len() int { return c.lru.Len() }
