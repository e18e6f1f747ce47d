package material

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/darasahub/darasa/core"
)

type cacheState int

const (
	stateIdle cacheState = iota
	stateLoading
	stateReady
	stateError
)

type cacheEntry struct {
	items     []Material
	fetchedAt time.Time
	state     cacheState
	// gen is bumped on invalidation; a fetch started under an older gen must
	// not write its late result back (stale-result guard).
	gen uint64
}

// Directory exposes the material catalogue as a cached, queryable collection.
// One CacheEntry per scope; a List inside the staleness window returns the
// cached value, a List during a fetch joins it, Invalidate forces the next
// List to re-fetch.
type Directory struct {
	repo Repository
	conf *core.Config
	log  core.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry

	flight singleflight.Group
	now    func() time.Time // mockable
}

func NewDirectory(repo Repository, conf *core.Config, logger core.Logger) *Directory {
	return &Directory{
		repo:  repo,
		conf:  conf,
		log:   logger,
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
	}
}

// List returns the materials in scope, served from cache while the entry is
// ready and fresh.
func (dir *Directory) List(ctx context.Context, scope Scope) ([]Material, error) {
	key := scope.key()

	dir.mu.Lock()
	ent, ok := dir.cache[key]
	if !ok {
		ent = &cacheEntry{}
		dir.cache[key] = ent
	}
	if ent.state == stateReady && dir.now().Sub(ent.fetchedAt) < dir.conf.MaterialCacheTTL {
		items := copyMaterials(ent.items)
		dir.mu.Unlock()
		return items, nil
	}
	gen := ent.gen
	ent.state = stateLoading
	dir.mu.Unlock()

	v, err, _ := dir.flight.Do(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.Background(), dir.conf.StoreTimeout)
		defer cancel()

		items, err := dir.repo.QueryMaterials(fctx, scope)

		dir.mu.Lock()
		defer dir.mu.Unlock()
		ent, ok := dir.cache[key]
		current := ok && ent.gen == gen

		if err != nil {
			if current {
				ent.state = stateError
			}
			return nil, core.NewStoreError("material.list", err)
		}
		if current {
			ent.items = items
			ent.fetchedAt = dir.now()
			ent.state = stateReady
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return copyMaterials(v.([]Material)), nil
}

// Invalidate marks the scope's cache entry idle so the next List re-fetches.
// An in-flight fetch for the scope keeps serving its own callers but its
// result is discarded.
func (dir *Directory) Invalidate(scope Scope) {
	key := scope.key()

	dir.mu.Lock()
	defer dir.mu.Unlock()
	if ent, ok := dir.cache[key]; ok {
		ent.gen++
		ent.state = stateIdle
		ent.items = nil
	}
	dir.flight.Forget(key)
}

// Reset drops every cache entry, e.g. when the session ends.
func (dir *Directory) Reset() {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	for key, ent := range dir.cache {
		ent.gen++ // orphan any in-flight fetch
		dir.flight.Forget(key)
	}
	dir.cache = make(map[string]*cacheEntry)
}

func copyMaterials(items []Material) []Material {
	out := make([]Material, len(items))
	copy(out, items)
	return out
}
