package material

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/darasahub/darasa/core"
)

func newTestConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		StoreTimeout:     2 * time.Second,
		MaterialCacheTTL: time.Minute,
		NoticeTimeout:    3 * time.Second,
	}
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// fakeRepo is an in-memory Repository counting queries, so tests can observe
// cache hits, joins and invalidation.
type fakeRepo struct {
	mu      sync.Mutex
	items   []Material
	nextID  int
	queries int64
	failing error // when set, every call fails with it
}

func (repo *fakeRepo) QueryMaterials(ctx context.Context, scope Scope) ([]Material, error) {
	atomic.AddInt64(&repo.queries, 1)
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.failing != nil {
		return nil, repo.failing
	}
	ownerID, restricted := scope.OwnerID()
	out := make([]Material, 0, len(repo.items))
	for _, m := range repo.items {
		if restricted && m.OwnerID != ownerID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (repo *fakeRepo) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.failing != nil {
		return Material{}, repo.failing
	}
	repo.nextID++
	m.ID = "m" + strconv.Itoa(repo.nextID)
	repo.items = append(repo.items, m)
	return m, nil
}

func (repo *fakeRepo) UpdateMaterial(ctx context.Context, actorID, id string, d Draft) (Material, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.failing != nil {
		return Material{}, repo.failing
	}
	for i, m := range repo.items {
		if m.ID != id {
			continue
		}
		if m.OwnerID != actorID {
			return Material{}, ErrForbidden
		}
		m.Title, m.Description, m.URL = d.Title, d.Description, d.URL
		repo.items[i] = m
		return m, nil
	}
	return Material{}, ErrNotFound
}

func (repo *fakeRepo) DeleteMaterial(ctx context.Context, actorID, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.failing != nil {
		return repo.failing
	}
	for i, m := range repo.items {
		if m.ID != id {
			continue
		}
		if m.OwnerID != actorID {
			return ErrForbidden
		}
		repo.items = append(repo.items[:i], repo.items[i+1:]...)
		return nil
	}
	return ErrNotFound
}

func (repo *fakeRepo) queryCount() int64 { return atomic.LoadInt64(&repo.queries) }
