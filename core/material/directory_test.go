package material

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
)

func TestDirectoryListCachesWithinWindow(t *testing.T) {
	repo := &fakeRepo{items: []Material{{ID: "m1", Title: "Algebra", OwnerID: "t1"}}}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	for i := 0; i < 3; i++ {
		items, err := dir.List(context.Background(), ScopeAll())
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(items) != 1 || items[0].Title != "Algebra" {
			t.Fatalf("List() = %v", items)
		}
	}
	if got := repo.queryCount(); got != 1 {
		t.Errorf("backing queries = %d, want 1 (cache within staleness window)", got)
	}
}

func TestDirectoryListPerScopeEntries(t *testing.T) {
	repo := &fakeRepo{items: []Material{
		{ID: "m1", Title: "Algebra", OwnerID: "t1"},
		{ID: "m2", Title: "Biology", OwnerID: "t2"},
	}}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	all, err := dir.List(context.Background(), ScopeAll())
	if err != nil {
		t.Fatalf("List(all) failed: %v", err)
	}
	owned, err := dir.List(context.Background(), OwnedBy("t1"))
	if err != nil {
		t.Fatalf("List(ownedBy) failed: %v", err)
	}
	if len(all) != 2 || len(owned) != 1 {
		t.Fatalf("List() = %d all, %d owned", len(all), len(owned))
	}
	if got := repo.queryCount(); got != 2 {
		t.Errorf("backing queries = %d, want 2 (one per scope)", got)
	}
}

func TestDirectoryStalenessExpiry(t *testing.T) {
	repo := &fakeRepo{items: []Material{{ID: "m1", Title: "Algebra", OwnerID: "t1"}}}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	now := time.Now()
	dir.now = func() time.Time { return now }

	if _, err := dir.List(context.Background(), ScopeAll()); err != nil {
		t.Fatal(err)
	}
	// inside the window: cached
	now = now.Add(30 * time.Second)
	if _, err := dir.List(context.Background(), ScopeAll()); err != nil {
		t.Fatal(err)
	}
	if got := repo.queryCount(); got != 1 {
		t.Fatalf("backing queries = %d, want 1", got)
	}
	// past the window: re-fetch
	now = now.Add(31 * time.Second)
	if _, err := dir.List(context.Background(), ScopeAll()); err != nil {
		t.Fatal(err)
	}
	if got := repo.queryCount(); got != 2 {
		t.Errorf("backing queries = %d, want 2 (stale entry re-fetched)", got)
	}
}

func TestDirectoryInvalidateForcesRefetch(t *testing.T) {
	repo := &fakeRepo{items: []Material{{ID: "m1", Title: "Algebra", OwnerID: "t1"}}}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	if _, err := dir.List(context.Background(), ScopeAll()); err != nil {
		t.Fatal(err)
	}
	repo.mu.Lock()
	repo.items = append(repo.items, Material{ID: "m2", Title: "Biology", OwnerID: "t1"})
	repo.mu.Unlock()

	// still cached
	items, err := dir.List(context.Background(), ScopeAll())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("List() = %d items before invalidation, want 1", len(items))
	}

	dir.Invalidate(ScopeAll())
	items, err = dir.List(context.Background(), ScopeAll())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("List() = %d items after invalidation, want 2", len(items))
	}
}

func TestDirectoryListError(t *testing.T) {
	boom := errors.New("backend down")
	repo := &fakeRepo{failing: boom}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	_, err := dir.List(context.Background(), ScopeAll())
	if !core.IsStoreError(err) {
		t.Fatalf("List() error = %v, want StoreError", err)
	}

	// error entries are not cached; the next call retries
	repo.mu.Lock()
	repo.failing = nil
	repo.items = []Material{{ID: "m1", Title: "Algebra", OwnerID: "t1"}}
	repo.mu.Unlock()

	items, err := dir.List(context.Background(), ScopeAll())
	if err != nil {
		t.Fatalf("List() failed after recovery: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("List() = %v", items)
	}
}

func TestDirectoryReset(t *testing.T) {
	repo := &fakeRepo{items: []Material{{ID: "m1", Title: "Algebra", OwnerID: "t1"}}}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	if _, err := dir.List(context.Background(), ScopeAll()); err != nil {
		t.Fatal(err)
	}
	dir.Reset()
	if _, err := dir.List(context.Background(), ScopeAll()); err != nil {
		t.Fatal(err)
	}
	if got := repo.queryCount(); got != 2 {
		t.Errorf("backing queries = %d, want 2 (re-fetch after reset)", got)
	}
}

func TestDirectoryCachedValueIsolated(t *testing.T) {
	repo := &fakeRepo{items: []Material{{ID: "m1", Title: "Algebra", OwnerID: "t1"}}}
	dir := NewDirectory(repo, newTestConfig(), nopLogger{})

	items, err := dir.List(context.Background(), ScopeAll())
	if err != nil {
		t.Fatal(err)
	}
	items[0].Title = "Tampered"

	again, err := dir.List(context.Background(), ScopeAll())
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Title != "Algebra" {
		t.Error("caller mutation leaked into the cache")
	}
}
