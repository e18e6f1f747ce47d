package material

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
	"github.com/darasahub/darasa/core/profile"
)

// EntryState tracks one owner's profile resolution.
type EntryState int

const (
	EntryPending EntryState = iota
	EntryReady
	EntryNotFound
)

// Entry is one owner's resolved state in an AttributionMap.
type Entry struct {
	State   EntryState
	Profile profile.Profile
}

// AttributionMap is the transient ownerID -> resolution mapping decorating the
// read path with owner names. Never persisted.
type AttributionMap map[string]Entry

// OwnerName returns the resolved display name for an owner id, if known.
func (m AttributionMap) OwnerName(ownerID string) (string, bool) {
	ent, ok := m[ownerID]
	if !ok || ent.State != EntryReady {
		return "", false
	}
	return ent.Profile.Name, true
}

type attrEntry struct {
	state   EntryState
	profile profile.Profile
	// seq identifies the fetch this entry is waiting on; a completion carrying
	// an older seq must not touch an entry that was re-created since.
	seq uint64
}

// Attribution resolves the owning profile for each distinct owner id in an
// item set. Per-owner fetches are independent: one owner's failure never
// aborts or restarts another's, and a given id is fetched at most once even
// across repeated Resolve calls (the profile service coalesces underneath).
type Attribution struct {
	profiles *profile.Service
	log      core.Logger

	mu      sync.Mutex
	nextSeq uint64
	entries map[string]*attrEntry
}

func NewAttribution(profiles *profile.Service, logger core.Logger) *Attribution {
	return &Attribution{
		profiles: profiles,
		log:      logger,
		entries:  make(map[string]*attrEntry),
	}
}

// Resolve fetches the owners of items that are not already resolved or in
// flight, waits for the fetches it started, and returns the map restricted to
// the owners present in items. Entries merge monotonically: resolved owners
// are never discarded because a different owner's fetch is still pending.
func (at *Attribution) Resolve(ctx context.Context, items []Material) AttributionMap {
	owners := distinctOwners(items)

	type launch struct {
		ownerID string
		seq     uint64
	}
	var launches []launch

	at.mu.Lock()
	for _, ownerID := range owners {
		if _, ok := at.entries[ownerID]; ok {
			continue // ready, not-found, or already in flight
		}
		at.nextSeq++
		at.entries[ownerID] = &attrEntry{state: EntryPending, seq: at.nextSeq}
		launches = append(launches, launch{ownerID: ownerID, seq: at.nextSeq})
	}
	at.mu.Unlock()

	var wg sync.WaitGroup
	for _, ln := range launches {
		wg.Add(1)
		go func(ln launch) {
			defer wg.Done()
			at.fetch(ctx, ln.ownerID, ln.seq)
		}(ln)
	}
	wg.Wait()

	return at.Snapshot(items)
}

func (at *Attribution) fetch(ctx context.Context, ownerID string, seq uint64) {
	p, err := at.profiles.GetProfile(ctx, ownerID)

	at.mu.Lock()
	defer at.mu.Unlock()
	ent, ok := at.entries[ownerID]
	if !ok || ent.state != EntryPending || ent.seq != seq {
		// superseded by a newer fetch or a reset; late result is dropped
		return
	}
	switch {
	case err == nil:
		ent.state = EntryReady
		ent.profile = p
	case errors.Cause(err) == profile.ErrNeedsOnboarding:
		ent.state = EntryNotFound
	default:
		// transient failure: forget the entry so a later Resolve may retry,
		// without disturbing the other owners
		delete(at.entries, ownerID)
		at.log.Warn("owner attribution failed", ownerID, err)
	}
}

// Snapshot returns the current resolution state for the owners present in
// items, without fetching.
func (at *Attribution) Snapshot(items []Material) AttributionMap {
	owners := distinctOwners(items)

	at.mu.Lock()
	defer at.mu.Unlock()
	m := make(AttributionMap, len(owners))
	for _, ownerID := range owners {
		if ent, ok := at.entries[ownerID]; ok {
			m[ownerID] = Entry{State: ent.state, Profile: ent.profile}
		}
	}
	return m
}

// Reset drops all entries, e.g. when the session ends.
func (at *Attribution) Reset() {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.entries = make(map[string]*attrEntry)
}

func distinctOwners(items []Material) []string {
	seen := make(map[string]bool, len(items))
	owners := make([]string, 0, len(items))
	for _, item := range items {
		if item.OwnerID == "" || seen[item.OwnerID] {
			continue
		}
		seen[item.OwnerID] = true
		owners = append(owners, item.OwnerID)
	}
	return owners
}
