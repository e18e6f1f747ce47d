package session

import (
	"context"
	"errors"
	"sync"

	"github.com/darasahub/darasa/core"
)

var ErrNotSignedIn = errors.New("no authenticated session")

// Identity is the authenticated session subject, owned by the external
// credential provider and read-only here.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type (
	// Provider is the boundary to the external credential/session service.
	Provider interface {
		// Current returns the identity of the authenticated session, if any.
		Current() (Identity, bool)
		// OnChange registers cb to be called on every session transition.
		// The returned func unregisters it.
		OnChange(cb func(ident Identity, ok bool)) (unsubscribe func())
		SignOut(ctx context.Context) error
	}

	// Resolver tracks the current Identity as an observable value.
	// Subscribers are notified synchronously on change; registered resets run
	// whenever the identity is dropped or swapped, so downstream caches never
	// serve data keyed to a prior identity.
	Resolver struct {
		provider Provider
		log      core.Logger

		mu      sync.Mutex
		current *Identity
		nextSub int
		subs    map[int]func(ident *Identity)
		resets  []func()
		unsub   func()
	}
)

func NewResolver(provider Provider, logger core.Logger) *Resolver {
	res := &Resolver{
		provider: provider,
		log:      logger,
		subs:     make(map[int]func(ident *Identity)),
	}
	if ident, ok := provider.Current(); ok {
		res.current = &ident
	}
	res.unsub = provider.OnChange(res.apply)
	return res
}

// Current returns the identity of the authenticated session, if any.
func (res *Resolver) Current() (Identity, bool) {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.current == nil {
		return Identity{}, false
	}
	return *res.current, true
}

// Subscribe registers cb for synchronous notification on every session change.
// cb receives nil when the session ends. The returned func unregisters it.
func (res *Resolver) Subscribe(cb func(ident *Identity)) (unsubscribe func()) {
	res.mu.Lock()
	defer res.mu.Unlock()
	id := res.nextSub
	res.nextSub++
	res.subs[id] = cb
	return func() {
		res.mu.Lock()
		defer res.mu.Unlock()
		delete(res.subs, id)
	}
}

// OnReset registers fn to run whenever the identity changes or is dropped.
// Downstream caches register their reset here.
func (res *Resolver) OnReset(fn func()) {
	res.mu.Lock()
	defer res.mu.Unlock()
	res.resets = append(res.resets, fn)
}

// SignOut ends the session with the provider; the provider's change
// notification then drops the identity and resets downstream caches.
func (res *Resolver) SignOut(ctx context.Context) error {
	return res.provider.SignOut(ctx)
}

// Close detaches the resolver from the provider.
func (res *Resolver) Close() {
	if res.unsub != nil {
		res.unsub()
	}
}

func (res *Resolver) apply(ident Identity, ok bool) {
	res.mu.Lock()

	var next *Identity
	if ok {
		identCopy := ident
		next = &identCopy
	}

	prev := res.current
	res.current = next

	// a dropped or swapped identity invalidates everything fetched for the old one
	invalidated := prev != nil && (next == nil || prev.ID != next.ID)

	resets := make([]func(), 0, len(res.resets))
	if invalidated {
		resets = append(resets, res.resets...)
	}
	subs := make([]func(ident *Identity), 0, len(res.subs))
	for _, cb := range res.subs {
		subs = append(subs, cb)
	}
	res.mu.Unlock()

	if next == nil {
		res.log.Debug("session ended")
	} else {
		res.log.Debug("session changed", *next)
	}
	for _, fn := range resets {
		fn()
	}
	for _, cb := range subs {
		cb(next)
	}
}
