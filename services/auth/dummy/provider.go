// Package dummyauth is a scripted session provider for development and tests.
package dummyauth

import (
	"context"
	"sync"

	"github.com/darasahub/darasa/core/session"
)

type Provider struct {
	mu      sync.Mutex
	current *session.Identity
	nextSub int
	subs    map[int]func(ident session.Identity, ok bool)
}

var _ session.Provider = (*Provider)(nil) // interface compliance check

func NewProvider() *Provider {
	return &Provider{subs: make(map[int]func(ident session.Identity, ok bool))}
}

// SignIn establishes a session for the given identity and notifies observers.
func (p *Provider) SignIn(id, email string) {
	p.apply(&session.Identity{ID: id, Email: email})
}

func (p *Provider) Current() (session.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return session.Identity{}, false
	}
	return *p.current, true
}

func (p *Provider) OnChange(cb func(ident session.Identity, ok bool)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = cb
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.apply(nil)
	return nil
}

func (p *Provider) apply(ident *session.Identity) {
	p.mu.Lock()
	p.current = ident
	subs := make([]func(ident session.Identity, ok bool), 0, len(p.subs))
	for _, cb := range p.subs {
		subs = append(subs, cb)
	}
	p.mu.Unlock()

	for _, cb := range subs {
		if ident == nil {
			cb(session.Identity{}, false)
		} else {
			cb(*ident, true)
		}
	}
}
