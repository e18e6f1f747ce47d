package session

import (
	"context"
	"testing"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) {}

// scriptedProvider drives session transitions from test code.
type scriptedProvider struct {
	current *Identity
	cbs     []func(ident Identity, ok bool)
}

func (p *scriptedProvider) Current() (Identity, bool) {
	if p.current == nil {
		return Identity{}, false
	}
	return *p.current, true
}

func (p *scriptedProvider) OnChange(cb func(ident Identity, ok bool)) (unsubscribe func()) {
	p.cbs = append(p.cbs, cb)
	return func() { p.cbs = nil }
}

func (p *scriptedProvider) SignOut(ctx context.Context) error {
	p.set(nil)
	return nil
}

func (p *scriptedProvider) set(ident *Identity) {
	p.current = ident
	for _, cb := range p.cbs {
		if ident == nil {
			cb(Identity{}, false)
		} else {
			cb(*ident, true)
		}
	}
}

func TestResolverSeedsFromProvider(t *testing.T) {
	p := &scriptedProvider{current: &Identity{ID: "u1", Email: "asha@test.test"}}
	res := NewResolver(p, testLogger{})
	defer res.Close()

	ident, ok := res.Current()
	if !ok || ident.ID != "u1" {
		t.Errorf("Current() = %+v, %v; want the provider's session", ident, ok)
	}
}

func TestResolverNotifiesSynchronously(t *testing.T) {
	p := &scriptedProvider{}
	res := NewResolver(p, testLogger{})
	defer res.Close()

	var seen []*Identity
	res.Subscribe(func(ident *Identity) { seen = append(seen, ident) })

	p.set(&Identity{ID: "u1", Email: "asha@test.test"})
	p.set(nil)

	if len(seen) != 2 {
		t.Fatalf("notifications = %d, want 2", len(seen))
	}
	if seen[0] == nil || seen[0].ID != "u1" {
		t.Errorf("first notification = %+v, want u1", seen[0])
	}
	if seen[1] != nil {
		t.Errorf("second notification = %+v, want nil on sign-out", seen[1])
	}
}

func TestResolverResetsOnSignOut(t *testing.T) {
	p := &scriptedProvider{current: &Identity{ID: "u1"}}
	res := NewResolver(p, testLogger{})
	defer res.Close()

	resets := 0
	res.OnReset(func() { resets++ })

	if err := res.SignOut(context.Background()); err != nil {
		t.Fatal(err)
	}
	if resets != 1 {
		t.Errorf("resets = %d after sign-out, want 1", resets)
	}
	if _, ok := res.Current(); ok {
		t.Error("Current() still reports a session after sign-out")
	}
}

func TestResolverResetsOnIdentitySwap(t *testing.T) {
	p := &scriptedProvider{current: &Identity{ID: "u1"}}
	res := NewResolver(p, testLogger{})
	defer res.Close()

	resets := 0
	res.OnReset(func() { resets++ })

	// same identity again: no invalidation
	p.set(&Identity{ID: "u1"})
	if resets != 0 {
		t.Fatalf("resets = %d on same-identity refresh, want 0", resets)
	}

	// different identity: caches keyed to u1 must go
	p.set(&Identity{ID: "u2"})
	if resets != 1 {
		t.Errorf("resets = %d after identity swap, want 1", resets)
	}
	if ident, ok := res.Current(); !ok || ident.ID != "u2" {
		t.Errorf("Current() = %+v, %v", ident, ok)
	}
}

func TestResolverNoResetWhenSignedOutStays(t *testing.T) {
	p := &scriptedProvider{}
	res := NewResolver(p, testLogger{})
	defer res.Close()

	resets := 0
	res.OnReset(func() { resets++ })

	p.set(nil)
	if resets != 0 {
		t.Errorf("resets = %d on signed-out to signed-out, want 0", resets)
	}
}

func TestResolverUnsubscribe(t *testing.T) {
	p := &scriptedProvider{}
	res := NewResolver(p, testLogger{})
	defer res.Close()

	calls := 0
	unsubscribe := res.Subscribe(func(ident *Identity) { calls++ })

	p.set(&Identity{ID: "u1"})
	unsubscribe()
	p.set(nil)

	if calls != 1 {
		t.Errorf("notifications = %d after unsubscribe, want 1", calls)
	}
}
