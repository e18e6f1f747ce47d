package access

import (
	"sync"

	"github.com/darasahub/darasa/core/profile"
)

// Surfaces the presentation layer can be redirected to.
const (
	SurfaceHome    = "/"
	SurfaceLogin   = "/login"
	SurfaceStudent = "/student"
	SurfaceTeacher = "/teacher"
)

// Decision is the outcome of an admission check on a role-restricted surface.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// SurfaceFor maps a role to its home surface.
func SurfaceFor(role string) string {
	switch role {
	case profile.RoleTeacher:
		return SurfaceTeacher
	case profile.RoleStudent:
		return SurfaceStudent
	}
	return SurfaceHome
}

// Decide rules on whether a viewer with the given profile may remain on a
// surface restricted to requiredRole. Pure: same input, same decision.
// Callers must not invoke it while the profile is still resolving; render a
// loading state instead (no default-allow, no default-deny).
func Decide(p profile.Profile, requiredRole string) Decision {
	if p.Role == requiredRole {
		return Decision{Allow: true}
	}
	return Decision{Allow: false, RedirectTo: SurfaceFor(p.Role)}
}

// Gate re-evaluates the admission decision as the profile changes while firing
// a redirect only once per transition, so repeated renders with the same
// profile stay idempotent.
type Gate struct {
	requiredRole string

	mu       sync.Mutex
	last     *profile.Profile
	decision Decision
}

func NewGate(requiredRole string) *Gate {
	return &Gate{requiredRole: requiredRole}
}

// Observe feeds the latest resolved profile (nil while loading) and returns
// the current decision plus whether it should be acted on now. While p is nil
// no decision is made.
func (g *Gate) Observe(p *profile.Profile) (Decision, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p == nil {
		g.last = nil
		g.decision = Decision{}
		return Decision{}, false
	}
	if g.last != nil && *g.last == *p {
		return g.decision, false
	}

	pCopy := *p
	g.last = &pCopy
	g.decision = Decide(pCopy, g.requiredRole)
	return g.decision, true
}
