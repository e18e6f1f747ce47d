// Package darasa wires the data-synchronization core of the study-material
// portal: session tracking, profile cache, material directory, owner
// attribution and the CRUD coordinator. It owns no server, CLI or rendering;
// a presentation layer consumes it.
package darasa

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasahub/darasa/core"
	"github.com/darasahub/darasa/core/access"
	"github.com/darasahub/darasa/core/material"
	"github.com/darasahub/darasa/core/profile"
	"github.com/darasahub/darasa/core/session"
)

type Options struct {
	Conf            *core.Config
	Logger          core.Logger
	SessionProvider session.Provider
	ProfileRepo     profile.Repository
	MaterialRepo    material.Repository
}

// Portal is the composition root a presentation layer holds on to.
type Portal struct {
	Conf *core.Config
	Log  core.Logger

	Session     *session.Resolver
	Profiles    *profile.Service
	Directory   *material.Directory
	Attribution *material.Attribution
	Coordinator *material.Coordinator
}

func NewPortal(opts Options) *Portal {
	sess := session.NewResolver(opts.SessionProvider, opts.Logger)
	profiles := profile.NewService(opts.ProfileRepo, opts.Conf, opts.Logger)
	dir := material.NewDirectory(opts.MaterialRepo, opts.Conf, opts.Logger)
	attr := material.NewAttribution(profiles, opts.Logger)
	coord := material.NewCoordinator(opts.MaterialRepo, dir, sess, opts.Conf, opts.Logger)

	// everything cached for an identity dies with its session
	sess.OnReset(profiles.Reset)
	sess.OnReset(dir.Reset)
	sess.OnReset(attr.Reset)

	return &Portal{
		Conf:        opts.Conf,
		Log:         opts.Logger,
		Session:     sess,
		Profiles:    profiles,
		Directory:   dir,
		Attribution: attr,
		Coordinator: coord,
	}
}

// Admit resolves the viewer's profile and rules on a surface restricted to
// requiredRole. Without a session the decision redirects to the login
// surface; a missing profile surfaces as profile.ErrNeedsOnboarding for the
// caller to present the onboarding flow.
func (p *Portal) Admit(ctx context.Context, requiredRole string) (profile.Profile, access.Decision, error) {
	ident, ok := p.Session.Current()
	if !ok {
		return profile.Profile{}, access.Decision{Allow: false, RedirectTo: access.SurfaceLogin}, nil
	}
	prof, err := p.Profiles.GetProfile(ctx, ident.ID)
	if err != nil {
		return profile.Profile{}, access.Decision{}, err
	}
	return prof, access.Decide(prof, requiredRole), nil
}

// Onboard submits the first-time profile and returns it along with the home
// surface for the chosen role.
func (p *Portal) Onboard(ctx context.Context, np profile.NewProfile) (profile.Profile, string, error) {
	ident, ok := p.Session.Current()
	if !ok {
		return profile.Profile{}, access.SurfaceLogin, session.ErrNotSignedIn
	}
	prof, err := p.Profiles.Onboard(ctx, ident.ID, np)
	if err != nil {
		return profile.Profile{}, "", err
	}
	return prof, access.SurfaceFor(prof.Role), nil
}

// Browse is the read path: the global catalogue grouped by title, with owner
// attribution resolved for decoration.
func (p *Portal) Browse(ctx context.Context) ([]material.Group, material.AttributionMap, error) {
	items, err := p.Directory.List(ctx, material.ScopeAll())
	if err != nil {
		return nil, nil, errors.Wrap(err, "portal.Browse")
	}
	attr := p.Attribution.Resolve(ctx, items)
	return material.Groups(items), attr, nil
}

// OwnedMaterials lists the current identity's own items for the editing view.
func (p *Portal) OwnedMaterials(ctx context.Context) ([]material.Material, error) {
	ident, ok := p.Session.Current()
	if !ok {
		return nil, session.ErrNotSignedIn
	}
	return p.Directory.List(ctx, material.OwnedBy(ident.ID))
}

// SignOut ends the session; cache resets ride on the provider notification.
func (p *Portal) SignOut(ctx context.Context) error {
	return p.Session.SignOut(ctx)
}

// Close detaches the portal from the session provider.
func (p *Portal) Close() {
	p.Session.Close()
}
