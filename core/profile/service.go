package profile

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/darasahub/darasa/core"
)

var (
	// errors
	ErrNotFound = errors.New("profile not found")
	// ErrNeedsOnboarding reports that no profile exists yet for the identity.
	// It is a legitimate, user-visible state: the caller resolves it by
	// submitting the onboarding form, not by retrying.
	ErrNeedsOnboarding = errors.New("profile not created yet")
)

type (
	Repository interface {
		GetProfile(ctx context.Context, identityID string) (Profile, error)
		SetProfile(ctx context.Context, identityID string, p Profile) error
	}

	// Service fetches and caches profiles keyed by identity id. Concurrent
	// lookups for the same id coalesce into a single backing fetch.
	Service struct {
		repo Repository
		conf *core.Config
		log  core.Logger

		mu    sync.Mutex
		gen   uint64 // bumped by Reset; guards late fetches from filling a dropped cache
		cache map[string]Profile

		flight singleflight.Group
	}
)

func NewService(repo Repository, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:  repo,
		conf:  conf,
		log:   logger,
		cache: make(map[string]Profile),
	}
}

// GetProfile returns the profile for identityID, fetching it at most once no
// matter how many callers ask concurrently. A missing backing record surfaces
// as ErrNeedsOnboarding.
func (svc *Service) GetProfile(ctx context.Context, identityID string) (Profile, error) {
	svc.mu.Lock()
	if p, ok := svc.cache[identityID]; ok {
		svc.mu.Unlock()
		return p, nil
	}
	gen := svc.gen
	svc.mu.Unlock()

	v, err, _ := svc.flight.Do(identityID, func() (interface{}, error) {
		// the shared fetch is bounded by the store timeout, not by any single
		// caller's context
		fctx, cancel := context.WithTimeout(context.Background(), svc.conf.StoreTimeout)
		defer cancel()

		p, err := svc.repo.GetProfile(fctx, identityID)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Profile{}, ErrNeedsOnboarding
			}
			return Profile{}, core.NewStoreError("profile.get", err)
		}

		svc.mu.Lock()
		if svc.gen == gen {
			svc.cache[identityID] = p
		}
		svc.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return Profile{}, err
	}
	return v.(Profile), nil
}

// Onboard validates and writes a first-time profile, then fills the cache so
// the next GetProfile needs no round-trip.
func (svc *Service) Onboard(ctx context.Context, identityID string, np NewProfile) (Profile, error) {
	if err := np.Validate(); err != nil {
		return Profile{}, err
	}

	p := Profile{
		Name: np.Name,
		Age:  np.Age,
		Role: np.Role,
	}

	wctx, cancel := context.WithTimeout(ctx, svc.conf.StoreTimeout)
	defer cancel()
	if err := svc.repo.SetProfile(wctx, identityID, p); err != nil {
		return Profile{}, core.NewStoreError("profile.set", err)
	}

	svc.mu.Lock()
	svc.cache[identityID] = p
	svc.mu.Unlock()
	svc.log.Info("profile onboarded", identityID)
	return p, nil
}

// Peek returns the cached profile for identityID without fetching.
func (svc *Service) Peek(identityID string) (Profile, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	p, ok := svc.cache[identityID]
	return p, ok
}

// Reset drops every cached profile. In-flight fetches started before the
// reset complete normally but no longer fill the cache.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.gen++
	svc.cache = make(map[string]Profile)
}
